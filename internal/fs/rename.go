package fs

import (
	"context"
	"os"
)

// wraps os.Rename with retry logic.
// It is used to move a finished staging directory onto its snapshot name.

func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename "+oldPath, func() error {
		return os.Rename(oldPath, newPath)
	})
}
