// Package retention enforces the maximum number of snapshots kept under a backup root.
package retention

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/InfernoTsugikuni/FlameUp/internal/fs"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
	"github.com/InfernoTsugikuni/FlameUp/internal/snapshot"
)

// StagingPrefix marks directories a create is still copying into.
const StagingPrefix = ".tmp-"

type Engine struct {
	fs  fs.FS
	log logging.Logger
}

func New(log logging.Logger, filesystem fs.FS) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{
		fs:  filesystem,
		log: log,
	}
}

// SelectForEviction returns the identifiers to remove, oldest first, so that
// one more snapshot can be added without exceeding max. ordered must be
// sorted oldest first. A max of zero selects everything.
func SelectForEviction(ordered []string, max int) []string {
	if max < 0 {
		max = 0
	}
	remaining := len(ordered)
	var evict []string
	for i := 0; remaining >= max && remaining > 0; i++ {
		evict = append(evict, ordered[i])
		remaining--
	}
	return evict
}

// Apply makes room for one new snapshot under root. It returns the evicted
// identifiers; on error, those removed before the failure.
func (e *Engine) Apply(ctx context.Context, root string, max int) ([]string, error) {
	if max < 0 {
		return nil, fmt.Errorf("retention: negative maximum %d", max)
	}

	e.sweepStaging(root)

	snaps, err := snapshot.List(e.fs, root)
	if err != nil {
		return nil, err
	}

	victims := SelectForEviction(snapshot.IDs(snaps), max)

	var evicted []string
	for _, id := range victims {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		e.log.Debug("deleting old backup", "id", id)
		if err := e.fs.RemoveAll(filepath.Join(root, id)); err != nil {
			return evicted, fmt.Errorf("retention: removing %s: %w", id, err)
		}
		evicted = append(evicted, id)
	}

	if len(evicted) > 0 {
		e.log.Info("retention applied", "evicted", len(evicted), "max", max)
	}
	return evicted, nil
}

// sweepStaging removes staging directories left behind by interrupted creates.
func (e *Engine) sweepStaging(root string) {
	entries, err := e.fs.ReadDir(root)
	if err != nil {
		return
	}
	for _, ent := range entries {
		if !ent.IsDir() || !strings.HasPrefix(ent.Name, StagingPrefix+snapshot.Prefix) {
			continue
		}
		if err := e.fs.RemoveAll(ent.Path); err != nil {
			e.log.Warn("retention: failed to remove stale staging dir", "path", ent.Path, "error", err)
			continue
		}
		e.log.Info("retention: removed stale staging dir", "path", ent.Path)
	}
}
