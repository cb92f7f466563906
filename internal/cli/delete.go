package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
)

func newDeleteCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}

			name := args[0]
			if err := backup.New(log, nil).Delete(cmd.Context(), cfg.Backup.Root, name); err != nil {
				return fmt.Errorf("deleting backup: %w", err)
			}
			fmt.Fprintf(stdout, "✓ Deleted backup: %s\n", name)
			return nil
		},
	}
}
