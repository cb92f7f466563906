package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
)

func newRestoreCmd(stdout, stderr io.Writer) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "restore NAME --to PATH",
		Short: "Restore a backup to a target path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return errors.New("--to <path> is required")
			}
			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}

			name := args[0]
			if err := backup.New(log, nil).Restore(cmd.Context(), cfg.Backup.Root, name, target); err != nil {
				return fmt.Errorf("restoring backup: %w", err)
			}
			fmt.Fprintf(stdout, "✓ Restored backup '%s' to: %s\n", name, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "Target path for the restore")
	cmd.Flags().StringVar(&target, "restore-to", "", "Alias of --to")
	_ = cmd.Flags().MarkHidden("restore-to")
	return cmd
}
