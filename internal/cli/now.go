package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
)

func newNowCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Create a backup immediately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}

			res, err := backup.New(log, nil).Create(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			for _, id := range res.Evicted {
				fmt.Fprintf(stdout, "Deleted old backup: %s\n", id)
			}
			fmt.Fprintf(stdout, "✓ Created backup: %s\n", res.ID)
			return nil
		},
	}
}
