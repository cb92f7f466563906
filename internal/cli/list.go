package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
	"github.com/InfernoTsugikuni/FlameUp/internal/output"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}

			rep, err := backup.New(log, nil).List(cmd.Context(), cfg.Backup.Root)
			if err != nil {
				return err
			}
			return output.New(f).Report(stdout, rep)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|yaml")
	return cmd
}
