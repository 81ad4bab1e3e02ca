// internal/cli/tables.go
package cli

import (
	"github.com/spf13/cobra"

	"nil-matching/internal/matching"
)

func newTablesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the active scoring tables",
		Long: `Print the active scoring tables.

The table output is TOML in the same shape --tables accepts, so it can be
saved and edited as an override file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.output()); err != nil {
				return err
			}
			tables, err := matching.LoadTablesFile(opts.v.GetString("tables"))
			if err != nil {
				return err
			}
			if opts.output() == formatJSON {
				return writeJSON(cmd.OutOrStdout(), tables.Spec())
			}
			data, err := matching.MarshalTables(tables)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
