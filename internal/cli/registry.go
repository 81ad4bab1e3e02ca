// internal/cli/registry.go
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nil-matching/pkg/registry"
)

func newRegistryCommand(opts *rootOptions) *cobra.Command {
	var path string

	load := func() (*registry.ActivityRegistry, error) {
		if path == "" {
			return registry.Default()
		}
		return registry.LoadRegistry(path)
	}

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect or edit the activity registry",
		Long: `Inspect or edit the activity registry.

Without --path the catalog compiled into the binary is used. update needs
--path since it writes the file back.

Examples:
  match-cli registry list
  match-cli registry validate --path pkg/registry/activity-registry.json
  match-cli registry update --path pkg/registry/activity-registry.json rank-candidates timeout 90s`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "registry JSON file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.output()); err != nil {
				return err
			}
			reg, err := load()
			if err != nil {
				return err
			}
			if opts.output() == formatJSON {
				return writeJSON(cmd.OutOrStdout(), reg)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Task type", "Category", "Timeout", "Retries", "Status", "Error codes")
			for _, a := range reg.Activities {
				if err := table.Append([]string{
					a.TaskType,
					a.Category,
					a.Timeout,
					strconv.Itoa(a.Retries),
					a.ImplementationStatus,
					strings.Join(a.ErrorCodes, ", "),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check task type naming, timeouts and input schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if len(reg.Activities) == 0 {
				return fmt.Errorf("registry contains no activities")
			}
			if err := reg.Check(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <activity-id> <field> <value>",
		Short: "Set one field of an activity",
		Long: `Set one field of an activity and write the registry back.

Fields: status, version, displayName, description, category, timeout, retries.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("--path is required for update")
			}
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(args[0], args[1], args[2]); err != nil {
				return err
			}
			if err := reg.Check(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	}

	cmd.AddCommand(list, validate, update)
	return cmd
}
