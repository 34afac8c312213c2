package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/bundlepatch/internal/config"
	"github.com/eykd/bundlepatch/internal/patch/patches"
)

// listEntry is the JSON output schema for one catalog patch.
type listEntry struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Shapes  []string `json:"shapes"`
	Default bool     `json:"enabledByDefault"`
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List the available patches in application order",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults := config.Default().Patches
			entries := patches.All()
			out := make([]listEntry, len(entries))
			for i, e := range entries {
				out[i] = listEntry{Name: e.Name(), Summary: e.Summary(), Shapes: e.Shapes(), Default: e.Enabled(defaults)}
			}

			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
				return nil
			}
			for _, e := range out {
				mark := " "
				if e.Default {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-22s %s (%s)\n", mark, e.Name, e.Summary, strings.Join(e.Shapes, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}
