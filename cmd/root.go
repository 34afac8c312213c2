// Package cmd implements the bpatch CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/bundlepatch/internal/patch"
)

// NewRootCmd creates the root bpatch command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "bpatch",
		Short:             "bpatch - patch the terminal application's minified bundle",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		RunE:              rootRunE,
		PersistentPreRunE: initLogger,
		PersistentPostRun: syncLogger,
	}
	root.PersistentFlags().Bool("verbose", false, "log debug detail to stderr")
	root.PersistentFlags().Bool("log-json", false, "log as line-delimited JSON")

	root.AddCommand(NewApplyCmd(newDefaultApplyIO()))
	root.AddCommand(NewLocateCmd(newDefaultLocateIO()))
	root.AddCommand(NewListCmd())
	root.AddCommand(NewInitCmd(newDefaultInitIO()))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// emitPTE004AndError writes a PTE004 error diagnostic and returns a non-nil
// error so the caller exits with non-zero code. When jsonMode is true the
// diagnostic is wrapped by envelope, the command's JSON output schema, and
// written to stdout; otherwise it is written as a human-readable message to
// stderr.
func emitPTE004AndError(cmd *cobra.Command, jsonMode bool, origErr error, envelope func([]patch.Diagnostic) any) error {
	if jsonMode {
		diags := []patch.Diagnostic{{Severity: patch.SeverityError, Code: patch.CodeIOOrConfigFailure, Message: origErr.Error()}}
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(envelope(diags))
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: I/O or config failure: %v (%s)\n", origErr, patch.CodeIOOrConfigFailure)
	}
	return fmt.Errorf("operation failed: %w", origErr)
}

// printDiagnostics writes each diagnostic to stderr in human-readable form.
func printDiagnostics(cmd *cobra.Command, diags []patch.Diagnostic) {
	for _, d := range diags {
		if d.Position != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d:%d: %s (%s)\n", d.Severity, d.Position.Line, d.Position.Column, d.Message, d.Code)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", d.Severity, d.Message, d.Code)
	}
}
