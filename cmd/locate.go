package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/bundlepatch/internal/patch"
	"github.com/eykd/bundlepatch/internal/patch/patches"
)

// LocateIO reads the bundle for the locate command.
type LocateIO interface {
	ResolveBundle(ctx context.Context, path string) (string, error)
	ReadBundle(ctx context.Context, path string) ([]byte, error)
}

// located is one patch's entry in the locate output.
type located struct {
	Patch    string          `json:"patch"`
	Found    bool            `json:"found"`
	Location *patch.Location `json:"location,omitempty"`
	Position *patch.Position `json:"position,omitempty"`
	Attempts []patch.Attempt `json:"attempts"`
}

// locateOutput is the JSON output schema for the locate command.
type locateOutput struct {
	Version     string             `json:"version"`
	Bundle      string             `json:"bundle"`
	Patches     []located          `json:"patches"`
	Diagnostics []patch.Diagnostic `json:"diagnostics"`
}

// NewLocateCmd creates the locate subcommand.
func NewLocateCmd(io LocateIO) *cobra.Command {
	var (
		only     []string
		jsonMode bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:          "locate <bundle|dir>",
		Short:        "Report where each patch would apply, without modifying the bundle",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := loggerFrom(ctx)

			entries := patches.All()
			var diags []patch.Diagnostic
			if len(only) > 0 {
				entries, diags = patches.Select(only)
				if hasDiagnosticError(diags) {
					if jsonMode {
						if err := json.NewEncoder(cmd.OutOrStdout()).Encode(locateFailure("")(diags)); err != nil {
							return fmt.Errorf("encoding output: %w", err)
						}
					} else {
						printDiagnostics(cmd, diags)
					}
					return fmt.Errorf("invalid patch selection")
				}
			}

			bundlePath, err := io.ResolveBundle(ctx, args[0])
			if err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("resolving bundle: %w", err), locateFailure(args[0]))
			}
			data, err := io.ReadBundle(ctx, bundlePath)
			if err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("reading bundle: %w", err), locateFailure(bundlePath))
			}
			doc := string(data)

			results := make([]located, 0, len(entries))
			missing := 0
			for _, e := range entries {
				loc, attempts, ok := e.Locate(doc)
				r := located{Patch: e.Name(), Found: ok, Attempts: attempts}
				if ok {
					pos := patch.PositionOf(doc, loc.Start)
					r.Location, r.Position = &loc, &pos
					log.Debug("patch located", zap.String("patch", e.Name()), zap.String("shape", loc.Shape))
				} else {
					missing++
					diags = append(diags, patch.MissDiagnostic(e.Name(), attempts))
				}
				results = append(results, r)
			}
			if diags == nil {
				diags = []patch.Diagnostic{}
			}

			if jsonMode {
				out := locateOutput{Version: "1", Bundle: bundlePath, Patches: results, Diagnostics: diags}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), sanitizePath(bundlePath))
				for _, r := range results {
					fmt.Fprintln(cmd.OutOrStdout(), formatLocated(r))
				}
			}

			if strict && missing > 0 {
				return fmt.Errorf("%d of %d patches not located", missing, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "locate only these patches (names or unique prefixes)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any patch is not located")

	return cmd
}

// locateFailure returns the locate JSON output for a run that failed on
// I/O or patch selection.
func locateFailure(bundle string) func([]patch.Diagnostic) any {
	return func(diags []patch.Diagnostic) any {
		return locateOutput{Version: "1", Bundle: bundle, Patches: []located{}, Diagnostics: diags}
	}
}

// formatLocated renders one locate result as a single line.
func formatLocated(r located) string {
	if !r.Found {
		parts := make([]string, len(r.Attempts))
		for i, a := range r.Attempts {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%-22s not found (%s)", r.Patch, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%-22s %s at %d:%d [%d,%d) %s",
		r.Patch, r.Location.Shape, r.Position.Line, r.Position.Column,
		r.Location.Start, r.Location.End, strings.Join(r.Location.Identifiers, " "))
}

// fileLocateIO implements LocateIO using OS file I/O.
type fileLocateIO struct{}

func newDefaultLocateIO() *fileLocateIO {
	return &fileLocateIO{}
}

// ResolveBundle maps a file or directory argument to the bundle file.
func (f *fileLocateIO) ResolveBundle(ctx context.Context, path string) (string, error) {
	return FindBundleImpl(ctx, path)
}

// ReadBundle reads the bundle file at path.
func (f *fileLocateIO) ReadBundle(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
