package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/bundlepatch/internal/config"
	"github.com/eykd/bundlepatch/internal/patch"
	"github.com/eykd/bundlepatch/internal/patch/patches"
	"github.com/eykd/bundlepatch/internal/report"
)

// ApplyIO handles I/O for the apply command.
type ApplyIO interface {
	LoadConfig(ctx context.Context, path string) (config.Config, bool, error)
	ResolveBundle(ctx context.Context, path string) (string, error)
	ReadBundle(ctx context.Context, path string) ([]byte, error)
	// WriteBackup copies data to the backup path unless a backup already
	// exists, and reports whether it wrote one.
	WriteBackup(ctx context.Context, path string, data []byte) (bool, error)
	WriteBundleAtomic(ctx context.Context, path string, data []byte) error
}

// applyOutput is the JSON output schema for the apply command.
type applyOutput struct {
	Version     string             `json:"version"`
	Run         string             `json:"run,omitempty"`
	Bundle      string             `json:"bundle,omitempty"`
	Changed     bool               `json:"changed"`
	DryRun      bool               `json:"dryRun,omitempty"`
	Results     []patch.Result     `json:"results"`
	Diagnostics []patch.Diagnostic `json:"diagnostics"`
}

// BackupSuffix is appended to the bundle path to name its backup.
const BackupSuffix = ".bpatch-orig"

// isTerminalFn reports whether w is an interactive terminal. Replaced in tests.
var isTerminalFn = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newRunID returns the correlation id attached to an apply run's log lines.
var newRunID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewApplyCmd creates the apply subcommand.
func NewApplyCmd(io ApplyIO) *cobra.Command {
	var (
		configPath string
		only       []string
		dryRun     bool
		showDiff   bool
		jsonMode   bool
		backup     bool
		noBackup   bool
		noColor    bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:          "apply [bundle|dir]",
		Short:        "Apply the configured patches to a bundle",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := loggerFrom(ctx)

			cfg, exists, err := io.LoadConfig(ctx, configPath)
			if err == nil && !exists && cmd.Flags().Changed("config") {
				err = fmt.Errorf("config file %s does not exist", configPath)
			}
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("loading config: %w", err), applyFailure)
			}

			target := cfg.Bundle
			if len(args) == 1 {
				target = args[0]
			}
			if target == "" {
				return fmt.Errorf("no bundle given and %s sets none", config.FileName)
			}

			entries := patches.Enabled(cfg.Patches)
			var diags []patch.Diagnostic
			if len(only) > 0 {
				entries, diags = patches.Select(only)
				if hasDiagnosticError(diags) {
					return emitSelectorErrors(cmd, jsonMode, diags)
				}
			}

			bundlePath, err := io.ResolveBundle(ctx, target)
			if err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("resolving bundle: %w", err), applyFailure)
			}
			data, err := io.ReadBundle(ctx, bundlePath)
			if err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("reading bundle: %w", err), applyFailure)
			}

			run := newRunID()
			log = log.With(zap.String("run", run), zap.String("bundle", bundlePath))
			log.Debug("applying patches", zap.Int("patches", len(entries)), zap.Int("bytes", len(data)))

			var reporter patch.Reporter
			if (showDiff || dryRun) && !jsonMode && !quiet {
				reporter = report.NewDiffer(cmd.OutOrStdout(), report.DefaultContext, !noColor && isTerminalFn(cmd.OutOrStdout()))
			}
			engine := patch.NewEngine(log, reporter)

			doc := string(data)
			patched, results := engine.Run(doc, patches.Steps(entries, cfg.Patches)...)
			changed := patched != doc
			diags = append(diags, collectDiagnostics(results)...)

			if jsonMode {
				out := applyOutput{
					Version:     "1",
					Run:         run,
					Bundle:      bundlePath,
					Changed:     changed,
					DryRun:      dryRun,
					Results:     results,
					Diagnostics: diags,
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				printDiagnostics(cmd, diags)
				if !quiet {
					printResults(cmd, results)
				}
			}

			if hasDiagnosticError(diags) {
				return fmt.Errorf("apply has errors")
			}
			if dryRun || !changed {
				return writeSummary(cmd, jsonMode || quiet, applySummary(bundlePath, results, changed, dryRun))
			}

			keepBackup := cfg.Backup
			if cmd.Flags().Changed("backup") {
				keepBackup = backup
			}
			if keepBackup && !noBackup {
				wrote, err := io.WriteBackup(ctx, bundlePath+BackupSuffix, data)
				if err != nil {
					return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("writing backup: %w", err), applyFailure)
				}
				if wrote {
					log.Info("backup written", zap.String("path", bundlePath+BackupSuffix))
				}
			}
			if err := io.WriteBundleAtomic(ctx, bundlePath, []byte(patched)); err != nil {
				return emitPTE004AndError(cmd, jsonMode, fmt.Errorf("writing bundle: %w", err), applyFailure)
			}
			return writeSummary(cmd, jsonMode || quiet, applySummary(bundlePath, results, changed, dryRun))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.FileName, "configuration file")
	cmd.Flags().StringSliceVar(&only, "only", nil, "run only these patches (names or unique prefixes), ignoring enabled flags")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the changes without writing the bundle")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show each change as a character diff")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a copy of the unpatched bundle (default from config)")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "never write a backup")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diff output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "print only diagnostics")

	return cmd
}

// applyFailure is the apply JSON output for a run that failed on I/O,
// configuration or patch selection.
func applyFailure(diags []patch.Diagnostic) any {
	return applyOutput{Version: "1", Results: []patch.Result{}, Diagnostics: diags}
}

// emitSelectorErrors reports --only selector diagnostics and returns a
// non-nil error.
func emitSelectorErrors(cmd *cobra.Command, jsonMode bool, diags []patch.Diagnostic) error {
	if jsonMode {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(applyFailure(diags)); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
	} else {
		printDiagnostics(cmd, diags)
	}
	return errors.New("invalid patch selection")
}

// printResults writes one line per patch naming the shape and position of
// each applied patch.
func printResults(cmd *cobra.Command, results []patch.Result) {
	for _, r := range results {
		if !r.Applied {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped  %s\n", r.Patch)
			continue
		}
		pos := ""
		if r.Position != nil {
			pos = fmt.Sprintf(" at %d:%d", r.Position.Line, r.Position.Column)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied  %s (%s)%s\n", r.Patch, r.Location.Shape, pos)
	}
}

func applySummary(path string, results []patch.Result, changed, dryRun bool) string {
	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	path = sanitizePath(path)
	switch {
	case dryRun:
		return fmt.Sprintf("Dry run: %d of %d patches apply to %s; nothing written", applied, len(results), path)
	case !changed:
		return "No changes to " + path
	}
	return fmt.Sprintf("Patched %s (%d of %d patches applied)", path, applied, len(results))
}

func writeSummary(cmd *cobra.Command, silent bool, line string) error {
	if silent {
		return nil
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// fileApplyIO implements ApplyIO using OS file I/O.
type fileApplyIO struct{}

func newDefaultApplyIO() *fileApplyIO {
	return &fileApplyIO{}
}

// LoadConfig reads the configuration file; a missing file yields defaults.
func (f *fileApplyIO) LoadConfig(_ context.Context, path string) (config.Config, bool, error) {
	return config.Load(path)
}

// ResolveBundle maps a file or directory argument to the bundle file.
func (f *fileApplyIO) ResolveBundle(ctx context.Context, path string) (string, error) {
	return FindBundleImpl(ctx, path)
}

// ReadBundle reads the bundle file at path.
func (f *fileApplyIO) ReadBundle(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteBackup writes data to path unless path already exists.
func (f *fileApplyIO) WriteBackup(_ context.Context, path string, data []byte) (bool, error) {
	return f.WriteBackupImpl(path, data)
}

// WriteBackupImpl creates path exclusively so an existing backup of the
// pristine bundle is never replaced by an already-patched one.
func (f *fileApplyIO) WriteBackupImpl(path string, data []byte) (bool, error) {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err = fh.Write(data); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return false, fmt.Errorf("writing backup: %w", err)
	}
	if err = fh.Close(); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("closing backup: %w", err)
	}
	return true, nil
}

// WriteBundleAtomic writes data to path atomically via a temp file.
func (f *fileApplyIO) WriteBundleAtomic(ctx context.Context, path string, data []byte) error {
	return f.WriteBundleAtomicImpl(ctx, path, data)
}

// WriteBundleAtomicImpl performs the atomic write via OS temp file rename,
// keeping the bundle's permission bits.
func (f *fileApplyIO) WriteBundleAtomicImpl(_ context.Context, path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, statErr := os.Stat(path); statErr == nil {
		if fi.Mode().Perm()&0200 == 0 {
			return fmt.Errorf("bundle file is read-only")
		}
		mode = fi.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
