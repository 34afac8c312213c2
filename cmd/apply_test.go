package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eykd/bundlepatch/internal/config"
	"github.com/eykd/bundlepatch/internal/patch"
)

// testBundle carries the targets of the two patches enabled by default.
const testBundle = `"use strict";function a(){return 1}` +
	`q=1,X(()=>{if(!frozen){setTimeout(60);return}setState((x)=>x+1)},60);` +
	`switch(t){case"thinking":{if(!D&&!Z)return null;return n8.createElement($bA,{addMargin:Q,param:A,isTranscriptMode:D,verbose:Z,hideInTranscript:D&&!(!$||z===$)})}}`

const testBundlePatched = `"use strict";function a(){return 1}` +
	`q=1,X(()=>{setState((x)=>x+1)},60);` +
	`switch(t){case"thinking":{return n8.createElement($bA,{addMargin:Q,param:A,isTranscriptMode:true,verbose:Z,hideInTranscript:D&&!(!$||z===$)})}}`

// mockApplyIO is a test double for ApplyIO.
type mockApplyIO struct {
	cfg       config.Config
	cfgExists bool
	cfgErr    error
	cfgPath   string

	resolved   string
	resolveErr error
	resolvedAt string

	bundle  []byte
	readErr error

	backupExists bool
	backupErr    error
	backups      map[string][]byte

	writeErr  error
	written   []byte
	writePath string
	writes    int
}

func newMockApplyIO(bundle string) *mockApplyIO {
	return &mockApplyIO{
		cfg:       config.Default(),
		cfgExists: true,
		resolved:  "/app/cli.js",
		bundle:    []byte(bundle),
		backups:   make(map[string][]byte),
	}
}

func (m *mockApplyIO) LoadConfig(_ context.Context, path string) (config.Config, bool, error) {
	m.cfgPath = path
	return m.cfg, m.cfgExists, m.cfgErr
}

func (m *mockApplyIO) ResolveBundle(_ context.Context, path string) (string, error) {
	m.resolvedAt = path
	return m.resolved, m.resolveErr
}

func (m *mockApplyIO) ReadBundle(_ context.Context, _ string) ([]byte, error) {
	return m.bundle, m.readErr
}

func (m *mockApplyIO) WriteBackup(_ context.Context, path string, data []byte) (bool, error) {
	if m.backupErr != nil {
		return false, m.backupErr
	}
	if m.backupExists {
		return false, nil
	}
	m.backups[path] = append([]byte(nil), data...)
	return true, nil
}

func (m *mockApplyIO) WriteBundleAtomic(_ context.Context, path string, data []byte) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writePath = path
	m.written = append([]byte(nil), data...)
	return nil
}

func stubRunID(t *testing.T) {
	t.Helper()
	orig := newRunID
	newRunID = func() string { return "run-1" }
	t.Cleanup(func() { newRunID = orig })
}

func executeApply(t *testing.T, mock ApplyIO, args ...string) (string, string, error) {
	t.Helper()
	stubRunID(t)
	c := NewApplyCmd(mock)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), errOut.String(), err
}

// ──────────────────────────────────────────────────────────────────────────────
// Flags
// ──────────────────────────────────────────────────────────────────────────────

func TestNewApplyCmd_HasRequiredFlags(t *testing.T) {
	c := NewApplyCmd(nil)
	for _, name := range []string{"config", "only", "dry-run", "diff", "json", "backup", "no-backup", "no-color", "quiet"} {
		name := name
		t.Run(name, func(t *testing.T) {
			if c.Flags().Lookup(name) == nil {
				t.Errorf("expected --%s flag on apply command", name)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Successful runs
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyCmd_WritesPatchedBundle(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	out, errOut, err := executeApply(t, mock, "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, errOut)
	}
	if mock.resolvedAt != "/app" {
		t.Errorf("resolved %q, want the argument", mock.resolvedAt)
	}
	if mock.writePath != "/app/cli.js" || string(mock.written) != testBundlePatched {
		t.Errorf("written to %q:\n%s\nwant\n%s", mock.writePath, mock.written, testBundlePatched)
	}
	if got := string(mock.backups["/app/cli.js"+BackupSuffix]); got != testBundle {
		t.Errorf("backup = %q, want original bundle", got)
	}
	if !strings.Contains(out, "applied  spinner-no-freeze (frozen-guard) at 1:") {
		t.Errorf("stdout missing spinner result:\n%s", out)
	}
	if !strings.Contains(out, "Patched /app/cli.js (2 of 2 patches applied)") {
		t.Errorf("stdout missing summary:\n%s", out)
	}
	if mock.cfgPath != config.FileName {
		t.Errorf("config path = %q, want %q", mock.cfgPath, config.FileName)
	}
}

func TestApplyCmd_UsesConfiguredBundle(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	mock.cfg.Bundle = "/opt/cli.js"
	if _, _, err := executeApply(t, mock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.resolvedAt != "/opt/cli.js" {
		t.Errorf("resolved %q, want configured bundle", mock.resolvedAt)
	}
}

func TestApplyCmd_NoBundleGiven(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	if _, _, err := executeApply(t, mock); err == nil {
		t.Error("expected error when neither argument nor config names a bundle")
	}
}

func TestApplyCmd_DryRunShowsDiffWithoutWriting(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	out, _, err := executeApply(t, mock, "--dry-run", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.writes != 0 || len(mock.backups) != 0 {
		t.Errorf("dry run wrote %d times and %d backups", mock.writes, len(mock.backups))
	}
	if strings.Count(out, "@@ bytes") != 2 {
		t.Errorf("expected one diff per applied patch:\n%s", out)
	}
	if !strings.Contains(out, "Dry run: 2 of 2 patches apply") {
		t.Errorf("stdout missing dry-run summary:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("diff colorized on a non-terminal writer")
	}
}

func TestApplyCmd_DiffColorOnTerminal(t *testing.T) {
	orig := isTerminalFn
	isTerminalFn = func(io.Writer) bool { return true }
	t.Cleanup(func() { isTerminalFn = orig })

	out, _, err := executeApply(t, newMockApplyIO(testBundle), "--dry-run", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected colored diff on a terminal:\n%q", out)
	}

	out, _, err = executeApply(t, newMockApplyIO(testBundle), "--dry-run", "--no-color", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("--no-color still produced ANSI escapes")
	}
}

func TestApplyCmd_JSON(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	out, _, err := executeApply(t, mock, "--json", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got applyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if got.Version != "1" || got.Run != "run-1" || got.Bundle != "/app/cli.js" || !got.Changed {
		t.Errorf("output = %+v", got)
	}
	if len(got.Results) != 2 || got.Results[0].Patch != "spinner-no-freeze" || got.Results[1].Location.Shape != "braced-case" {
		t.Errorf("results = %+v", got.Results)
	}
	if strings.Contains(out, "Patched") {
		t.Error("human summary printed in JSON mode")
	}
}

func TestApplyCmd_OnlyIgnoresEnabledFlags(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	mock.cfg.Patches.SpinnerNoFreeze.Enabled = false
	mock.cfg.Patches.ThinkingVisibility.Enabled = false

	out, _, err := executeApply(t, mock, "--only", "spinner", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1 of 1 patches applied") {
		t.Errorf("stdout = %s", out)
	}
	if !strings.Contains(string(mock.written), "isTranscriptMode:D") {
		t.Error("unselected patch was applied")
	}
}

func TestApplyCmd_NotApplicableIsWarning(t *testing.T) {
	mock := newMockApplyIO(`function a(){return 1}`)
	out, errOut, err := executeApply(t, mock, "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.writes != 0 {
		t.Error("unchanged bundle was written")
	}
	if strings.Count(errOut, patch.CodeNotApplicable) != 2 {
		t.Errorf("stderr should carry one PTW001 per patch:\n%s", errOut)
	}
	if !strings.Contains(out, "No changes to /app/cli.js") {
		t.Errorf("stdout = %s", out)
	}
}

func TestApplyCmd_Quiet(t *testing.T) {
	out, _, err := executeApply(t, newMockApplyIO(testBundle), "--quiet", "/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("quiet run printed to stdout:\n%s", out)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Backups
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyCmd_Backup(t *testing.T) {
	tests := []struct {
		name       string
		cfgBackup  bool
		exists     bool
		args       []string
		wantBackup bool
	}{
		{"config default writes backup", true, false, nil, true},
		{"existing backup kept", true, true, nil, false},
		{"config disables backup", false, false, nil, false},
		{"flag enables backup", false, false, []string{"--backup"}, true},
		{"flag disables backup", true, false, []string{"--backup=false"}, false},
		{"no-backup wins", true, false, []string{"--no-backup"}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockApplyIO(testBundle)
			mock.cfg.Backup = tt.cfgBackup
			mock.backupExists = tt.exists
			if _, _, err := executeApply(t, mock, append(tt.args, "/app")...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(mock.backups) == 1; got != tt.wantBackup {
				t.Errorf("backup written = %v, want %v", got, tt.wantBackup)
			}
			if mock.writes != 1 {
				t.Errorf("bundle written %d times, want 1", mock.writes)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Failures
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyCmd_Failures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*mockApplyIO)
		args       []string
		wantStderr string
	}{
		{
			name:       "config read error",
			setup:      func(m *mockApplyIO) { m.cfgErr = errors.New("permission denied") },
			wantStderr: patch.CodeIOOrConfigFailure,
		},
		{
			name:       "explicit config missing",
			setup:      func(m *mockApplyIO) { m.cfgExists = false },
			args:       []string{"--config", "custom.yml"},
			wantStderr: "does not exist",
		},
		{
			name:       "invalid config",
			setup:      func(m *mockApplyIO) { m.cfg.Patches.ThinkerSymbolSpeed.IntervalMs = -1 },
			wantStderr: "intervalMs",
		},
		{
			name:       "unknown patch selector",
			args:       []string{"--only", "bogus"},
			wantStderr: patch.CodeUnknownPatch,
		},
		{
			name:       "ambiguous patch selector",
			args:       []string{"--only", "thinker"},
			wantStderr: patch.CodeAmbiguousPatch,
		},
		{
			name:       "bundle not found",
			setup:      func(m *mockApplyIO) { m.resolveErr = errBundleNotFound },
			wantStderr: "bundle not found",
		},
		{
			name:       "bundle unreadable",
			setup:      func(m *mockApplyIO) { m.readErr = errors.New("EIO") },
			wantStderr: "reading bundle",
		},
		{
			name:       "backup fails",
			setup:      func(m *mockApplyIO) { m.backupErr = errors.New("disk full") },
			wantStderr: "writing backup",
		},
		{
			name:       "write fails",
			setup:      func(m *mockApplyIO) { m.writeErr = errors.New("read-only") },
			wantStderr: "writing bundle",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockApplyIO(testBundle)
			if tt.setup != nil {
				tt.setup(mock)
			}
			_, errOut, err := executeApply(t, mock, append(tt.args, "/app")...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(errOut, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.wantStderr)
			}
		})
	}
}

func TestApplyCmd_FailureJSON(t *testing.T) {
	mock := newMockApplyIO(testBundle)
	mock.readErr = errors.New("EIO")
	out, _, err := executeApply(t, mock, "--json", "/app")
	if err == nil {
		t.Fatal("expected error")
	}
	var got applyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Code != patch.CodeIOOrConfigFailure || got.Changed {
		t.Errorf("output = %+v", got)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Logging
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyCmd_LogsCarryRunID(t *testing.T) {
	stubRunID(t)
	core, logs := observer.New(zapcore.DebugLevel)
	mock := newMockApplyIO(`function a(){return 1}`)

	c := NewApplyCmd(mock)
	c.SetOut(new(bytes.Buffer))
	c.SetErr(new(bytes.Buffer))
	c.SetArgs([]string{"/app"})
	c.SetContext(context.WithValue(context.Background(), loggerKey{}, zap.New(core)))
	if err := c.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	warned := logs.FilterMessage("patch not applied").All()
	if len(warned) != 2 {
		t.Fatalf("got %d not-applied warnings, want 2", len(warned))
	}
	for _, e := range warned {
		if e.ContextMap()["run"] != "run-1" || e.ContextMap()["bundle"] != "/app/cli.js" {
			t.Errorf("entry fields = %v", e.ContextMap())
		}
	}
}
