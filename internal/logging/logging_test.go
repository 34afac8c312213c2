package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf})
	log.Info("quiet")
	log.Warn("loud", zap.String("patch", "p"))
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info logged at default level:\n%s", out)
	}
	if !strings.Contains(out, "warn loud") || !strings.Contains(out, `"patch": "p"`) {
		t.Errorf("warning missing or malformed:\n%s", out)
	}
}

func TestNew_VerboseLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbose: true, Writer: &buf})
	log.Debug("details")
	if !strings.Contains(buf.String(), "debug details") {
		t.Errorf("debug line missing:\n%s", buf.String())
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Writer: &buf})
	log.Warn("patch not applied", zap.String("patch", "thinker-format"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "warn" || entry["msg"] != "patch not applied" || entry["patch"] != "thinker-format" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["ts"]; ok {
		t.Error("timestamps should be omitted")
	}
}
