package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("created backup", "id", "Backup_2024-01-01_00-00-00")
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "created backup") || !strings.Contains(out, "id=Backup_2024-01-01_00-00-00") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.With("run", "abc").Warn("slow cycle", "seconds", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "slow cycle" || rec["run"] != "abc" || rec["level"] != "WARN" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "error", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	child := l.With("component", "scheduler")

	child.Info("before")
	if err := l.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	child.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("info logged while level was error: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("debug not logged after SetLevel on parent: %q", out)
	}
	if err := l.SetLevel("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}
