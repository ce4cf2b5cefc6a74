package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tidsplan/internal/app"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("TIDSPLAN_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "tidsplan") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	for _, want := range []string{"app:", "config:", "db:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in paths output, got %q", want, out.String())
		}
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

// TestRunStartsProgram verifies behavior for the covered scenario.
func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	programFactory = func(_ tea.Model) program {
		return fakeProgram{}
	}

	dbPath := filepath.Join(t.TempDir(), "tidsplan.db")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRunExportAfterStartupHasDefaultProject verifies behavior for the covered scenario.
func TestRunExportAfterStartupHasDefaultProject(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tidsplan.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	outPath := filepath.Join(tmp, "snapshot.json")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(snap.Projects) != 1 {
		t.Fatalf("expected the bootstrapped default project, got %d projects", len(snap.Projects))
	}
}

// TestRunImportRoundTrip verifies behavior for the covered scenario.
func TestRunImportRoundTrip(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	tmp := t.TempDir()
	srcDB := filepath.Join(tmp, "src.db")
	dstDB := filepath.Join(tmp, "dst.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	outPath := filepath.Join(tmp, "snapshot.json")

	if err := run(context.Background(), []string{"--db", srcDB, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", srcDB, "--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", dstDB, "--config", cfgPath, "import", "--in", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dstDB, "--config", cfgPath, "export", "--out", "-"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export stdout) error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal([]byte(out.String()), &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(snap.Projects) != 1 {
		t.Fatalf("expected imported project in destination db, got %d", len(snap.Projects))
	}
}

// TestRunImportRequiresInput verifies behavior for the covered scenario.
func TestRunImportRequiresInput(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tidsplan.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "--in is required") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

// TestRunServeRejectsExtraArgs verifies behavior for the covered scenario.
func TestRunServeRejectsExtraArgs(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tidsplan.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "serve", "extra"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unexpected serve arguments") {
		t.Fatalf("expected serve argument error, got %v", err)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TIDSPLAN_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("TIDSPLAN_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected (true, true), got (%t, %t)", v, ok)
	}
	t.Setenv("TIDSPLAN_TEST_BOOL", "nope")
	if _, ok := parseBoolEnv("TIDSPLAN_TEST_BOOL"); ok {
		t.Fatal("expected parse failure for invalid boolean")
	}
}

// TestDevLogFilePath verifies behavior for the covered scenario.
func TestDevLogFilePath(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	path, err := devLogFilePath("/var/log/tidsplan", "tidsplan", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	if path != "/var/log/tidsplan/tidsplan-20260824.log" {
		t.Fatalf("unexpected dev log path %q", path)
	}
}

// TestSanitizeLogFileStem verifies behavior for the covered scenario.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"tidsplan":     "tidsplan",
		"  ":           "tidsplan",
		"my app/name":  "my-app-name",
		"weird: name ": "weird--name",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
