package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ontorefine/internal/driver"
)

const cliTOML = `
code_prefix = "CBO:"
ontology_root = "Onyx"
standard_booleans = ["Y", "N"]

[[enumerations]]
name = "AGE"
hints = ["age"]
first = 0
last = 20
group = 5

[[enumerations]]
name = "RECENT_TIME"
hints = ["_time"]
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "refine.toml")
	if err := os.WriteFile(path, []byte(cliTOML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--color", "off")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Tool != "ontorefine" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestCheckListsEnumerations(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	out, err := execute(t, "check", "--color", "off", "-c", cfg)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "0..20 by 5") || !strings.Contains(out, "time buckets") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRefineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `<source name="onyx"><entity name="Participant"><variable name="age" label="Age" type="integer"/></entity></source>`
	if err := os.WriteFile(filepath.Join(in, "Participant.xml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := writeConfig(t, dir)
	refineDir := filepath.Join(dir, "refine")
	enumDir := filepath.Join(dir, "enum")

	out, err := execute(t, "refine", "--color", "off", "--ui", "off",
		"-i", in, "-c", cfg, "-r", refineDir, "-e", enumDir, "-n", "onyx.json",
		"--format", "json", "--timings")
	if err != nil {
		t.Fatalf("refine: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 files") || !strings.Contains(out, "timings:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(refineDir, "onyx.json")); err != nil {
		t.Fatalf("main document: %v", err)
	}
	if _, err := os.Stat(filepath.Join(enumDir, "age.json")); err != nil {
		t.Fatalf("age artifact: %v", err)
	}

	// a second run must refuse the existing output directories
	_, err = execute(t, "refine", "--color", "off", "--ui", "off",
		"-i", in, "-c", cfg, "-r", refineDir, "-e", enumDir, "-n", "onyx.json")
	if !errors.Is(err, driver.ErrOutputExists) || exitCode(err) != 2 {
		t.Fatalf("err = %v (exit %d), want ErrOutputExists usage error", err, exitCode(err))
	}
}

func TestReadUIMode(t *testing.T) {
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Fatalf("readUIMode = %v, %v", m, err)
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
	if shouldUseTUI(uiModeOn, true) {
		t.Fatalf("quiet must disable the progress UI")
	}
}
