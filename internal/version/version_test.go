package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInfoPlain(t *testing.T) {
	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prevNoColor }()

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3-rc1"
	GitCommit = "abc123"
	BuildDate = "2024-01-15T10:30:00Z"
	if got, want := Info(), "ontorefine 1.2.3-rc1 (abc123) built 2024-01-15T10:30:00Z"; got != want {
		t.Fatalf("Info = %q, want %q", got, want)
	}
}

func TestColoredKeepsOddVersions(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored = %q", got)
	}
	Version = "0.1.0"
	if got := Colored(); !strings.Contains(got, "0") {
		t.Fatalf("Colored = %q", got)
	}
}
