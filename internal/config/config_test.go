package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleTOML = `
code_prefix = "CBO:"
ontology_root = "Onyx"
user_procedure = "symptoms-onset"
standard_booleans = ["Y", "N", "PNA", "DK"]

[ethnicity]
variable = "ethnicity"

[[ethnicity.codes]]
name = "White"
description = "White British"
value = "A"

[[ethnicity.codes]]
name = "Other"
description = "Any other"
value = "S"

[[filters]]
questionnaire = "Participants"
alternate_name = "Participant"

[[filters.exclude]]
name = "pat_email"

[[filters]]
questionnaire = "Admin"

[[enumerations]]
name = "AGE"
hints = ["age"]
excludes = ["stage"]
first = 0
last = 101
group = 5

[[enumerations]]
name = "RECENT_TIME"
hints = ["_time"]

[[enumerations]]
name = "SMALL_NUMBER"
hints = ["quant"]
first = 0
last = 20
`

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), "toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CodePrefix != "CBO:" || cfg.OntologyRoot != "Onyx" {
		t.Fatalf("prefix/root = %q/%q", cfg.CodePrefix, cfg.OntologyRoot)
	}
	if len(cfg.PathOmit) != 2 || cfg.PathOmit[0] != "Participants" {
		t.Fatalf("PathOmit default = %v", cfg.PathOmit)
	}
	names := []string{}
	for _, e := range cfg.Enumerations {
		names = append(names, e.Name)
	}
	if len(names) != 3 || names[0] != "AGE" || names[1] != "RECENT_TIME" || names[2] != "SMALL_NUMBER" {
		t.Fatalf("enumeration order = %v", names)
	}
	age, ok := cfg.Enumeration(AgeSpec)
	if !ok || !age.Grouped() || *age.Last != 101 {
		t.Fatalf("age spec = %+v", age)
	}
	small, _ := cfg.Enumeration("SMALL_NUMBER")
	if !small.HasRange() || small.Grouped() {
		t.Fatalf("small number spec = %+v", small)
	}
	rt, _ := cfg.Enumeration(RecentTimeMarker)
	if !rt.IsRecentTime() || rt.HasRange() {
		t.Fatalf("recent time spec = %+v", rt)
	}
	if f, ok := cfg.FilterFor("Participant"); !ok || f.Questionnaire != "Participants" {
		t.Fatalf("alternate filter lookup failed: %+v", f)
	}
	if f, ok := cfg.FilterFor("Admin"); !ok || len(f.Exclude) != 0 {
		t.Fatalf("Admin filter = %+v", f)
	}
	if !cfg.IsStandardBoolean("pna") || cfg.IsStandardBoolean("open") {
		t.Fatalf("standard boolean matching is off")
	}
}

func TestParseYAML(t *testing.T) {
	data := `
code_prefix: "CBO:"
ontology_root: Onyx
standard_booleans: [Y, N]
path_omit: []
enumerations:
  - name: HEIGHT
    hints: [height]
    first: 100
    last: 220
    group: 10
`
	cfg, err := Parse([]byte(data), "yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.PathOmit) != 0 {
		t.Fatalf("explicit empty path_omit replaced: %v", cfg.PathOmit)
	}
	if e, ok := cfg.Enumeration("HEIGHT"); !ok || e.Group != 10 {
		t.Fatalf("HEIGHT = %+v", e)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing prefix": `ontology_root = "O"
standard_booleans = ["Y"]`,
		"no booleans": `code_prefix = "C:"
ontology_root = "O"`,
		"inverted range": `code_prefix = "C:"
ontology_root = "O"
standard_booleans = ["Y"]
[[enumerations]]
name = "X"
first = 9
last = 1`,
		"half range": `code_prefix = "C:"
ontology_root = "O"
standard_booleans = ["Y"]
[[enumerations]]
name = "X"
first = 1`,
		"duplicate enumeration": `code_prefix = "C:"
ontology_root = "O"
standard_booleans = ["Y"]
[[enumerations]]
name = "X"
[[enumerations]]
name = "X"`,
		"unknown key": `code_prefix = "C:"
ontology_root = "O"
standard_booleans = ["Y"]
colour = "blue"`,
		"syntax": `code_prefix = `,
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data), "toml"); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: err = %v, want ErrInvalid", name, err)
		}
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refine.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
