package filter

import (
	"errors"
	"testing"

	"ontorefine/internal/config"
	"ontorefine/internal/source"
)

const filterTOML = `
code_prefix = "CBO:"
ontology_root = "Onyx"
standard_booleans = ["Y", "N"]

[[filters]]
questionnaire = "Participants"
alternate_name = "Participant"

[[filters.exclude]]
name = "pat_email"

[[filters.exclude]]
name = "pat_address"
hints = ["line1", "line2"]

[[filters]]
questionnaire = "Admin"
`

func mustConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(filterTOML), "toml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestWholeQuestionnaireExcluded(t *testing.T) {
	f := New(mustConfig(t), nil)
	v := source.NewVariable("user_name", "User", "text")
	admin := source.NewEntity("Admin", v)
	source.NewSource("onyx", admin)
	for _, n := range []*source.Node{admin, v} {
		reason, err := f.Check(n)
		if err != nil || reason != ByWholeQuestionnaire {
			t.Fatalf("%s: reason = %v, err = %v", n.PathString(), reason, err)
		}
	}
}

func TestPathExclusionUsesAlternateName(t *testing.T) {
	f := New(mustConfig(t), nil)
	email := source.NewVariable("pat_email", "Email", "text")
	line1 := source.NewVariable("line1", "Line 1", "text")
	line3 := source.NewVariable("line3", "Line 3", "text")
	addr := source.NewVariable("pat_address", "Address", "text", line1, line3)
	age := source.NewVariable("age", "Age", "integer")
	source.NewSource("onyx", source.NewEntity("Participant", email, addr, age))

	cases := []struct {
		node *source.Node
		want bool
	}{
		{email, false},
		{line1, false},
		{line3, true},
		{addr, true},
		{age, true},
	}
	for _, tc := range cases {
		got, err := f.Included(tc.node)
		if err != nil {
			t.Fatalf("%s: %v", tc.node.PathString(), err)
		}
		if got != tc.want {
			t.Fatalf("Included(%s) = %v, want %v", tc.node.PathString(), got, tc.want)
		}
		again, _ := f.Included(tc.node)
		if again != got {
			t.Fatalf("Included(%s) not stable", tc.node.PathString())
		}
	}
}

func TestUnlistedQuestionnaireIncluded(t *testing.T) {
	f := New(mustConfig(t), nil)
	v := source.NewVariable("pat_email", "Email", "text")
	source.NewSource("onyx", source.NewStage("Consent", v))
	if ok, err := f.Included(v); err != nil || !ok {
		t.Fatalf("Included = %v, %v", ok, err)
	}
}

func TestHookConsultedFirst(t *testing.T) {
	calls := 0
	hook := ExcluderFunc(func(n *source.Node) (bool, error) {
		calls++
		return n.Name == "consent_mode", nil
	})
	f := New(mustConfig(t), hook)
	v := source.NewVariable("consent_mode", "Mode", "text")
	source.NewSource("onyx", source.NewStage("Consent", v))
	reason, err := f.Check(v)
	if err != nil || reason != ByHook || calls != 1 {
		t.Fatalf("reason = %v, err = %v, calls = %d", reason, err, calls)
	}
}

func TestHookFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	f := New(mustConfig(t), ExcluderFunc(func(*source.Node) (bool, error) { return false, boom }))
	v := source.NewVariable("x", "", "text")
	source.NewSource("onyx", source.NewStage("Consent", v))
	_, err := f.Included(v)
	if !errors.Is(err, ErrHookFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestSymptomsOnsetHook(t *testing.T) {
	h, err := Hook(SymptomsOnset)
	if err != nil {
		t.Fatalf("Hook: %v", err)
	}
	q := source.NewQuestion("epi_symponset_time_cat_2", "Onset")
	v := source.NewVariable("epi_symponset_cat", "", "text")
	if ok, _ := h.Excluded(q); !ok {
		t.Fatalf("onset question kept")
	}
	if ok, _ := h.Excluded(v); ok {
		t.Fatalf("variables are not subject to the onset hook")
	}
	if _, err := Hook("nope"); err == nil {
		t.Fatalf("expected error for unknown hook")
	}
	if h, err := Hook(""); h != nil || err != nil {
		t.Fatalf("empty hook name = %v, %v", h, err)
	}
}
