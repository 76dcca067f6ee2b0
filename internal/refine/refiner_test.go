package refine

import (
	"context"
	"errors"
	"testing"

	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/enumgen"
	"ontorefine/internal/filter"
	"ontorefine/internal/ontology"
	"ontorefine/internal/source"
	"ontorefine/internal/testkit"
)

const refineTOML = `
code_prefix = "CBO:"
ontology_root = "Onyx"
standard_booleans = ["Y", "N", "PNA", "DK"]

[ethnicity]
variable = "ethnicity"

[[ethnicity.codes]]
name = "White"
description = "White British"
value = "A"

[[ethnicity.codes]]
name = "Asian"
description = "Asian or Asian British"
value = "H"

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

type harness struct {
	r    *Refiner
	sink *enumgen.MemorySink
	bag  *diag.Bag
}

func newHarness(t *testing.T, hook filter.Excluder) *harness {
	t.Helper()
	cfg, err := config.Parse([]byte(refineTOML), "toml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	h := &harness{sink: &enumgen.MemorySink{}, bag: diag.NewBag(1000)}
	h.r, err = New(Options{
		Config:   cfg,
		Hook:     hook,
		Sink:     h.sink,
		Reporter: diag.BagReporter{Bag: h.bag},
		RunID:    "test-run",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func (h *harness) refine(t *testing.T, name string, content *source.Node) {
	t.Helper()
	doc := &source.Document{Name: name, Root: source.NewSource("onyx", content)}
	if err := h.r.Refine(context.Background(), doc); err != nil {
		t.Fatalf("Refine(%s): %v", name, err)
	}
}

func folderNamed(fs []*ontology.Folder, name string) *ontology.Folder {
	for _, f := range fs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func variableNamed(vs []*ontology.Variable, name string) *ontology.Variable {
	for _, v := range vs {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func TestVitalStatusEndToEnd(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Participant", source.NewEntity("Participant",
		source.NewVariable("vital_status", "Vital status", "TEXT"),
	))

	top := h.r.Container().Folders
	if len(top) != 1 || top[0].Name != "Participant" {
		t.Fatalf("top folders = %+v", top)
	}
	vs := folderNamed(top[0].Folders, "vital_status")
	if vs == nil || vs.Description != "Vital status" || vs.Code == "" {
		t.Fatalf("vital_status folder = %+v", vs)
	}
	a, ok := h.sink.Get("vital_status")
	if !ok {
		t.Fatalf("artifact not persisted")
	}
	leaves := a.Leaves()
	want := []struct{ code, desc string }{
		{vs.Code + ":N", "Living"},
		{vs.Code + ":Y", "Deceased"},
		{vs.Code + ":@", "Not recorded"},
	}
	if len(leaves) != len(want) {
		t.Fatalf("leaves = %d, want 3", len(leaves))
	}
	for i, w := range want {
		if leaves[i].Code != w.code || leaves[i].Description != w.desc {
			t.Fatalf("leaf %d = %+v, want %+v", i, leaves[i], w)
		}
	}
	if a.Type != ontology.TypeVitalStatus || a.RunID != "test-run" {
		t.Fatalf("artifact header = %+v", a)
	}
}

func TestEntityAgeAndEthnicity(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Participant", source.NewEntity("Participant",
		source.NewVariable("age", "Age", "integer"),
		source.NewVariable("stage", "Stage", "text"),
		source.NewVariable("ethnicity", "Ethnicity", "text"),
		source.NewVariable("gender", "Gender", "text"),
	))
	p := h.r.Container().Folders[0]

	age := folderNamed(p.Folders, "age")
	if age == nil || age.Description != "Participant Age" || age.Code != "CBO:Participant.age" {
		t.Fatalf("age folder = %+v", age)
	}
	if a, ok := h.sink.Get("age"); !ok || len(a.Groups) != 21 {
		t.Fatalf("age artifact missing or misshapen")
	}
	if eth := folderNamed(p.Folders, "ethnicity"); eth == nil || eth.Description != "Ethnic group" {
		t.Fatalf("ethnicity folder = %+v", eth)
	}
	if a, _ := h.sink.Get("ethnicity"); a == nil || a.Leaves()[1].Code != "CBO:Participant.ethnicity:H" {
		t.Fatalf("ethnicity artifact = %+v", a)
	}
	stage := variableNamed(p.Variables, "stage")
	if stage == nil || stage.Type != ontology.TypeText || stage.Description != "Stage" {
		t.Fatalf("stage leaf = %+v", stage)
	}
	if g := variableNamed(p.Variables, "gender"); g == nil || g.Code != "CBO:Participant.gender" {
		t.Fatalf("gender leaf = %+v", g)
	}
}

func TestInformationOnlyQuestionsVanish(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Consent", source.NewStage("Consent",
		source.NewSection("intro",
			source.NewQuestion("welcome", "Welcome"),
			source.NewQuestion("read_this", "Please read", source.NewVariable("read_this", "Read", "boolean")),
			source.NewQuestion("agree", "Agree?", source.NewVariable("agreed", "Agreed", "boolean")),
		),
	))
	intro := h.r.Container().Folders[0].Folders[0]
	if len(intro.Folders) != 1 || intro.Folders[0].Name != "agree" {
		t.Fatalf("section folders = %+v", intro.Folders)
	}
	if got := len(h.bag.ByCode(diag.FltInfoOnly)); got != 2 {
		t.Fatalf("info only diagnostics = %d, want 2", got)
	}
	agreed := intro.Folders[0].Variables[0]
	if agreed.Description != "Agree?:Agreed" || agreed.Code != "CBO:agree.agreed" {
		t.Fatalf("agreed = %+v", agreed)
	}
}

func TestCollapsibleQuestionMakesOneFolder(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Lifestyle", source.NewStage("Lifestyle",
		source.NewSection("diet",
			source.NewQuestion("fruit", "Fruit",
				source.NewVariable("fruit", "Fruit", "boolean",
					source.NewVariable("apple", "Apple", "boolean"),
				),
			),
		),
	))
	diet := h.r.Container().Folders[0].Folders[0]
	if len(diet.Folders) != 1 {
		t.Fatalf("diet folders = %d", len(diet.Folders))
	}
	fruit := diet.Folders[0]
	if fruit.Name != "fruit" || len(fruit.Folders) != 0 || len(fruit.Variables) != 1 {
		t.Fatalf("fruit folder = %+v", fruit)
	}
	if v := fruit.Variables[0]; v.Name != "apple" || v.Code != "CBO:fruit.apple" || v.Description != "Fruit:Apple" {
		t.Fatalf("apple = %+v", v)
	}
}

func TestGeneratedEnumerationGroup(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Lifestyle", source.NewStage("Lifestyle",
		source.NewSection("smoking",
			source.NewQuestion("smoke", "Smoking",
				source.NewVariable("smoke", "Smoking", "boolean",
					source.NewVariable("smoke_open", "Smokes", "boolean"),
					source.NewVariable("smoke_quant", "Cigarettes per day", "integer"),
					source.NewVariable("PNA", "Prefer not to answer", "boolean"),
					source.NewVariable("comment", "Comment", "text"),
				),
			),
		),
	))
	smoke := h.r.Container().Folders[0].Folders[0].Folders[0]
	if smoke.Code != "CBO:smoke" {
		t.Fatalf("folder code = %q", smoke.Code)
	}
	if len(smoke.Variables) != 2 {
		t.Fatalf("variables = %+v", smoke.Variables)
	}
	q := smoke.Variables[0]
	if q.Name != "smoke_quant" || q.Type != ontology.TypeGeneratedEnumeration || q.Code != "CBO:smoke_quant" || q.Description != "Cigarettes per day" {
		t.Fatalf("quant = %+v", q)
	}
	pna := smoke.Variables[1]
	if pna.Name != "PNA" || pna.Type != ontology.TypeBoolean || pna.Code != "CBO:smoke.PNA" || pna.Description != "Smoking:Prefer not to answer" {
		t.Fatalf("PNA = %+v", pna)
	}
	a, ok := h.sink.Get("smoke")
	if !ok || len(a.Leaves()) != 21 || a.Leaves()[20].Code != "CBO:smoke:20" {
		t.Fatalf("artifact = %+v", a)
	}
	if a.Path != `\Onyx\Lifestyle\smoking\smoke` {
		t.Fatalf("artifact path = %q", a.Path)
	}
	if err := testkit.CheckArtifact(a); err != nil {
		t.Fatalf("artifact invariants: %v", err)
	}
}

func TestRecentTimeGroup(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Symptoms", source.NewStage("Symptoms",
		source.NewSection("pain",
			source.NewQuestion("pain_start", "Pain started",
				source.NewVariable("pain_start_open", "Pain", "boolean"),
				source.NewVariable("pain_start_time", "When", "datetime"),
			),
		),
	))
	if _, ok := h.sink.Get("pain_start"); !ok {
		t.Fatalf("recent time artifact missing")
	}
	a, _ := h.sink.Get("pain_start")
	if a.Type != ontology.TypeRecentTime || len(a.Leaves()) != 193 {
		t.Fatalf("artifact = %s with %d leaves", a.Type, len(a.Leaves()))
	}
	if err := testkit.CheckArtifact(a); err != nil {
		t.Fatalf("artifact invariants: %v", err)
	}
}

func TestStandardAndContinuousGroups(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Health", source.NewStage("Health",
		source.NewSection("general",
			source.NewQuestion("colour", "Eye colour",
				source.NewVariable("blue", "Blue", "boolean"),
				source.NewVariable("brown", "Brown", "boolean"),
				source.NewVariable("DK", "Don't know", "boolean"),
			),
			source.NewQuestion("pain", "Pain level",
				source.NewVariable("pain_open", "In pain", "boolean"),
				source.NewVariable("pain_level", "Level", "decimal"),
			),
		),
	))
	general := h.r.Container().Folders[0].Folders[0]
	colour := folderNamed(general.Folders, "colour")
	if colour.Code != "" || len(colour.Variables) != 3 {
		t.Fatalf("colour = %+v", colour)
	}
	blue := variableNamed(colour.Variables, "blue")
	if blue.Type != ontology.TypeGeneratedEnumeration || blue.Code != "CBO:colour.blue" || blue.Description != "Blue" {
		t.Fatalf("blue = %+v", blue)
	}
	if dk := variableNamed(colour.Variables, "DK"); dk.Type != ontology.TypeBoolean {
		t.Fatalf("DK = %+v", dk)
	}

	pain := folderNamed(general.Folders, "pain")
	if pain.Code != "CBO:pain" || len(pain.Variables) != 1 {
		t.Fatalf("pain = %+v", pain)
	}
	if lvl := pain.Variables[0]; lvl.Type != ontology.TypeDecimal || lvl.Code != "CBO:pain.pain_level" {
		t.Fatalf("pain_level = %+v", lvl)
	}
	if len(h.bag.ByCode(diag.GenNoSpecMatch)) != 1 {
		t.Fatalf("continuous fallback not reported")
	}
	if len(h.sink.Artifacts) != 0 {
		t.Fatalf("unexpected artifacts: %d", len(h.sink.Artifacts))
	}
}

func TestRestrictionsAndTopLevelVariables(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Consent", source.NewStage("Consent",
		source.NewVariable("consent_mode", "Consent mode", "text",
			source.NewRestriction("MANUAL", "ELECTRONIC"),
		),
		source.NewVariable("consent_date", "Date", "DATE"),
	))
	top := h.r.Container().Folders[0]
	mode := folderNamed(top.Folders, "consent_mode")
	if mode == nil || mode.Description != "Consent mode" || len(mode.Variables) != 2 {
		t.Fatalf("consent_mode = %+v", mode)
	}
	if v := mode.Variables[1]; v.Name != "ELECTRONIC" || v.Type != ontology.TypeBoolean || v.Code != "CBO:consent_mode.ELECTRONIC" {
		t.Fatalf("restriction leaf = %+v", v)
	}
	if d := variableNamed(top.Variables, "consent_date"); d == nil || d.Type != ontology.TypeDatetime || d.Code != "CBO:Consent.consent_date" {
		t.Fatalf("consent_date = %+v", d)
	}
}

func TestCodesUniqueAcrossFiles(t *testing.T) {
	h := newHarness(t, nil)
	for _, name := range []string{"StageOne", "StageTwo"} {
		h.refine(t, name, source.NewStage(name,
			source.NewSection("s",
				source.NewQuestion("q", "Q",
					source.NewVariable("a", "A", "text"),
					source.NewVariable("b", "B", "text"),
				),
			),
		))
	}
	if err := testkit.CheckTree(h.r.Container()); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
	seen := map[string]bool{}
	var walk func(fs []*ontology.Folder)
	walk = func(fs []*ontology.Folder) {
		for _, f := range fs {
			for _, v := range f.Variables {
				if len(v.Code) > 50 {
					t.Fatalf("code %q too long", v.Code)
				}
				seen[v.Code] = true
			}
			walk(f.Folders)
		}
	}
	walk(h.r.Container().Folders)
	if !seen["CBO:ST.q.a"] {
		t.Fatalf("second file did not fall back to the stage qualifier: %v", seen)
	}
	if h.bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", diag.FormatShort(h.bag.Items(), false))
	}
}

func TestFiltersAndHooks(t *testing.T) {
	hook := filter.ExcluderFunc(func(n *source.Node) (bool, error) {
		return n.Kind == source.KindQuestion && n.Name == "secret", nil
	})
	h := newHarness(t, hook)
	h.refine(t, "Admin", source.NewEntity("Admin", source.NewVariable("user", "User", "text")))
	h.refine(t, "Survey", source.NewStage("Survey",
		source.NewSection("s",
			source.NewQuestion("secret", "Secret", source.NewVariable("x", "X", "text"), source.NewVariable("y", "Y", "text")),
			source.NewQuestion("open", "Open", source.NewVariable("x", "X", "text"), source.NewVariable("y", "Y", "text")),
		),
	))
	top := h.r.Container().Folders
	if len(top) != 1 || top[0].Name != "Survey" {
		t.Fatalf("top folders = %d", len(top))
	}
	s := top[0].Folders[0]
	if len(s.Folders) != 1 || s.Folders[0].Name != "open" {
		t.Fatalf("section folders = %+v", s.Folders)
	}
	if len(h.bag.ByCode(diag.FltExcludedHook)) != 1 || len(h.bag.ByCode(diag.FltWholeExcluded)) != 1 {
		t.Fatalf("exclusion diagnostics:\n%s", diag.FormatShort(h.bag.Items(), false))
	}
	if st := h.r.Stats(); st.Files != 2 || st.Excluded != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestHookExcludedGroupMembersAreDropped(t *testing.T) {
	hook := filter.ExcluderFunc(func(n *source.Node) (bool, error) {
		return n.Kind == source.KindVariable && (n.Name == "secret_b" || n.Name == "pain_note"), nil
	})
	h := newHarness(t, hook)
	h.refine(t, "Health", source.NewStage("Health",
		source.NewSection("s",
			source.NewQuestion("q", "Q",
				source.NewVariable("secret_b", "Secret", "boolean"),
				source.NewVariable("a", "A", "boolean"),
			),
			source.NewQuestion("pain", "Pain level",
				source.NewVariable("pain_open", "In pain", "boolean"),
				source.NewVariable("pain_level", "Level", "decimal"),
				source.NewVariable("pain_note", "Note", "text"),
			),
		),
	))
	s := h.r.Container().Folders[0].Folders[0]
	q := folderNamed(s.Folders, "q")
	if q == nil || len(q.Variables) != 1 || q.Variables[0].Name != "a" {
		t.Fatalf("q = %+v", q)
	}
	pain := folderNamed(s.Folders, "pain")
	if pain == nil || variableNamed(pain.Variables, "pain_note") != nil || variableNamed(pain.Variables, "pain_level") == nil {
		t.Fatalf("pain = %+v", pain)
	}
	if got := len(h.bag.ByCode(diag.FltExcludedHook)); got != 2 {
		t.Fatalf("hook diagnostics = %d, want 2", got)
	}
	if err := testkit.CheckTree(h.r.Container()); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
}

func TestGroupMemberHookFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, filter.ExcluderFunc(func(n *source.Node) (bool, error) {
		if n.Name == "b" {
			return false, boom
		}
		return false, nil
	}))
	doc := &source.Document{Name: "S", Root: source.NewSource("onyx", source.NewStage("S",
		source.NewSection("s",
			source.NewQuestion("q", "Q",
				source.NewVariable("a", "A", "boolean"),
				source.NewVariable("b", "B", "boolean"),
			),
		),
	))}
	if err := h.r.Refine(context.Background(), doc); !errors.Is(err, filter.ErrHookFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrHookFailed wrapping boom", err)
	}
}

func TestUnknownTypeInStandardGroupIsFatal(t *testing.T) {
	h := newHarness(t, nil)
	doc := &source.Document{Name: "S", Root: source.NewSource("onyx", source.NewStage("S",
		source.NewSection("s",
			source.NewQuestion("colour", "Colour",
				source.NewVariable("blue", "Blue", "boolean"),
				source.NewVariable("shape", "Shape", "polygon"),
			),
		),
	))}
	if err := h.r.Refine(context.Background(), doc); !errors.Is(err, source.ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestLowercaseDateType(t *testing.T) {
	h := newHarness(t, nil)
	h.refine(t, "Y", source.NewStage("Y", source.NewVariable("when", "When", "date")))
	if v := variableNamed(h.r.Container().Folders[0].Variables, "when"); v == nil || v.Type != ontology.TypeDatetime {
		t.Fatalf("when = %+v", v)
	}
}

func TestFatalErrors(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, filter.ExcluderFunc(func(*source.Node) (bool, error) { return false, boom }))
	doc := &source.Document{Name: "X", Root: source.NewSource("onyx", source.NewStage("X"))}
	if err := h.r.Refine(context.Background(), doc); !errors.Is(err, filter.ErrHookFailed) {
		t.Fatalf("err = %v, want ErrHookFailed", err)
	}

	h = newHarness(t, nil)
	doc = &source.Document{Name: "Y", Root: source.NewSource("onyx", source.NewStage("Y",
		source.NewVariable("shape", "Shape", "polygon"),
	))}
	if err := h.r.Refine(context.Background(), doc); !errors.Is(err, source.ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}

	empty := &source.Document{Name: "Z", Root: &source.Node{Kind: source.KindSource}}
	if err := h.r.Refine(context.Background(), empty); !errors.Is(err, source.ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestQuestionPredicates(t *testing.T) {
	leaf := source.NewQuestion("q", "", source.NewVariable("q", "", "text"))
	nested := source.NewQuestion("q", "", source.NewVariable("q", "", "text", source.NewVariable("a", "", "text")))
	other := source.NewQuestion("q", "", source.NewVariable("v", "", "text"))
	parent := source.NewQuestion("p", "", source.NewQuestion("child", ""))
	cases := []struct {
		name              string
		q                 *source.Node
		infoOnly, collaps bool
	}{
		{"same-name leaf", leaf, true, true},
		{"same-name container", nested, false, true},
		{"other name", other, false, false},
		{"nested questions", parent, false, false},
	}
	for _, tc := range cases {
		if got := InformationOnly(tc.q); got != tc.infoOnly {
			t.Fatalf("%s: InformationOnly = %v", tc.name, got)
		}
		if got := Collapsible(tc.q); got != tc.collaps {
			t.Fatalf("%s: Collapsible = %v", tc.name, got)
		}
	}
}
