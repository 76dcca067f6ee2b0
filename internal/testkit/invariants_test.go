package testkit

import (
	"strings"
	"testing"

	"ontorefine/internal/ontology"
)

func TestCheckTreeFindsDuplicateCodes(t *testing.T) {
	c := ontology.NewContainer("Onyx", "")
	f := c.AddFolder("Stage", "")
	f.AddVariable("a", "", ontology.TypeText, "CBO:s.a")
	if err := CheckTree(c); err != nil {
		t.Fatalf("CheckTree: %v", err)
	}
	f.AddFolder("sub", "").AddVariable("b", "", ontology.TypeText, "CBO:s.a")
	err := CheckTree(c)
	if err == nil || !strings.Contains(err.Error(), `"CBO:s.a"`) {
		t.Fatalf("err = %v, want duplicate code", err)
	}
}

func TestCheckTreeRequiresCodes(t *testing.T) {
	c := ontology.NewContainer("Onyx", "")
	c.AddFolder("Stage", "").AddVariable("a", "", ontology.TypeText, "")
	if err := CheckTree(c); err == nil {
		t.Fatalf("expected missing code error")
	}
}

func TestCheckArtifact(t *testing.T) {
	c := ontology.NewContainer("Onyx", "")
	f := c.AddFolder("Participant", "").AddFolder("age", "Participant Age")
	f.Code = "CBO:Participant.age"
	a := ontology.NewArtifact(f, ontology.TypeGeneratedEnumeration, nil)
	a.AddLeaf("1", "", f.Code+":1")
	if err := CheckArtifact(a); err != nil {
		t.Fatalf("CheckArtifact: %v", err)
	}
	a.AddLeaf("2", "", "CBO:other:2")
	if err := CheckArtifact(a); err == nil {
		t.Fatalf("expected foreign leaf code error")
	}
	a.HLevel++
	if err := CheckArtifact(a); err == nil || !strings.Contains(err.Error(), "hlevel") {
		t.Fatalf("err = %v, want hlevel mismatch", err)
	}
}
