// Package testkit holds structural checks shared by the package tests.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"ontorefine/internal/ontology"
)

// CheckTree runs the structural invariants of an output tree:
// 1) lookup edges agree with the encoded nesting
// 2) every variable has a name, a known type and a code
// 3) codes are unique across folders and variables
func CheckTree(c *ontology.Container) error {
	if c == nil {
		return fmt.Errorf("nil container")
	}
	seen := make(map[string]string)
	claim := func(code, where string) error {
		if code == "" {
			return nil
		}
		if prev, dup := seen[code]; dup {
			return fmt.Errorf("code %q used by %s and %s", code, prev, where)
		}
		seen[code] = where
		return nil
	}

	var walk func(parent *ontology.Folder, fs []*ontology.Folder, depth int) error
	walk = func(parent *ontology.Folder, fs []*ontology.Folder, depth int) error {
		if _, err := safecast.Conv[uint16](depth); err != nil {
			return fmt.Errorf("tree too deep: %w", err)
		}
		for _, f := range fs {
			where := strings.Join(f.Lineage(), "/")
			if f.Parent() != parent {
				return fmt.Errorf("folder %s: parent link mismatch", where)
			}
			if f.Container() != c {
				return fmt.Errorf("folder %s: container link mismatch", where)
			}
			if f.Name == "" {
				return fmt.Errorf("unnamed folder under %s", where)
			}
			if err := claim(f.Code, where); err != nil {
				return err
			}
			for _, v := range f.Variables {
				vwhere := where + "/" + v.Name
				switch {
				case v.Name == "":
					return fmt.Errorf("unnamed variable in %s", where)
				case v.Code == "":
					return fmt.Errorf("variable %s has no code", vwhere)
				case v.Type == "":
					return fmt.Errorf("variable %s has no type", vwhere)
				}
				if err := claim(v.Code, vwhere); err != nil {
					return err
				}
			}
			if err := walk(f, f.Folders, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nil, c.Folders, 1)
}

// CheckArtifact verifies that an enumeration artifact is self-consistent:
// the hierarchy level matches its path and every leaf code extends the
// artifact code and is unique.
func CheckArtifact(a *ontology.Artifact) error {
	if a == nil {
		return fmt.Errorf("nil artifact")
	}
	if !strings.HasPrefix(a.Path, "\\") {
		return fmt.Errorf("artifact %s: path %q lacks the leading separator", a.Name, a.Path)
	}
	if want := ontology.HLevel(a.Path); a.HLevel != want {
		return fmt.Errorf("artifact %s: hlevel %d, path implies %d", a.Name, a.HLevel, want)
	}
	leaves := a.Leaves()
	if len(leaves) == 0 {
		return fmt.Errorf("artifact %s has no leaves", a.Name)
	}
	seen := make(map[string]struct{}, len(leaves))
	for _, l := range leaves {
		if !strings.HasPrefix(l.Code, a.Code) {
			return fmt.Errorf("artifact %s: leaf %q code %q does not extend %q", a.Name, l.Name, l.Code, a.Code)
		}
		if _, dup := seen[l.Code]; dup {
			return fmt.Errorf("artifact %s: duplicate leaf code %q", a.Name, l.Code)
		}
		seen[l.Code] = struct{}{}
	}
	return nil
}
