package ontology

import "encoding/xml"

// Artifact is one generated enumeration, persisted separately from the
// main tree. Name and Code are copied from the folder that heads it.
type Artifact struct {
	XMLName   xml.Name `xml:"enumeratedVariable" json:"-" msgpack:"-"`
	Name      string   `xml:"name" json:"name" msgpack:"name"`
	Code      string   `xml:"code" json:"code" msgpack:"code"`
	Type      Type     `xml:"type" json:"type" msgpack:"type"`
	Path      string   `xml:"path" json:"path" msgpack:"path"`
	HLevel    int      `xml:"hlevel" json:"hlevel" msgpack:"hlevel"`
	RunID     string   `xml:"run,attr,omitempty" json:"run,omitempty" msgpack:"run,omitempty"`
	Groups    []*Group `xml:"group" json:"groups,omitempty" msgpack:"groups,omitempty"`
	Variables []*Leaf  `xml:"variable" json:"variables,omitempty" msgpack:"variables,omitempty"`
}

// Group is a named bucket of leaves. Groups nest only in the time-bucket
// enumeration.
type Group struct {
	Name      string   `xml:"name" json:"name" msgpack:"name"`
	Groups    []*Group `xml:"group" json:"groups,omitempty" msgpack:"groups,omitempty"`
	Variables []*Leaf  `xml:"variable" json:"variables,omitempty" msgpack:"variables,omitempty"`
}

// Leaf is a single generated value.
type Leaf struct {
	Name        string `xml:"name" json:"name" msgpack:"name"`
	Description string `xml:"description,omitempty" json:"description,omitempty" msgpack:"description,omitempty"`
	Code        string `xml:"code" json:"code" msgpack:"code"`
}

// NewArtifact starts an artifact headed by f.
func NewArtifact(f *Folder, typ Type, omit []string) *Artifact {
	path := f.Path(omit)
	a := &Artifact{
		Name:   f.Name,
		Code:   f.Code,
		Type:   typ,
		Path:   path,
		HLevel: HLevel(path),
	}
	if c := f.Container(); c != nil {
		a.RunID = c.RunID
	}
	return a
}

// AddGroup appends a top-level group.
func (a *Artifact) AddGroup(name string) *Group {
	g := &Group{Name: name}
	a.Groups = append(a.Groups, g)
	return g
}

// AddLeaf appends a leaf directly under the artifact.
func (a *Artifact) AddLeaf(name, description, code string) *Leaf {
	l := &Leaf{Name: name, Description: description, Code: code}
	a.Variables = append(a.Variables, l)
	return l
}

// AddGroup appends a nested group.
func (g *Group) AddGroup(name string) *Group {
	child := &Group{Name: name}
	g.Groups = append(g.Groups, child)
	return child
}

// AddLeaf appends a leaf to g.
func (g *Group) AddLeaf(name, description, code string) *Leaf {
	l := &Leaf{Name: name, Description: description, Code: code}
	g.Variables = append(g.Variables, l)
	return l
}

// Leaves lists every leaf in document order: grouped leaves first, depth
// first, then the ungrouped ones.
func (a *Artifact) Leaves() []*Leaf {
	var out []*Leaf
	var walk func(gs []*Group)
	walk = func(gs []*Group) {
		for _, g := range gs {
			walk(g.Groups)
			out = append(out, g.Variables...)
		}
	}
	walk(a.Groups)
	return append(out, a.Variables...)
}
