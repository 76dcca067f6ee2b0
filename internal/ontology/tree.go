package ontology

import (
	"encoding/xml"
	"strings"

	"fortio.org/safecast"
)

// Container is the root of the output tree. It outlives every input file of
// a run and is written once at the end.
type Container struct {
	XMLName xml.Name  `xml:"container" json:"-" msgpack:"-"`
	Name    string    `xml:"name,attr" json:"name" msgpack:"name"`
	RunID   string    `xml:"run,attr,omitempty" json:"run,omitempty" msgpack:"run,omitempty"`
	Folders []*Folder `xml:"folder" json:"folders,omitempty" msgpack:"folders,omitempty"`
}

// Folder is an inner node of the output tree. Code stays empty unless the
// folder heads a generated enumeration or carries its own coded concept.
type Folder struct {
	Name        string      `xml:"name" json:"name" msgpack:"name"`
	Description string      `xml:"description,omitempty" json:"description,omitempty" msgpack:"description,omitempty"`
	Code        string      `xml:"code,omitempty" json:"code,omitempty" msgpack:"code,omitempty"`
	Folders     []*Folder   `xml:"folder" json:"folders,omitempty" msgpack:"folders,omitempty"`
	Variables   []*Variable `xml:"variable" json:"variables,omitempty" msgpack:"variables,omitempty"`

	// lookup edges only; never encoded
	parent    *Folder
	container *Container
}

// NewContainer creates an empty output tree.
func NewContainer(name, runID string) *Container {
	return &Container{Name: name, RunID: runID}
}

// AddFolder appends a top-level folder.
func (c *Container) AddFolder(name, description string) *Folder {
	f := &Folder{Name: name, Description: description, container: c}
	c.Folders = append(c.Folders, f)
	return f
}

// AddFolder appends a child folder.
func (f *Folder) AddFolder(name, description string) *Folder {
	child := &Folder{Name: name, Description: description, parent: f, container: f.container}
	f.Folders = append(f.Folders, child)
	return child
}

// AddVariable appends a leaf.
func (f *Folder) AddVariable(name, description string, typ Type, code string) *Variable {
	v := &Variable{Name: name, Description: description, Type: typ, Code: code}
	f.Variables = append(f.Variables, v)
	return v
}

// Parent returns the enclosing folder, nil for top-level folders.
func (f *Folder) Parent() *Folder { return f.parent }

// Container returns the tree root f belongs to.
func (f *Folder) Container() *Container { return f.container }

// Lineage returns folder names from the top level down to f.
func (f *Folder) Lineage() []string {
	var rev []string
	for p := f; p != nil; p = p.parent {
		rev = append(rev, p.Name)
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}

// Path renders f's position as a backslash path led by the container name.
// Folder names listed in omit (case-insensitive) are structural only and
// are left out.
func (f *Folder) Path(omit []string) string {
	var b strings.Builder
	if f.container != nil {
		b.WriteByte('\\')
		b.WriteString(f.container.Name)
	}
	for _, name := range f.Lineage() {
		if omitted(name, omit) {
			continue
		}
		b.WriteByte('\\')
		b.WriteString(name)
	}
	return b.String()
}

// HLevel is the hierarchy level of a path: the number of components
// below the container.
func HLevel(path string) int {
	parts := strings.Split(path, "\\")
	// leading separator yields an empty first element
	return max(len(parts)-2, 0)
}

func omitted(name string, omit []string) bool {
	for _, o := range omit {
		if strings.EqualFold(name, o) {
			return true
		}
	}
	return false
}

// Stats summarises the size of a tree.
type Stats struct {
	Folders   int
	Variables int
	Codes     int
}

// Stats walks the whole tree.
func (c *Container) Stats() Stats {
	var s Stats
	var walk func(fs []*Folder)
	walk = func(fs []*Folder) {
		for _, f := range fs {
			s.Folders++
			if f.Code != "" {
				s.Codes++
			}
			s.Variables += len(f.Variables)
			for _, v := range f.Variables {
				if v.Code != "" {
					s.Codes++
				}
			}
			walk(f.Folders)
		}
	}
	walk(c.Folders)
	return s
}

// Depth returns the deepest folder nesting as a uint16 for compact reports.
func (c *Container) Depth() uint16 {
	var deepest int
	var walk func(fs []*Folder, d int)
	walk = func(fs []*Folder, d int) {
		for _, f := range fs {
			deepest = max(deepest, d)
			walk(f.Folders, d+1)
		}
	}
	walk(c.Folders, 1)
	depth, err := safecast.Conv[uint16](deepest)
	if err != nil {
		return ^uint16(0)
	}
	return depth
}
