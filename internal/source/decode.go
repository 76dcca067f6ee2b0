package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoContent is returned for documents holding neither an entity nor a stage.
var ErrNoContent = errors.New("source document contains neither entity nor stage")

// Document is one decoded stage-one metadata file.
type Document struct {
	// Name is the file base name up to the first dot; it names the
	// top-level output folder.
	Name string
	Path string
	Root *Node
}

// Content returns the entity or stage under the document root.
func (d *Document) Content() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	for _, c := range d.Root.Children {
		if c.Kind == KindEntity || c.Kind == KindStage {
			return c
		}
	}
	return nil
}

type xmlSource struct {
	XMLName xml.Name   `xml:"source"`
	Name    string     `xml:"name,attr"`
	Entity  *xmlEntity `xml:"entity"`
	Stage   *xmlStage  `xml:"stage"`
}

type xmlEntity struct {
	Name      string        `xml:"name,attr"`
	Variables []xmlVariable `xml:"variable"`
}

type xmlStage struct {
	Name      string        `xml:"name,attr"`
	Sections  []xmlSection  `xml:"section"`
	Variables []xmlVariable `xml:"variable"`
}

type xmlSection struct {
	Name      string        `xml:"name,attr"`
	Questions []xmlQuestion `xml:"question"`
}

type xmlQuestion struct {
	Name      string        `xml:"name,attr"`
	Label     string        `xml:"label,attr"`
	Questions []xmlQuestion `xml:"question"`
	Variables []xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Name         string           `xml:"name,attr"`
	Label        string           `xml:"label,attr"`
	Type         string           `xml:"type,attr"`
	Variables    []xmlVariable    `xml:"variable"`
	Restrictions []xmlRestriction `xml:"restriction"`
}

type xmlRestriction struct {
	Enums []string `xml:"enum"`
}

// DecodeFile reads and decodes one metadata file.
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, _ = removeBOM(data)
	doc, err := Decode(bytes.NewReader(data), DocumentName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Decode parses a stage-one XML document.
func Decode(r io.Reader, name string) (*Document, error) {
	var raw xmlSource
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("malformed metadata: %w", err)
	}
	var content *Node
	switch {
	case raw.Entity != nil:
		content = NewEntity(clean(raw.Entity.Name), variables(raw.Entity.Variables)...)
	case raw.Stage != nil:
		children := make([]*Node, 0, len(raw.Stage.Sections)+len(raw.Stage.Variables))
		for _, s := range raw.Stage.Sections {
			children = append(children, NewSection(clean(s.Name), questions(s.Questions)...))
		}
		children = append(children, variables(raw.Stage.Variables)...)
		content = NewStage(clean(raw.Stage.Name), children...)
	default:
		return nil, ErrNoContent
	}
	return &Document{Name: name, Root: NewSource(clean(raw.Name), content)}, nil
}

func questions(in []xmlQuestion) []*Node {
	out := make([]*Node, 0, len(in))
	for _, q := range in {
		children := append(questions(q.Questions), variables(q.Variables)...)
		out = append(out, NewQuestion(clean(q.Name), clean(q.Label), children...))
	}
	return out
}

func variables(in []xmlVariable) []*Node {
	out := make([]*Node, 0, len(in))
	for _, v := range in {
		children := variables(v.Variables)
		for _, r := range v.Restrictions {
			enums := make([]string, len(r.Enums))
			for i, e := range r.Enums {
				enums[i] = clean(e)
			}
			children = append(children, NewRestriction(enums...))
		}
		out = append(out, NewVariable(clean(v.Name), clean(v.Label), strings.TrimSpace(v.Type), children...))
	}
	return out
}
