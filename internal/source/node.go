package source

import "strings"

// Kind discriminates the node variants of a stage-one metadata tree.
type Kind uint8

const (
	// KindSource is the document root; it never takes part in paths.
	KindSource Kind = iota + 1
	KindEntity
	KindStage
	KindSection
	KindQuestion
	KindVariable
	KindRestriction
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindEntity:
		return "entity"
	case KindStage:
		return "stage"
	case KindSection:
		return "section"
	case KindQuestion:
		return "question"
	case KindVariable:
		return "variable"
	case KindRestriction:
		return "restriction"
	}
	return "unknown"
}

// Node is one element of the stage-one tree. Which fields are meaningful
// depends on Kind:
//
//   - Label is set on questions and variables;
//   - Type is set on variables only;
//   - Enums is set on restrictions only.
//
// Parent is a lookup edge only; the tree is owned top-down through Children.
type Node struct {
	Kind     Kind
	Name     string
	Label    string
	Type     string
	Enums    []string
	Parent   *Node
	Children []*Node
}

func (n *Node) childrenOf(kind Kind) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Variables returns the direct variable children in document order.
func (n *Node) Variables() []*Node { return n.childrenOf(KindVariable) }

// Questions returns the direct question children in document order.
func (n *Node) Questions() []*Node { return n.childrenOf(KindQuestion) }

// Sections returns the direct section children in document order.
func (n *Node) Sections() []*Node { return n.childrenOf(KindSection) }

// Restrictions returns the direct restriction children in document order.
func (n *Node) Restrictions() []*Node { return n.childrenOf(KindRestriction) }

// IsLeaf reports whether a variable carries neither nested variables nor
// restrictions.
func (n *Node) IsLeaf() bool {
	for _, c := range n.Children {
		if c.Kind == KindVariable || c.Kind == KindRestriction {
			return false
		}
	}
	return true
}

// Ancestor returns the nearest proper ancestor whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// Within reports whether some proper ancestor has the given kind.
func (n *Node) Within(kind Kind) bool {
	return n.Ancestor(kind) != nil
}

// Path lists node names from the top-level entity or stage down to n.
// The document root is never part of the path.
func (n *Node) Path() []string {
	var rev []string
	for p := n; p != nil && p.Kind != KindSource; p = p.Parent {
		rev = append(rev, p.Name)
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}

// PathString joins Path with "/".
func (n *Node) PathString() string {
	return strings.Join(n.Path(), "/")
}

// Siblings returns every variable that shares n's parent, n included,
// in document order. Variables without a parent have no siblings.
func (n *Node) Siblings() []*Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	return n.Parent.Variables()
}

// HasSiblingVariables reports whether at least one other variable shares
// n's parent.
func (n *Node) HasSiblingVariables() bool {
	return len(n.Siblings()) > 1
}
