// Package sibling classifies groups of variables that share a parent.
//
// A group is examined once, when the first of its members is met during
// the descent. The outcome decides whether the members become a standard
// enumeration, a generated enumeration or plain continuous leaves.
package sibling

import (
	"strings"

	"ontorefine/internal/config"
	"ontorefine/internal/source"
)

// Comment is the name of the free-text comment variable that accompanies
// many questions; it never takes part in classification.
const Comment = "comment"

// Kind is the outcome of classifying a group.
type Kind uint8

const (
	// Standard groups are enumerations authored in the questionnaire.
	Standard Kind = iota
	// Generated groups switch on an open question whose value is covered
	// by a configured enumeration.
	Generated
	// Continuous groups hold an open question no enumeration covers.
	Continuous
)

func (k Kind) String() string {
	switch k {
	case Generated:
		return "generated"
	case Continuous:
		return "continuous"
	}
	return "standard"
}

// Group is the set of variables under one parent, minus standard booleans
// and the comment.
type Group struct {
	Parent  *source.Node
	Members []*source.Node
}

// Decision is the classification result. Spec is set for Generated only.
type Decision struct {
	Kind Kind
	Spec config.Enumeration
}

// Classifier holds the configuration the classification depends on.
type Classifier struct {
	cfg *config.Config
}

// New creates a classifier.
func New(cfg *config.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// IsStandardBoolean reports whether n is named after a standard boolean
// answer (Y, N, PNA, DK...).
func (c *Classifier) IsStandardBoolean(n *source.Node) bool {
	return c.cfg.IsStandardBoolean(n.Name)
}

// IsComment reports whether n is the comment variable.
func IsComment(n *source.Node) bool {
	return n.Name == Comment
}

// Collect gathers the group v belongs to, in document order.
func (c *Classifier) Collect(v *source.Node) Group {
	g := Group{Parent: v.Parent}
	for _, s := range v.Siblings() {
		if c.IsStandardBoolean(s) || IsComment(s) {
			continue
		}
		g.Members = append(g.Members, s)
	}
	return g
}

// ContainsOpenQuestion reports whether g holds a continuous-typed variable
// together with a boolean that is not a standard answer: the boolean opens
// the question and the continuous variable carries its value.
func (c *Classifier) ContainsOpenQuestion(g Group) bool {
	continuous, openBoolean := false, false
	for _, m := range g.Members {
		if t, err := source.ParseType(m.Type); err == nil && t.Continuous() {
			continuous = true
			continue
		}
		if isBoolean(m) && !c.IsStandardBoolean(m) {
			openBoolean = true
		}
	}
	return continuous && openBoolean
}

// IsOpenBoolean reports whether m is the boolean that opens a question.
// Such members are dropped when a group is emitted as generated or
// continuous leaves.
func (c *Classifier) IsOpenBoolean(m *source.Node) bool {
	return isBoolean(m) && !c.IsStandardBoolean(m)
}

func isBoolean(n *source.Node) bool {
	return strings.EqualFold(n.Type, string(source.TypeBoolean))
}

// Classify decides how g is emitted.
func (c *Classifier) Classify(g Group) Decision {
	if !c.ContainsOpenQuestion(g) {
		return Decision{Kind: Standard}
	}
	if spec, ok := c.Match(g); ok {
		return Decision{Kind: Generated, Spec: spec}
	}
	return Decision{Kind: Continuous}
}

// Match returns the first configured enumeration that covers g and has a
// generator: either the time-bucket marker or a numeric range. Specs
// without a generator are passed over.
func (c *Classifier) Match(g Group) (config.Enumeration, bool) {
	for _, spec := range c.cfg.Enumerations {
		if !Matches(spec, g.Members) {
			continue
		}
		if spec.IsRecentTime() || spec.HasRange() {
			return spec, true
		}
	}
	return config.Enumeration{}, false
}

// Matches reports whether any member's type or name contains one of the
// spec's hints while no member's type or name contains one of its
// excludes. Matching is case-sensitive.
func Matches(spec config.Enumeration, members []*source.Node) bool {
	hit := false
	for _, m := range members {
		if containsAny(m, spec.Hints) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, m := range members {
		if containsAny(m, spec.Excludes) {
			return false
		}
	}
	return true
}

func containsAny(m *source.Node, needles []string) bool {
	for _, s := range needles {
		if strings.Contains(m.Type, s) || strings.Contains(m.Name, s) {
			return true
		}
	}
	return false
}
