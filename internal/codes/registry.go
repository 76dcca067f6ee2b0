// Package codes issues the short placeholder ontology codes. Every code of a
// run goes through one Registry so that uniqueness holds across all input
// files, not just within one.
package codes

import (
	"fmt"
	"strings"
	"unicode"

	"ontorefine/internal/diag"
	"ontorefine/internal/source"
)

const (
	// LeafLimit bounds ordinary folder and leaf codes.
	LeafLimit = 50
	// RootLimit bounds enumeration root codes, which are later suffixed
	// per generated value.
	RootLimit = 40
)

// Strategy selects how a code is composed.
type Strategy uint8

const (
	// Ordinary codes are prefix + context name + "." + name.
	Ordinary Strategy = iota
	// Root codes are prefix + name and head a generated enumeration.
	Root
)

func (s Strategy) limit() int {
	if s == Root {
		return RootLimit
	}
	return LeafLimit
}

func (s Strategy) String() string {
	if s == Root {
		return "root"
	}
	return "ordinary"
}

// Registry holds every code issued during a run.
type Registry struct {
	prefix   string
	issued   map[string]struct{}
	reporter diag.Reporter
}

// New creates an empty registry. Clashes and over-long codes are reported
// to r; a nil r drops them.
func New(prefix string, r diag.Reporter) *Registry {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Registry{
		prefix:   prefix,
		issued:   make(map[string]struct{}),
		reporter: r,
	}
}

// Ordinary issues a code for name in the context of ctx (the node whose
// name qualifies it: the parent variable, question or entity).
func (r *Registry) Ordinary(ctx *source.Node, name string) string {
	return r.Assign(ctx, name, Ordinary)
}

// Root issues an enumeration root code for name. ctx only feeds the
// fallback qualifier.
func (r *Registry) Root(ctx *source.Node, name string) string {
	return r.Assign(ctx, name, Root)
}

// Assign composes, shortens and records a code. A code that still clashes
// or is still too long after every fallback is reported and issued anyway.
func (r *Registry) Assign(ctx *source.Node, name string, s Strategy) string {
	limit := s.limit()
	ctxName := ""
	if ctx != nil {
		ctxName = ctx.Name
	}

	code := r.compose("", ctxName, name, s)
	if len(code) > limit {
		code = Rationalize(code, limit)
	}

	if r.Has(code) {
		code = r.compose(HigherQualifier(ctx), ctxName, name, s)
		if len(code) > limit {
			code = Rationalize(code, limit)
		}
	}

	path := name
	if ctx != nil {
		path = ctx.PathString() + "/" + name
	}
	if r.Has(code) {
		diag.ReportError(r.reporter, diag.CodeClash, path, "code name clash").
			WithValue(code).
			WithNote(path, fmt.Sprintf("%s strategy, limit %d", s, limit)).
			Emit()
	}
	if len(code) > limit {
		errCode := diag.CodeTooLong
		if s == Root {
			errCode = diag.CodeRootTooLong
		}
		diag.ReportError(r.reporter, errCode, path,
			fmt.Sprintf("code exceeds %d characters (%d)", limit, len(code))).
			WithValue(code).
			Emit()
	}

	r.issued[code] = struct{}{}
	return code
}

// compose builds prefix[ + hq + "."][ + ctx + "."] + name.
func (r *Registry) compose(hq, ctxName, name string, s Strategy) string {
	var b strings.Builder
	b.WriteString(r.prefix)
	if hq != "" {
		b.WriteString(hq)
		b.WriteByte('.')
	}
	if s == Ordinary {
		b.WriteString(ctxName)
		b.WriteByte('.')
	}
	b.WriteString(name)
	return b.String()
}

// Has reports whether code was already issued.
func (r *Registry) Has(code string) bool {
	_, ok := r.issued[code]
	return ok
}

// Len returns the number of distinct codes issued.
func (r *Registry) Len() int { return len(r.issued) }

// Rationalize shortens code deterministically: vowels are stripped from
// every dot-separated segment but the last two; if the result is still
// longer than limit, from all segments. The result may remain over limit.
func Rationalize(code string, limit int) string {
	parts := strings.Split(code, ".")
	keep := len(parts) - 2
	short := make([]string, len(parts))
	for i, p := range parts {
		if i < keep {
			short[i] = stripVowels(p)
		} else {
			short[i] = p
		}
	}
	out := strings.Join(short, ".")
	if len(out) <= limit {
		return out
	}
	for i, p := range parts {
		short[i] = stripVowels(p)
	}
	return strings.Join(short, ".")
}

func stripVowels(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return -1
		}
		return r
	}, s)
}

// HigherQualifier derives a short qualifier from the stage or entity that
// encloses n (n included): its upper-case letters, or its first letter
// upper-cased when it has none.
func HigherQualifier(n *source.Node) string {
	owner := n
	if owner != nil && owner.Kind != source.KindStage && owner.Kind != source.KindEntity {
		owner = owner.Ancestor(source.KindStage, source.KindEntity)
	}
	if owner == nil || owner.Name == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range owner.Name {
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		for _, r := range owner.Name {
			return string(unicode.ToUpper(r))
		}
	}
	return b.String()
}
