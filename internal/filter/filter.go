// Package filter decides which stage-one nodes reach the output tree.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"ontorefine/internal/config"
	"ontorefine/internal/source"
)

// ErrHookFailed wraps failures of an Excluder.
var ErrHookFailed = errors.New("exclusion hook failed")

// Excluder is a pluggable exclusion predicate consulted before the
// configured path table.
type Excluder interface {
	Excluded(n *source.Node) (bool, error)
}

// ExcluderFunc adapts a plain function to Excluder.
type ExcluderFunc func(n *source.Node) (bool, error)

// Excluded calls f(n).
func (f ExcluderFunc) Excluded(n *source.Node) (bool, error) { return f(n) }

// Reason says why a node was dropped.
type Reason uint8

const (
	Kept Reason = iota
	ByHook
	ByWholeQuestionnaire
	ByPath
)

func (r Reason) String() string {
	switch r {
	case ByHook:
		return "hook"
	case ByWholeQuestionnaire:
		return "questionnaire"
	case ByPath:
		return "path"
	}
	return "kept"
}

// Filter combines the optional hook with the per-questionnaire table. It
// holds no mutable state, so repeated calls give the same answer.
type Filter struct {
	cfg  *config.Config
	hook Excluder
}

// New builds a filter. hook may be nil.
func New(cfg *config.Config, hook Excluder) *Filter {
	return &Filter{cfg: cfg, hook: hook}
}

// Included reports whether n and its subtree are to be emitted.
func (f *Filter) Included(n *source.Node) (bool, error) {
	reason, err := f.Check(n)
	return reason == Kept, err
}

// Check is Included with the reason for exclusion.
func (f *Filter) Check(n *source.Node) (Reason, error) {
	if f.hook != nil {
		excluded, err := f.hook.Excluded(n)
		if err != nil {
			return Kept, fmt.Errorf("%w: %s: %w", ErrHookFailed, n.PathString(), err)
		}
		if excluded {
			return ByHook, nil
		}
	}
	return f.checkPath(n.Path()), nil
}

func (f *Filter) checkPath(path []string) Reason {
	if len(path) == 0 {
		return Kept
	}
	rule, ok := f.cfg.FilterFor(path[0])
	if !ok {
		return Kept
	}
	if len(rule.Exclude) == 0 {
		return ByWholeQuestionnaire
	}
	current := strings.Join(path, "/")
	if excludedUnder(current, rule.Questionnaire, rule.Exclude) {
		return ByPath
	}
	if rule.AlternateName != "" && excludedUnder(current, rule.AlternateName, rule.Exclude) {
		return ByPath
	}
	return Kept
}

// excludedUnder matches current exactly against questionnaire/name or,
// when hints are given, questionnaire/name/hint.
func excludedUnder(current, questionnaire string, excludes []config.Exclude) bool {
	for _, ex := range excludes {
		base := questionnaire + "/" + ex.Name
		if len(ex.Hints) == 0 {
			if current == base {
				return true
			}
			continue
		}
		for _, h := range ex.Hints {
			if current == base+"/"+h {
				return true
			}
		}
	}
	return false
}
