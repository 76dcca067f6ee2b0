package filter

import (
	"fmt"
	"sort"
	"strings"

	"ontorefine/internal/source"
)

// SymptomsOnset names the built-in hook that drops the symptom-onset
// questions. Their date/time answers are used as observation start dates
// downstream, not as ontology concepts.
const SymptomsOnset = "symptoms-onset"

var symptomsOnsetMarkers = []string{
	"epi_symponset_cat",
	"epi_symponset_table",
	"epi_symponset_time_cat",
}

var hooks = map[string]Excluder{
	SymptomsOnset: ExcluderFunc(symptomsOnset),
}

func symptomsOnset(n *source.Node) (bool, error) {
	if n.Kind != source.KindQuestion {
		return false, nil
	}
	for _, m := range symptomsOnsetMarkers {
		if strings.Contains(n.Name, m) {
			return true, nil
		}
	}
	return false, nil
}

// Hook returns the built-in hook registered under name. An empty name
// yields a nil hook.
func Hook(name string) (Excluder, error) {
	if name == "" {
		return nil, nil
	}
	h, ok := hooks[name]
	if !ok {
		return nil, fmt.Errorf("unknown exclusion hook %q (known: %s)", name, strings.Join(HookNames(), ", "))
	}
	return h, nil
}

// HookNames lists the built-in hooks.
func HookNames() []string {
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
