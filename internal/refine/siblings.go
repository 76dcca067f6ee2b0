package refine

import (
	"context"
	"fmt"

	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/ontology"
	"ontorefine/internal/sibling"
	"ontorefine/internal/source"
	"ontorefine/internal/trace"
)

// discriminate classifies the group v belongs to and emits it.
func (r *Refiner) discriminate(ctx context.Context, v *source.Node, folder *ontology.Folder) error {
	g, err := r.collect(v)
	if err != nil {
		return err
	}
	r.stats.Groups++
	d := r.classifier.Classify(g)

	detail := d.Kind.String()
	if d.Kind == sibling.Generated {
		detail += ":" + d.Spec.Name
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeNode, "siblings:"+g.Parent.Name, detail)

	if d.Kind == sibling.Standard {
		for _, m := range g.Members {
			// тип проверяется так же, как у одиночной переменной
			if _, err := outputType(m); err != nil {
				return err
			}
			folder.AddVariable(m.Name, m.Label, ontology.TypeGeneratedEnumeration, r.codes.Ordinary(m.Parent, m.Name))
		}
		return nil
	}

	// An open question heads an enumeration whether or not one of the
	// configured specs covers it.
	folder.Code = r.codes.Root(g.Parent.Parent, g.Parent.Name)

	if d.Kind == sibling.Generated {
		return r.generated(ctx, g, d.Spec, folder)
	}
	r.stats.Continuous++
	diag.ReportInfo(r.reporter, diag.GenNoSpecMatch, g.Parent.PathString(),
		fmt.Sprintf("open question %s emitted as continuous", g.Parent.Name)).
		WithValue(folder.Code).
		Emit()
	return r.continuous(g, folder)
}

// collect gathers v's group without the members the filter drops. Those
// members are reported when the variable loop reaches them.
func (r *Refiner) collect(v *source.Node) (sibling.Group, error) {
	g := r.classifier.Collect(v)
	kept := g.Members[:0]
	for _, m := range g.Members {
		ok, err := r.filter.Included(m)
		if err != nil {
			return sibling.Group{}, err
		}
		if ok {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	return g, nil
}

func (r *Refiner) generated(ctx context.Context, g sibling.Group, spec config.Enumeration, folder *ontology.Folder) error {
	for _, m := range g.Members {
		if r.classifier.IsOpenBoolean(m) {
			continue
		}
		if _, err := outputType(m); err != nil {
			return err
		}
		folder.AddVariable(m.Name, m.Label, ontology.TypeGeneratedEnumeration, r.codes.Root(m.Parent, m.Name))
	}
	var err error
	if spec.IsRecentTime() {
		_, err = r.emitter.RecentTime(ctx, folder)
	} else {
		_, err = r.emitter.Range(ctx, folder, spec)
	}
	return err
}

func (r *Refiner) continuous(g sibling.Group, folder *ontology.Folder) error {
	for _, m := range g.Members {
		if r.classifier.IsOpenBoolean(m) {
			continue
		}
		typ, err := outputType(m)
		if err != nil {
			return err
		}
		folder.AddVariable(m.Name, m.Label, typ, r.codes.Ordinary(m.Parent, m.Name))
	}
	return nil
}
