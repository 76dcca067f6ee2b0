package refine

import (
	"context"
	"strings"

	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/ontology"
	"ontorefine/internal/sibling"
	"ontorefine/internal/source"
)

const vitalStatus = "vital_status"

// groupFrame scopes sibling classification to one list of variables under
// a common parent: the first member to reach classification resolves the
// whole group, later members find it resolved.
type groupFrame struct {
	resolved bool
}

// variables processes a list of variables sharing a parent.
func (r *Refiner) variables(ctx context.Context, vars []*source.Node, folder *ontology.Folder) error {
	frame := &groupFrame{}
	for _, v := range vars {
		if err := r.variable(ctx, v, folder, false, frame); err != nil {
			return err
		}
	}
	return nil
}

// variable handles the container forms (nested variables, restrictions)
// and hands bare leaves on. A collapsible variable reuses folder instead
// of opening its own.
func (r *Refiner) variable(ctx context.Context, v *source.Node, folder *ontology.Folder, collapsible bool, frame *groupFrame) error {
	if ok, err := r.included(ctx, v); !ok || err != nil {
		return err
	}
	if nested := v.Variables(); len(nested) > 0 {
		f := folder
		if !collapsible {
			f = folder.AddFolder(v.Name, v.Label)
		}
		return r.variables(ctx, nested, f)
	}
	if restrictions := v.Restrictions(); len(restrictions) > 0 {
		f := folder
		if !collapsible {
			f = folder.AddFolder(v.Name, v.Label)
		}
		for _, rs := range restrictions {
			for _, choice := range rs.Enums {
				f.AddVariable(choice, "", ontology.TypeBoolean, r.codes.Ordinary(v, choice))
			}
		}
		return nil
	}
	return r.leaf(ctx, v, folder, frame)
}

func (r *Refiner) leaf(ctx context.Context, v *source.Node, folder *ontology.Folder, frame *groupFrame) error {
	switch {
	case v.Within(source.KindEntity):
		return r.entityLeaf(ctx, v, folder)
	case v.Within(source.KindQuestion) && v.HasSiblingVariables():
		return r.siblingLeaf(ctx, v, folder, frame)
	}
	return r.plainLeaf(v, folder)
}

func (r *Refiner) plainLeaf(v *source.Node, folder *ontology.Folder) error {
	typ, err := outputType(v)
	if err != nil {
		return err
	}
	folder.AddVariable(v.Name, describe(folder, v.Label), typ, r.codes.Ordinary(v.Parent, v.Name))
	return nil
}

// entityLeaf gives the age, ethnicity and vital status variables of an
// entity their own folder and generated enumeration.
func (r *Refiner) entityLeaf(ctx context.Context, v *source.Node, folder *ontology.Folder) error {
	if spec, ok := r.ageSpec(v); ok {
		f := folder.AddFolder(v.Name, "Participant Age")
		f.Code = r.codes.Ordinary(v.Parent, v.Name)
		_, err := r.emitter.Range(ctx, f, spec)
		return err
	}
	if eth := r.cfg.Ethnicity; eth.Variable != "" && v.Name == eth.Variable {
		f := folder.AddFolder(v.Name, "Ethnic group")
		f.Code = r.codes.Ordinary(v.Parent, v.Name)
		_, err := r.emitter.Ethnicity(ctx, f, eth.Codes)
		return err
	}
	if strings.EqualFold(v.Name, vitalStatus) {
		f := folder.AddFolder(vitalStatus, "Vital status")
		f.Code = r.codes.Ordinary(v.Parent, vitalStatus)
		_, err := r.emitter.VitalStatus(ctx, f)
		return err
	}
	return r.plainLeaf(v, folder)
}

// ageSpec reports whether v is an age variable: the first AGE hint
// contained in its name decides, unless the name is listed verbatim among
// the excludes.
func (r *Refiner) ageSpec(v *source.Node) (config.Enumeration, bool) {
	spec, ok := r.cfg.Enumeration(config.AgeSpec)
	if !ok {
		return config.Enumeration{}, false
	}
	for _, hint := range spec.Hints {
		if !strings.Contains(v.Name, hint) {
			continue
		}
		for _, ex := range spec.Excludes {
			if v.Name == ex {
				return config.Enumeration{}, false
			}
		}
		if !spec.HasRange() {
			diag.ReportWarning(r.reporter, diag.GenNoAgeSpec, v.PathString(),
				"AGE enumeration has no range; age variable emitted as a plain leaf").Emit()
			return config.Enumeration{}, false
		}
		return spec, true
	}
	return config.Enumeration{}, false
}

// siblingLeaf handles a question variable that shares its parent with
// other variables.
func (r *Refiner) siblingLeaf(ctx context.Context, v *source.Node, folder *ontology.Folder, frame *groupFrame) error {
	switch {
	case r.classifier.IsStandardBoolean(v):
		folder.AddVariable(v.Name, describe(folder, v.Label), ontology.TypeBoolean, r.codes.Ordinary(v.Parent, v.Name))
		return nil
	case sibling.IsComment(v):
		return nil
	case frame.resolved:
		return nil
	}
	frame.resolved = true
	return r.discriminate(ctx, v, folder)
}
