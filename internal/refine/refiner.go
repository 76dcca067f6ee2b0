// Package refine walks a stage-one metadata tree and folds it into the
// output ontology tree, delegating generated enumerations to enumgen.
package refine

import (
	"context"
	"fmt"

	"ontorefine/internal/codes"
	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/enumgen"
	"ontorefine/internal/filter"
	"ontorefine/internal/ontology"
	"ontorefine/internal/sibling"
	"ontorefine/internal/source"
	"ontorefine/internal/trace"
)

// Options configure a Refiner. Config and Sink are required.
type Options struct {
	Config   *config.Config
	Hook     filter.Excluder
	Sink     enumgen.Sink
	Reporter diag.Reporter
	// RunID is stamped on the container and every artifact.
	RunID string
}

// Stats counts what a Refiner has done so far.
type Stats struct {
	Files        int
	Excluded     int
	InfoOnly     int
	Groups       int
	Continuous   int
	Artifacts    int
	IssuedCodes  int
	OntologySize ontology.Stats
}

// Refiner owns the state shared by every file of one run: the output tree
// and the code registry. It is not safe for concurrent use; files are
// refined one after another.
type Refiner struct {
	cfg        *config.Config
	filter     *filter.Filter
	codes      *codes.Registry
	classifier *sibling.Classifier
	emitter    *enumgen.Emitter
	reporter   diag.Reporter
	container  *ontology.Container
	stats      Stats
}

// New creates a Refiner with an empty output tree.
func New(opts Options) (*Refiner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("refine: nil config")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("refine: nil artifact sink")
	}
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	cfg := opts.Config
	return &Refiner{
		cfg:        cfg,
		filter:     filter.New(cfg, opts.Hook),
		codes:      codes.New(cfg.CodePrefix, r),
		classifier: sibling.New(cfg),
		emitter:    enumgen.New(opts.Sink, r, cfg.PathOmit),
		reporter:   r,
		container:  ontology.NewContainer(cfg.OntologyRoot, opts.RunID),
	}, nil
}

// Container returns the output tree built so far.
func (r *Refiner) Container() *ontology.Container { return r.container }

// Codes exposes the registry, mainly for inspection in tests and reports.
func (r *Refiner) Codes() *codes.Registry { return r.codes }

// Stats returns the counters, with tree size computed on demand.
func (r *Refiner) Stats() Stats {
	s := r.stats
	s.Artifacts = r.emitter.Emitted()
	s.IssuedCodes = r.codes.Len()
	s.OntologySize = r.container.Stats()
	return s
}

// Refine folds one document into the output tree.
func (r *Refiner) Refine(ctx context.Context, doc *source.Document) (err error) {
	content := doc.Content()
	if content == nil {
		return fmt.Errorf("%s: %w", doc.Name, source.ErrNoContent)
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "refine:"+doc.Name, 0)
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		span.End(detail)
	}()

	r.stats.Files++
	switch content.Kind {
	case source.KindEntity:
		return r.entity(ctx, content, doc.Name)
	default:
		return r.stage(ctx, content, doc.Name)
	}
}

// included runs the filter and records why a node was dropped.
func (r *Refiner) included(ctx context.Context, n *source.Node) (bool, error) {
	reason, err := r.filter.Check(n)
	if err != nil {
		return false, err
	}
	if reason == filter.Kept {
		return true, nil
	}
	r.stats.Excluded++
	path := n.PathString()
	trace.Point(trace.FromContext(ctx), trace.ScopeNode, "excluded:"+n.Name, reason.String())
	switch reason {
	case filter.ByHook:
		diag.ReportWarning(r.reporter, diag.FltExcludedHook, path,
			fmt.Sprintf("%s excluded by user procedure: %s", n.Kind, n.Name)).Emit()
	case filter.ByWholeQuestionnaire:
		// reported once, at the top of the questionnaire
		if n.Kind == source.KindEntity || n.Kind == source.KindStage {
			diag.ReportInfo(r.reporter, diag.FltWholeExcluded, path, "questionnaire excluded by filter").Emit()
		}
	}
	return false, nil
}

func (r *Refiner) entity(ctx context.Context, entity *source.Node, name string) error {
	if ok, err := r.included(ctx, entity); !ok || err != nil {
		return err
	}
	folder := r.container.AddFolder(name, "")
	return r.variables(ctx, entity.Variables(), folder)
}

func (r *Refiner) stage(ctx context.Context, stage *source.Node, name string) error {
	if ok, err := r.included(ctx, stage); !ok || err != nil {
		return err
	}
	folder := r.container.AddFolder(name, "")
	for _, s := range stage.Sections() {
		if err := r.section(ctx, s, folder); err != nil {
			return err
		}
	}
	return r.variables(ctx, stage.Variables(), folder)
}

func (r *Refiner) section(ctx context.Context, section *source.Node, parent *ontology.Folder) error {
	if ok, err := r.included(ctx, section); !ok || err != nil {
		return err
	}
	folder := parent.AddFolder(section.Name, "")
	for _, q := range section.Questions() {
		if err := r.question(ctx, q, folder); err != nil {
			return err
		}
	}
	return nil
}

func (r *Refiner) question(ctx context.Context, q *source.Node, parent *ontology.Folder) error {
	if ok, err := r.included(ctx, q); !ok || err != nil {
		return err
	}
	if InformationOnly(q) {
		r.stats.InfoOnly++
		diag.ReportInfo(r.reporter, diag.FltInfoOnly, q.PathString(),
			fmt.Sprintf("information only question omitted: %s (%s)", q.Name, q.Label)).Emit()
		return nil
	}

	folder := parent.AddFolder(q.Name, q.Label)
	if nested := q.Questions(); len(nested) > 0 {
		for _, child := range nested {
			if err := r.question(ctx, child, folder); err != nil {
				return err
			}
		}
		return nil
	}
	vars := q.Variables()
	if len(vars) > 1 {
		return r.variables(ctx, vars, folder)
	}
	return r.variable(ctx, vars[0], folder, Collapsible(q), &groupFrame{})
}

// InformationOnly reports whether q carries nothing to record: no nested
// questions and either no variables or a single same-named variable that is
// itself a bare leaf.
func InformationOnly(q *source.Node) bool {
	if len(q.Questions()) > 0 {
		return false
	}
	vars := q.Variables()
	switch len(vars) {
	case 0:
		return true
	case 1:
		return vars[0].Name == q.Name && vars[0].IsLeaf()
	}
	return false
}

// Collapsible reports whether q and its only variable share a name and so
// form a single output folder.
func Collapsible(q *source.Node) bool {
	vars := q.Variables()
	return len(vars) == 1 && vars[0].Name == q.Name
}

// describe forms a leaf description from the folder description and the
// variable label.
func describe(folder *ontology.Folder, label string) string {
	if label == "" {
		return ""
	}
	if folder.Description == "" {
		return label
	}
	return folder.Description + ":" + label
}

func outputType(v *source.Node) (ontology.Type, error) {
	t, err := source.ParseType(v.Type)
	if err != nil {
		return "", fmt.Errorf("%s: %w", v.PathString(), err)
	}
	return ontology.TypeOf(t), nil
}
