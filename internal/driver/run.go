package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ontorefine/internal/diag"
	"ontorefine/internal/enumgen"
	"ontorefine/internal/observ"
	"ontorefine/internal/ontology"
	"ontorefine/internal/refine"
	"ontorefine/internal/source"
	"ontorefine/internal/trace"
)

// Result is the outcome of a completed run.
type Result struct {
	RunID     string
	MainPath  string
	Files     []string
	Container *ontology.Container
	Stats     refine.Stats
	Bag       *diag.Bag
	Timings   observ.Report
}

// Run prepares and executes a run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	plan, err := Prepare(opts)
	if err != nil {
		return nil, err
	}
	return plan.Execute(ctx)
}

// Execute decodes every input file, creates the output directories,
// refines the documents in order and writes the main document once at the
// end. A decode failure leaves the file system untouched. Documents are
// decoded in parallel; refinement itself is sequential because all files
// share one output tree and one code registry.
func (p *Plan) Execute(ctx context.Context) (*Result, error) {
	opts := p.Options
	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "run", 0)
	defer runSpan.End("")

	timer := observ.NewTimer()
	res := &Result{
		RunID: uuid.NewString(),
		Files: p.Files,
		Bag:   diag.NewBag(opts.MaxDiagnostics),
	}

	for _, f := range p.Files {
		notify(opts.Progress, Event{File: f, Stage: StageDecode, Status: StatusQueued})
	}

	idx := timer.Begin("decode")
	docs, err := decodeAll(ctx, p.Files, opts.Jobs, opts.Progress)
	timer.End(idx, fmt.Sprintf("%d files", len(p.Files)))
	if err != nil {
		return nil, err
	}

	// каталоги создаются только после успешного разбора всех файлов
	for _, dir := range []string{opts.RefineDir, opts.EnumDir} {
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(dir)), 0o755); err != nil {
			return nil, err
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			if os.IsExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrOutputExists, dir)
			}
			return nil, err
		}
	}

	refiner, err := refine.New(refine.Options{
		Config:   p.Config,
		Hook:     p.Hook,
		Sink:     enumgen.DirSink{Dir: opts.EnumDir, Format: opts.Format},
		Reporter: diag.BagReporter{Bag: res.Bag},
		RunID:    res.RunID,
	})
	if err != nil {
		return nil, err
	}

	idx = timer.Begin("refine")
	for i, doc := range docs {
		start := time.Now()
		notify(opts.Progress, Event{File: p.Files[i], Stage: StageRefine, Status: StatusWorking})
		if err := refiner.Refine(ctx, doc); err != nil {
			notify(opts.Progress, Event{File: p.Files[i], Stage: StageRefine, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			timer.End(idx, "failed")
			return nil, err
		}
		notify(opts.Progress, Event{File: p.Files[i], Stage: StageRefine, Status: StatusDone, Elapsed: time.Since(start)})
	}
	res.Stats = refiner.Stats()
	timer.End(idx, fmt.Sprintf("%d artifacts", res.Stats.Artifacts))

	idx = timer.Begin("write")
	notify(opts.Progress, Event{Stage: StageWrite, Status: StatusWorking})
	res.MainPath = filepath.Join(opts.RefineDir, opts.Name)
	if err := writeDocument(res.MainPath, refiner.Container(), opts.Format); err != nil {
		notify(opts.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return nil, err
	}
	notify(opts.Progress, Event{Stage: StageWrite, Status: StatusDone})
	timer.End(idx, res.MainPath)

	res.Container = refiner.Container()
	res.Timings = timer.Report()
	runSpan.WithExtra("files", fmt.Sprint(len(p.Files))).
		WithExtra("artifacts", fmt.Sprint(res.Stats.Artifacts))
	return res, nil
}

// decodeAll reads every file in parallel. Results keep input order.
func decodeAll(ctx context.Context, files []string, jobs int, progress ProgressSink) ([]*source.Document, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	docs := make([]*source.Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			notify(progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
			doc, err := source.DecodeFile(path)
			if err != nil {
				notify(progress, Event{File: path, Stage: StageDecode, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			// индекс i уникален для горутины, мьютекс не нужен
			docs[i] = doc
			notify(progress, Event{File: path, Stage: StageDecode, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func writeDocument(path string, c *ontology.Container, format ontology.Format) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := ontology.Encode(f, c, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
