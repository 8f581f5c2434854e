// Package buildpipeline builds every page of a manifest in parallel.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"demomark/internal/backend"
	"demomark/internal/backend/gogen"
	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/driver"
	"demomark/internal/project"
	"demomark/internal/trace"
)

// BuildRequest configures one build. Zero fields fall back to the manifest.
type BuildRequest struct {
	Manifest  *project.Manifest
	Pages     []project.Page // nil means Manifest.Pages()
	OutputDir string
	Backend   string
	DemoTag   string
	Jobs      int
	Cache     *driver.Cache // nil disables caching
	Progress  ProgressSink
	Reporter  diag.Reporter
}

// PageOutput is one written file.
type PageOutput struct {
	Page         project.Page
	OutputPath   string
	Instructions int
	Demos        int
	Cached       bool
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	OutputDir string
	Backend   string
	Pages     []PageOutput
	Timings   *Timings
}

// CacheHits counts pages served from the cache.
func (r *BuildResult) CacheHits() int {
	n := 0
	for _, p := range r.Pages {
		if p.Cached {
			n++
		}
	}
	return n
}

// Build compiles every page and writes one file per page. Files are written
// only when every page compiled; the first failure cancels the rest and is
// returned unchanged.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	result := BuildResult{Timings: &Timings{}}
	if req == nil || req.Manifest == nil {
		return result, errors.New("missing build request")
	}
	started := time.Now()
	cfg := req.Manifest.Config

	pages := req.Pages
	if pages == nil {
		var err error
		if pages, err = req.Manifest.Pages(); err != nil {
			return result, err
		}
	}
	result.OutputDir = req.OutputDir
	if result.OutputDir == "" {
		result.OutputDir = req.Manifest.OutputDir()
	}
	result.Backend = req.Backend
	if result.Backend == "" {
		result.Backend = cfg.Output.Backend
	}
	demoTag := req.DemoTag
	if demoTag == "" {
		demoTag = cfg.Compile.DemoTag
	}

	opts := backend.Options{Package: cfg.Output.Package, ViewImport: cfg.Output.ViewImport}
	be, err := backend.Lookup(result.Backend, opts)
	if err != nil {
		return result, err
	}
	d := &driver.Driver{
		Backend:     be,
		Options:     opts,
		DemoTag:     demoTag,
		FrontMatter: cfg.Compile.FrontMatter,
		Cache:       req.Cache,
	}
	// исходники демо проверяем только там, где они станут Go-кодом
	if be.Name() == gogen.Name {
		d.Validator = demo.GoValidator{}
	}
	if req.Reporter != nil {
		d.Reporter = &lockedReporter{next: req.Reporter}
	}

	files := make([]string, len(pages))
	for i, p := range pages {
		files[i] = p.Rel
	}
	emitStage(req.Progress, files, StageBuild, StatusQueued, nil, 0)

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "build", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outputs := make([]*driver.PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, page := range pages {
		g.Go(func() error {
			res, err := d.Page(gctx, page, observer(req.Progress, result.Timings, page.Rel))
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					emitFile(req.Progress, page.Rel, StageCompile, StatusError, err, 0)
				}
				return err
			}
			if res.Cached {
				emitFile(req.Progress, page.Rel, StageCompile, StatusCached, nil, 0)
			}
			outputs[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("failed")
		emitStage(req.Progress, nil, StageBuild, StatusError, err, time.Since(started))
		return result, err
	}

	writeStart := time.Now()
	if err := os.MkdirAll(result.OutputDir, 0o750); err != nil {
		span.End("failed")
		return result, fmt.Errorf("failed to create output dir: %w", err)
	}
	for _, res := range outputs {
		emitFile(req.Progress, res.Page.Rel, StageWrite, StatusWorking, nil, 0)
		out := filepath.Join(result.OutputDir, res.Page.Name+be.Ext())
		if err := writeAtomic(out, res.Output); err != nil {
			err = fmt.Errorf("failed to write build output %q: %w", out, err)
			emitFile(req.Progress, res.Page.Rel, StageWrite, StatusError, err, 0)
			span.End("failed")
			return result, err
		}
		emitFile(req.Progress, res.Page.Rel, StageWrite, StatusDone, nil, 0)
		result.Pages = append(result.Pages, PageOutput{
			Page:         res.Page,
			OutputPath:   out,
			Instructions: res.Instructions,
			Demos:        res.Demos,
			Cached:       res.Cached,
		})
	}
	result.Timings.Set(StageWrite, time.Since(writeStart))
	result.Timings.Set(StageBuild, time.Since(started))

	span.Attr("pages", fmt.Sprint(len(result.Pages))).
		Attr("cached", fmt.Sprint(result.CacheHits())).
		End(result.Backend)
	emitStage(req.Progress, nil, StageBuild, StatusDone, nil, time.Since(started))
	return result, nil
}

// observer maps driver phases onto progress events and timings.
func observer(sink ProgressSink, timings *Timings, file string) driver.PhaseObserver {
	return func(ev driver.PhaseEvent) {
		stage := StageCompile
		if ev.Name == driver.PhaseGenerate {
			stage = StageGenerate
		}
		if ev.Status == driver.PhaseStart {
			emitFile(sink, file, stage, StatusWorking, nil, 0)
			return
		}
		timings.Add(stage, ev.Elapsed)
	}
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".demomark-*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// #nosec G302 -- generated sources are meant to be read by other tools
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}
