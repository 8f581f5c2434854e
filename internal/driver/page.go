// Package driver compiles one manifest page end to end: read, compile,
// generate, with a content-addressed cache in front of the work.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"demomark/internal/backend"
	"demomark/internal/compiler"
	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/project"
	"demomark/internal/source"
	"demomark/internal/trace"
)

// Driver holds what every page of one build shares.
type Driver struct {
	Backend backend.Backend
	Options backend.Options // the options Backend was created with; part of the cache key
	DemoTag string
	// FrontMatter is passed to the compiler; part of the cache key.
	FrontMatter bool
	Validator   demo.Validator
	Cache       *Cache
	Reporter    diag.Reporter
}

// PageResult is one generated page.
type PageResult struct {
	Page         project.Page
	Output       []byte
	Instructions int
	Demos        int
	Cached       bool
}

// Page reads, compiles and generates a page. Compile failures come back as
// *compiler.Error; cache failures never fail a page.
func (d *Driver) Page(ctx context.Context, page project.Page, observe PhaseObserver) (*PageResult, error) {
	if d.Backend == nil {
		return nil, errors.New("driver: no backend")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePage, page.Name, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	raw, err := compiler.ReadDocument(page.Path)
	if err != nil {
		span.End("read error")
		return nil, err
	}
	normalized, _ := source.Normalize(raw)
	key := CacheKey{
		Backend:    d.Backend.Name(),
		Package:    d.Options.Package,
		ViewImport: d.Options.ViewImport,
		DemoTag:    d.DemoTag,
		Validate:   d.Validator != nil,
		Meta:       d.FrontMatter,
		Page:       page.Name,
		Source:     page.Rel,
		Content:    blake3.Sum256(normalized),
	}.Digest()

	if entry, ok, cacheErr := d.Cache.Get(key); ok {
		span.Attr("cache", "hit").End(fmt.Sprintf("%d bytes", len(entry.Output)))
		return &PageResult{
			Page:         page,
			Output:       entry.Output,
			Instructions: entry.Instructions,
			Demos:        entry.Demos,
			Cached:       true,
		}, nil
	} else if cacheErr != nil {
		trace.Point(tracer, trace.ScopePage, "cache", "read failed: "+cacheErr.Error(), span.ID())
	}

	began := observe.start(PhaseCompile)
	res, err := compiler.CompileSource(ctx, page.Rel, raw, compiler.Options{
		DemoTag:     d.DemoTag,
		Validator:   d.Validator,
		Reporter:    d.Reporter,
		FrontMatter: d.FrontMatter,
	})
	observe.end(PhaseCompile, began, err)
	if err != nil {
		span.End("compile error")
		return nil, err
	}

	began = observe.start(PhaseGenerate)
	out, err := d.Backend.Generate(backend.Page{
		Name:   page.Name,
		Source: page.Rel,
		Meta:   res.Meta,
		Body:   res.Body,
		Demos:  res.Demos,
	})
	observe.end(PhaseGenerate, began, err)
	if err != nil {
		span.End("generate error")
		return nil, fmt.Errorf("%s: %s backend: %w", page.Rel, d.Backend.Name(), err)
	}

	result := &PageResult{
		Page:         page,
		Output:       out,
		Instructions: len(res.Body.Instructions),
		Demos:        len(res.Demos),
	}
	if err := d.Cache.Put(key, &CacheEntry{
		Page:         page.Name,
		Backend:      d.Backend.Name(),
		Output:       out,
		Instructions: result.Instructions,
		Demos:        result.Demos,
	}); err != nil {
		trace.Point(tracer, trace.ScopePage, "cache", "write failed: "+err.Error(), span.ID())
	}
	span.Attr("cache", "miss").End(res.Describe())
	return result, nil
}
