// Package compiler turns one markdown document into a Body and its demos.
// It is the single entry point the build pipeline and the CLI use.
package compiler

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/emit"
	"demomark/internal/markdown"
	"demomark/internal/source"
	"demomark/internal/trace"
)

// DefaultPath names documents compiled from memory.
const DefaultPath = "<input>"

type Options struct {
	// DemoTag selects demo fences; empty means emit.DefaultDemoTag.
	DemoTag string
	// Validator checks demo sources. Nil skips the check.
	Validator demo.Validator
	// Path is used in messages for in-memory documents.
	Path string
	// Reporter receives the diagnostic of a failure. May be nil.
	Reporter diag.Reporter
	// FrontMatter enables the YAML header. Off, a leading "---" block is
	// plain markdown.
	FrontMatter bool
}

// Result is a successfully compiled document.
type Result struct {
	Blocks  []markdown.Block
	Body    emit.Body
	Demos   []emit.DemoEntry
	Meta    map[string]string
	FileSet *source.FileSet
	File    *source.File
}

// Compile compiles text held in memory. On failure the result is nil and the
// error is a *Error, except for context cancellation.
func Compile(ctx context.Context, text string, opts Options) (*Result, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	content, flags := source.Normalize([]byte(text))
	return compile(ctx, path, content, flags|source.FileVirtual, opts)
}

// CompileFile reads and compiles a document from disk.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	raw, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return CompileSource(ctx, path, raw, opts)
}

// ReadDocument loads a document. A failure is a *Error with the
// IOLoadFileError diagnostic.
func ReadDocument(path string) ([]byte, error) {
	// #nosec G304 -- path comes from the manifest or the command line
	raw, err := os.ReadFile(path)
	if err != nil {
		d := diag.NewError(diag.IOLoadFileError, source.Span{}, err.Error())
		return nil, &Error{Kind: KindIO, Message: err.Error(), Path: path, Diagnostic: &d, Err: err}
	}
	return raw, nil
}

// CompileSource compiles raw document bytes read from path.
func CompileSource(ctx context.Context, path string, raw []byte, opts Options) (*Result, error) {
	content, flags := source.Normalize(raw)
	return compile(ctx, path, content, flags, opts)
}

func compile(ctx context.Context, path string, content []byte, flags source.FileFlags, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	body := content
	var (
		meta  map[string]string
		fmErr error
	)
	if opts.FrontMatter {
		fmSpan := trace.Begin(tracer, trace.ScopePass, "frontmatter", parent)
		var headerLines int
		body, meta, headerLines, fmErr = splitFrontMatter(content)
		fmSpan.End(strconv.Itoa(headerLines) + " lines")
	}

	fs := source.NewFileSet()
	if fmErr != nil {
		id := fs.Add(path, content, flags)
		file := fs.Get(id)
		span := source.Span{File: id, Start: 0, End: file.LineStart(2)}
		d := diag.NewError(diag.MdFrontMatter, span, fmErr.Error())
		diag.Emit(opts.Reporter, d)
		return nil, &Error{Kind: KindFrontMatter, Message: fmErr.Error(), Line: 1, Path: path, Diagnostic: &d, FileSet: fs, Err: fmErr}
	}
	id := fs.Add(path, body, flags)
	file := fs.Get(id)

	parseSpan := trace.Begin(tracer, trace.ScopePass, "parse", parent)
	blocks, err := markdown.Parse(file, markdown.Options{Reporter: opts.Reporter})
	if err != nil {
		parseSpan.End("error")
		ce := fromParse(path, err)
		ce.FileSet = fs
		return nil, ce
	}
	parseSpan.Attr("blocks", strconv.Itoa(len(blocks))).End("")

	splitSpan := trace.Begin(tracer, trace.ScopePass, "split", parent)
	bodyOut, demos, err := emit.SplitAndEmit(blocks, emit.Options{
		DemoTag:   opts.DemoTag,
		Validator: opts.Validator,
		Reporter:  opts.Reporter,
	})
	if err != nil {
		splitSpan.End("error")
		ce := fromSplit(path, err)
		ce.FileSet = fs
		return nil, ce
	}
	splitSpan.Attr("demos", strconv.Itoa(len(demos))).End("")

	return &Result{
		Blocks:  blocks,
		Body:    bodyOut,
		Demos:   demos,
		Meta:    meta,
		FileSet: fs,
		File:    file,
	}, nil
}

// Describe summarizes a result for logs.
func (r *Result) Describe() string {
	return fmt.Sprintf("%d instructions, %d demos", len(r.Body.Instructions), len(r.Demos))
}
