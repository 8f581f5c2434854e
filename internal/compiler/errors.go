package compiler

import (
	"errors"
	"fmt"
	"strings"

	"demomark/internal/diag"
	"demomark/internal/emit"
	"demomark/internal/markdown"
	"demomark/internal/source"
)

// ErrorKind classifies compile failures.
type ErrorKind uint8

const (
	KindParse ErrorKind = iota + 1
	KindDemoSource
	KindInternal
	KindFrontMatter
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindDemoSource:
		return "demo source"
	case KindInternal:
		return "internal"
	case KindFrontMatter:
		return "front matter"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the only error type Compile returns for problems with a document.
// Line is 1-based, 0 when unknown; DemoIndex is 0 when no demo is involved.
// FileSet, when set, resolves the Diagnostic's spans.
type Error struct {
	Kind       ErrorKind
	Message    string
	Line       int
	DemoIndex  int
	Path       string
	Diagnostic *diag.Diagnostic
	FileSet    *source.FileSet
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	switch {
	case e.Path != "" && e.Line > 0:
		fmt.Fprintf(&sb, "%s:%d: ", e.Path, e.Line)
	case e.Path != "":
		sb.WriteString(e.Path + ": ")
	case e.Line > 0:
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Message)
	if e.DemoIndex > 0 {
		fmt.Fprintf(&sb, " (demo %d)", e.DemoIndex)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// fromParse converts a markdown failure.
func fromParse(path string, err error) *Error {
	var pe *markdown.ParseError
	if !errors.As(err, &pe) {
		return &Error{Kind: KindInternal, Message: err.Error(), Path: path, Err: err}
	}
	d := pe.Diagnostic
	return &Error{
		Kind:       KindParse,
		Message:    d.Message,
		Line:       pe.Line,
		Path:       path,
		Diagnostic: &d,
		Err:        err,
	}
}

// fromSplit converts an emitter failure.
func fromSplit(path string, err error) *Error {
	var dse *emit.DemoSourceError
	if errors.As(err, &dse) {
		d := diag.NewError(diag.DemoSourceInvalid, dse.Span, dse.Err.Error())
		return &Error{
			Kind:       KindDemoSource,
			Message:    dse.Err.Error(),
			Line:       dse.Line,
			DemoIndex:  dse.Index,
			Path:       path,
			Diagnostic: &d,
			Err:        err,
		}
	}
	var ie *emit.InternalError
	if errors.As(err, &ie) {
		return &Error{Kind: KindInternal, Message: ie.Message, Line: ie.Line, Path: path, Err: err}
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Path: path, Err: err}
}
