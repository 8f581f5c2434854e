package main

import (
	"errors"
	"fmt"
	"io"

	"demomark/internal/compiler"
	"demomark/internal/diag"
	"demomark/internal/diagfmt"
	"demomark/internal/project"
	"demomark/internal/source"
)

// manifestError marks failures of loading or resolving demomark.toml.
type manifestError struct {
	err error
}

func (e *manifestError) Error() string { return e.err.Error() }
func (e *manifestError) Unwrap() error { return e.err }

func (e *manifestError) code() diag.Code {
	switch {
	case errors.Is(e.err, project.ErrDuplicatePage):
		return diag.PrjDuplicatePage
	case errors.Is(e.err, project.ErrPageNotFound):
		return diag.PrjPageNotFound
	default:
		return diag.PrjManifestInvalid
	}
}

// errorDiagnostic turns a command error into a diagnostic when it carries one.
func errorDiagnostic(err error) (diag.Diagnostic, *source.FileSet, bool) {
	var ce *compiler.Error
	if errors.As(err, &ce) && ce.Diagnostic != nil {
		d := *ce.Diagnostic
		if ce.FileSet == nil && ce.Path != "" {
			d.Message = ce.Path + ": " + d.Message
		}
		return d, ce.FileSet, true
	}
	var me *manifestError
	if errors.As(err, &me) {
		return diag.NewError(me.code(), source.Span{}, me.Error()), nil, true
	}
	return diag.Diagnostic{}, nil, false
}

func printError(w io.Writer, err error, colored bool) {
	d, fs, ok := errorDiagnostic(err)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	bag := diag.NewBag(1)
	bag.Add(d)
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     colored,
		Context:   1,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	})
}

// printErrorJSON writes the error in the diagnostics JSON shape; errors without
// a diagnostic become an entry with an unknown code.
func printErrorJSON(w io.Writer, err error) {
	d, fs, ok := errorDiagnostic(err)
	if !ok {
		d = diag.NewError(diag.UnknownCode, source.Span{}, err.Error())
	}
	bag := diag.NewBag(1)
	bag.Add(d)
	if jerr := diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         diagfmt.PathModeAuto,
		IncludeNotes:     true,
	}); jerr != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
