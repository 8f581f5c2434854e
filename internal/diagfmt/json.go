package diagfmt

import (
	"encoding/json"
	"io"

	"demomark/internal/diag"
	"demomark/internal/source"
)

// Location is a span in JSON output. Line and column fields are filled only
// with JSONOpts.IncludePositions.
type Location struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type Note struct {
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
}

type Entry struct {
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
	Notes    []Note    `json:"notes,omitempty"`
}

// Report is the root of JSON output.
type Report struct {
	Diagnostics []Entry `json:"diagnostics"`
	Count       int     `json:"count"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

// nil, если файла нет в наборе
func (b jsonBuilder) location(span source.Span) *Location {
	if !b.fs.Has(span.File) {
		return nil
	}
	loc := &Location{
		File:      displayPath(b.fs, span.File, b.opts.PathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) entry(d *diag.Diagnostic) Entry {
	e := Entry{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	if !b.opts.IncludeNotes {
		return e
	}
	for _, n := range d.Notes {
		note := Note{Message: n.Msg}
		if !n.Span.Empty() {
			note.Location = b.location(n.Span)
		}
		e.Notes = append(e.Notes, note)
	}
	return e
}

// BuildReport converts the bag without serializing it. A nil bag gives an
// empty, non-nil list.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	var items []diag.Diagnostic
	if bag != nil {
		items = bag.Items()
	}
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	b := jsonBuilder{fs: fs, opts: opts}
	rep := Report{Diagnostics: make([]Entry, len(items)), Count: len(items)}
	for i := range items {
		rep.Diagnostics[i] = b.entry(&items[i])
	}
	return rep
}

// JSON writes the bag as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
