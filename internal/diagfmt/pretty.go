package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"demomark/internal/diag"
	"demomark/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Диагностики без файла в fs печатаются без позиции.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	located := fs.Has(d.Primary.File) && len(fs.Get(d.Primary.File).Content) >= int(d.Primary.End)
	if located {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: ", displayPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col)
	}
	fmt.Fprintf(w, "%s %s: %s\n",
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message)
	if located {
		excerpt(w, fs, d.Primary, opts.Context, p)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if fs.Has(n.Span.File) && !n.Span.Empty() {
			pos, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				displayPath(fs, n.Span.File, opts.PathMode), pos.Line, pos.Col, n.Msg)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
	}
}

// excerpt prints the primary line with context and a caret underline. A
// span over several lines is underlined up to the end of its first line.
func excerpt(w io.Writer, fs *source.FileSet, span source.Span, context int8, p palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	first := int(start.Line) - int(context)
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + int(context)
	if n := f.LineCount(); last > n {
		last = n
	}
	if last < int(start.Line) {
		last = int(start.Line)
	}
	gw := len(strconv.Itoa(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln)) // #nosec G115 -- ln is bounded by LineCount
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gw, ln), expandTabs(text))
		if ln != int(start.Line) {
			continue
		}
		lineEnd := len(text)
		if end.Line == start.Line {
			lineEnd = min(int(end.Col)-1, len(text))
		}
		from := min(int(start.Col)-1, len(text))
		pad := runewidth.StringWidth(expandTabs(text[:from]))
		width := runewidth.StringWidth(expandTabs(text[:max(lineEnd, from)])) - pad
		marks := "^"
		if width > 1 {
			marks += strings.Repeat("~", width-1)
		}
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprint(strings.Repeat(" ", gw)+" |"), strings.Repeat(" ", pad), p.caret.Sprint(marks))
	}
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}
