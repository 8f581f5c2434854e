// Package emit splits parsed markdown into a demo-free Body and the ordered
// list of demos, leaving a DemoRef where each demo fence stood.
package emit

import (
	"errors"
	"fmt"
	"strings"

	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/markdown"
)

// DefaultDemoTag is the fence info string that marks a demo.
const DefaultDemoTag = "demo"

type Options struct {
	// DemoTag overrides DefaultDemoTag. Matching is exact and case-sensitive.
	DemoTag string
	// Validator checks every demo source; nil skips the check.
	Validator demo.Validator
	// Reporter receives the diagnostic for a fatal failure. May be nil.
	Reporter diag.Reporter
}

func (o Options) tag() string {
	if o.DemoTag == "" {
		return DefaultDemoTag
	}
	return o.DemoTag
}

type emitter struct {
	opts  Options
	body  []Instruction
	demos []DemoEntry
}

// SplitAndEmit walks blocks once, in order. A failure returns neither a body
// nor demos.
func SplitAndEmit(blocks []markdown.Block, opts Options) (Body, []DemoEntry, error) {
	e := &emitter{
		opts: opts,
		body: make([]Instruction, 0, len(blocks)),
	}
	for _, b := range blocks {
		if err := e.block(b); err != nil {
			return Body{}, nil, err
		}
	}
	return Body{Instructions: e.body}, e.demos, nil
}

func (e *emitter) block(b markdown.Block) error {
	switch b := b.(type) {
	case *markdown.Heading:
		children, err := e.inlines(b.Inlines, b.Position)
		if err != nil {
			return err
		}
		e.body = append(e.body, &Heading{Level: b.Level, Children: children})
	case *markdown.Paragraph:
		children, err := e.inlines(b.Inlines, b.Position)
		if err != nil {
			return err
		}
		e.body = append(e.body, &Paragraph{Children: children})
	case *markdown.List:
		items := make([][]Instruction, len(b.Items))
		for i, item := range b.Items {
			children, err := e.inlines(item, b.Position)
			if err != nil {
				return err
			}
			items[i] = children
		}
		e.body = append(e.body, &List{Ordered: b.Ordered, Start: b.Start, Items: items})
	case *markdown.CodeFence:
		if b.Info == e.opts.tag() {
			return e.demo(b)
		}
		e.body = append(e.body, &CodeBlock{Lang: firstWord(b.Info), Text: b.Body})
	case *markdown.ThematicBreak:
		e.body = append(e.body, &Divider{})
	case *markdown.RawHTML:
		e.body = append(e.body, &RawContent{Text: b.Text})
	default:
		msg := fmt.Sprintf("unknown block type %T", b)
		line := 0
		if b != nil {
			pos := b.Pos()
			line = pos.Line
			diag.Emit(e.opts.Reporter, diag.NewError(diag.InternalUnknownBlock, pos.Span, msg))
		}
		return &InternalError{Message: msg, Line: line}
	}
	return nil
}

func (e *emitter) demo(f *markdown.CodeFence) error {
	index := len(e.demos) + 1
	if e.opts.Validator != nil {
		if err := e.opts.Validator.Validate(index, f.Body); err != nil {
			line := f.Line
			var se *demo.SyntaxError
			if errors.As(err, &se) && se.Line > 0 {
				// тело демо начинается со строки после открывающего забора
				line = f.Line + se.Line
			}
			diag.Emit(e.opts.Reporter, diag.NewError(diag.DemoSourceInvalid, f.Span, err.Error()))
			return &DemoSourceError{Index: index, Line: line, Span: f.Span, Err: err}
		}
	}
	e.demos = append(e.demos, DemoEntry{Index: index, Source: f.Body, Line: f.Line})
	e.body = append(e.body, &DemoRef{Index: index})
	return nil
}

// inlines maps an inline tree; pos is the enclosing block, used to place a
// failure.
func (e *emitter) inlines(nodes []markdown.Inline, pos markdown.Position) ([]Instruction, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]Instruction, 0, len(nodes))
	for _, n := range nodes {
		var (
			ins      Instruction
			children []Instruction
			err      error
		)
		switch n := n.(type) {
		case *markdown.Text:
			ins = &TextNode{Value: n.Value}
		case *markdown.CodeSpan:
			ins = &CodeNode{Value: n.Value}
		case *markdown.Emphasis:
			children, err = e.inlines(n.Children, pos)
			ins = &EmphasisNode{Children: children}
		case *markdown.Strong:
			children, err = e.inlines(n.Children, pos)
			ins = &StrongNode{Children: children}
		case *markdown.Link:
			children, err = e.inlines(n.Label, pos)
			ins = &LinkNode{Target: n.Target, Children: children}
		default:
			msg := fmt.Sprintf("unknown inline type %T", n)
			diag.Emit(e.opts.Reporter, diag.NewError(diag.InternalUnknownInline, pos.Span, msg))
			return nil, &InternalError{Message: msg, Line: pos.Line}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

func firstWord(info string) string {
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		return info[:i]
	}
	return info
}
