// Package jsonout dumps a compiled page as JSON: the instruction tree in
// body order plus the demo list.
package jsonout

import (
	"encoding/json"
	"fmt"

	"demomark/internal/backend"
	"demomark/internal/demo"
	"demomark/internal/emit"
)

const Name = "json"

func init() {
	backend.Register(Name, func(backend.Options) backend.Backend { return Dumper{} })
}

type Dumper struct{}

func (Dumper) Name() string { return Name }
func (Dumper) Ext() string  { return ".json" }

// PageOutput is the document written for one page.
type PageOutput struct {
	Name   string            `json:"name"`
	Source string            `json:"source,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
	Body   []Node            `json:"body"`
	Demos  []DemoOutput      `json:"demos"`
}

type DemoOutput struct {
	Index  int    `json:"index"`
	Unit   string `json:"unit"`
	Line   int    `json:"line"`
	Source string `json:"source"`
}

// Node is one instruction. Fields not used by a kind are omitted.
type Node struct {
	Kind     string   `json:"kind"`
	Level    int      `json:"level,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Start    int      `json:"start,omitempty"`
	Lang     string   `json:"lang,omitempty"`
	Text     string   `json:"text,omitempty"`
	Target   string   `json:"target,omitempty"`
	Demo     int      `json:"demo,omitempty"`
	Children []Node   `json:"children,omitempty"`
	Items    [][]Node `json:"items,omitempty"`
}

func (Dumper) Generate(page backend.Page) ([]byte, error) {
	out, err := Build(page)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return append(data, '\n'), nil
}

// Build converts a page without serializing it.
func Build(page backend.Page) (PageOutput, error) {
	out := PageOutput{
		Name:   page.Name,
		Source: page.Source,
		Meta:   page.Meta,
		Body:   make([]Node, 0, len(page.Body.Instructions)),
		Demos:  make([]DemoOutput, 0, len(page.Demos)),
	}
	err := emit.Replay(page.Body, page.Demos, func(ins emit.Instruction, d *emit.DemoEntry) error {
		out.Body = append(out.Body, node(ins))
		if d != nil {
			out.Demos = append(out.Demos, DemoOutput{Index: d.Index, Unit: demo.UnitName(d.Index), Line: d.Line, Source: d.Source})
		}
		return nil
	})
	if err != nil {
		return PageOutput{}, fmt.Errorf("json: %w", err)
	}
	return out, nil
}

func node(ins emit.Instruction) Node {
	n := Node{Kind: ins.Kind().String()}
	switch ins := ins.(type) {
	case *emit.Heading:
		n.Level = ins.Level
		n.Children = nodes(ins.Children)
	case *emit.Paragraph:
		n.Children = nodes(ins.Children)
	case *emit.List:
		n.Ordered = ins.Ordered
		n.Start = ins.Start
		n.Items = make([][]Node, len(ins.Items))
		for i, item := range ins.Items {
			n.Items[i] = nodes(item)
		}
	case *emit.CodeBlock:
		n.Lang = ins.Lang
		n.Text = ins.Text
	case *emit.RawContent:
		n.Text = ins.Text
	case *emit.DemoRef:
		n.Demo = ins.Index
	case *emit.TextNode:
		n.Text = ins.Value
	case *emit.CodeNode:
		n.Text = ins.Value
	case *emit.EmphasisNode:
		n.Children = nodes(ins.Children)
	case *emit.StrongNode:
		n.Children = nodes(ins.Children)
	case *emit.LinkNode:
		n.Target = ins.Target
		n.Children = nodes(ins.Children)
	}
	return n
}

func nodes(list []emit.Instruction) []Node {
	if len(list) == 0 {
		return nil
	}
	out := make([]Node, len(list))
	for i, ins := range list {
		out[i] = node(ins)
	}
	return out
}
