// Package gogen generates a Go source file per page. The page becomes a
// function building its view tree; every demo becomes a method named after
// its unit on a per-page demos type, so pages sharing a package never clash.
package gogen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"unicode/utf8"

	"demomark/internal/backend"
	"demomark/internal/demo"
	"demomark/internal/emit"
)

const (
	Name = "go"

	DefaultPackage    = "pages"
	DefaultViewImport = "demomark.dev/view"

	// ComponentClass wraps every page body.
	ComponentClass = "demo-components__component"
)

func init() {
	backend.Register(Name, func(opts backend.Options) backend.Backend { return New(opts) })
}

type Generator struct {
	pkg        string
	viewImport string
}

func New(opts backend.Options) *Generator {
	g := &Generator{pkg: opts.Package, viewImport: opts.ViewImport}
	if g.pkg == "" {
		g.pkg = DefaultPackage
	}
	if g.viewImport == "" {
		g.viewImport = DefaultViewImport
	}
	return g
}

func (*Generator) Name() string { return Name }
func (*Generator) Ext() string  { return ".go" }

// DemosType names the type whose methods are the page's demos.
func DemosType(page string) string { return page + "Demos" }

func (g *Generator) Generate(page backend.Page) ([]byte, error) {
	if !token.IsIdentifier(page.Name) || !token.IsExported(page.Name) {
		return nil, fmt.Errorf("gogen: page name %q is not an exported Go identifier", page.Name)
	}
	if !token.IsIdentifier(g.pkg) {
		return nil, fmt.Errorf("gogen: package name %q is not a Go identifier", g.pkg)
	}

	w := &writer{}
	w.printf("// Code generated by demomark")
	if page.Source != "" {
		w.printf(" from %s", page.Source)
	}
	w.printf(". DO NOT EDIT.\n\n")
	w.printf("package %s\n\n", g.pkg)
	w.printf("import view %s\n\n", strconv.Quote(g.viewImport))

	demosType := DemosType(page.Name)
	if len(page.Demos) > 0 {
		w.printf("// %s holds the demos of %s, one method per demo.\n", demosType, page.Name)
		w.printf("type %s struct{}\n\n", demosType)
	}

	w.printf("// %s renders %s.\n", page.Name, strconv.Quote(page.Title()))
	if desc := page.Meta["description"]; desc != "" {
		w.printf("//\n// %s\n", oneLine(desc))
	}
	w.printf("func %s() view.Node {\n", page.Name)
	if len(page.Demos) > 0 {
		w.printf("var d %s\n", demosType)
	}
	w.printf("return view.Div(%s,\n", strconv.Quote(ComponentClass))
	err := emit.Replay(page.Body, page.Demos, func(ins emit.Instruction, d *emit.DemoEntry) error {
		if d != nil {
			w.printf("d.%s(),\n", demo.UnitName(d.Index))
			return nil
		}
		w.expr(ins)
		w.printf(",\n")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gogen: %w", err)
	}
	w.printf(")\n}\n")

	for _, d := range page.Demos {
		w.printf("\n// %s is the demo on line %d.\n", demo.UnitName(d.Index), d.Line)
		w.printf("func (%s) %s() view.Node {\n", demosType, demo.UnitName(d.Index))
		w.printf("%s\n}\n", d.Source)
	}

	out, err := format.Source(w.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gogen: formatting %s: %w", page.Name, err)
	}
	return out, nil
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *writer) expr(ins emit.Instruction) {
	switch ins := ins.(type) {
	case *emit.Heading:
		w.printf("view.Heading(%d", ins.Level)
		w.args(ins.Children)
	case *emit.Paragraph:
		w.printf("view.Paragraph(")
		w.list(ins.Children)
	case *emit.List:
		w.printf("view.List(%t, %d", ins.Ordered, ins.Start)
		for _, item := range ins.Items {
			w.printf(",\nview.Item(")
			w.list(item)
		}
		w.printf(")")
	case *emit.CodeBlock:
		w.printf("view.CodeBlock(%s, %s)", strconv.Quote(ins.Lang), quote(ins.Text))
	case *emit.Divider:
		w.printf("view.Divider()")
	case *emit.RawContent:
		w.printf("view.Raw(%s)", quote(ins.Text))
	case *emit.TextNode:
		w.printf("view.Text(%s)", strconv.Quote(ins.Value))
	case *emit.EmphasisNode:
		w.printf("view.Emphasis(")
		w.list(ins.Children)
	case *emit.StrongNode:
		w.printf("view.Strong(")
		w.list(ins.Children)
	case *emit.CodeNode:
		w.printf("view.Code(%s)", strconv.Quote(ins.Value))
	case *emit.LinkNode:
		w.printf("view.Link(%s", strconv.Quote(ins.Target))
		w.args(ins.Children)
	default:
		// DemoRef is handled by the caller
		w.printf("nil")
	}
}

// args writes ", child, child)" after a leading fixed argument.
func (w *writer) args(children []emit.Instruction) {
	for _, c := range children {
		w.printf(", ")
		w.expr(c)
	}
	w.printf(")")
}

// list writes "child, child)" right after an opening parenthesis.
func (w *writer) list(children []emit.Instruction) {
	for i, c := range children {
		if i > 0 {
			w.printf(", ")
		}
		w.expr(c)
	}
	w.printf(")")
}

// quote prefers a raw string for multi-line text that Go source can hold
// verbatim.
func quote(s string) string {
	if strings.Contains(s, "\n") && utf8.ValidString(s) && !strings.ContainsAny(s, "`\r\x00\ufeff") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
