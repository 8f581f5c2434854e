package gogen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demomark/internal/backend"
	"demomark/internal/emit"
	"demomark/internal/markdown"
)

func page(t *testing.T, name, doc string) backend.Page {
	t.Helper()
	blocks, err := markdown.ParseString(doc)
	require.NoError(t, err)
	body, demos, err := emit.SplitAndEmit(blocks, emit.Options{})
	require.NoError(t, err)
	return backend.Page{Name: name, Source: "docs/button/mod.md", Body: body, Demos: demos}
}

func parseGo(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "page.go", src, parser.ParseComments)
	require.NoError(t, err, string(src))
	return f
}

func TestGenerateParsesAndNamesUnits(t *testing.T) {
	doc := "# Button\n\nUse *buttons*.\n\n```demo\nreturn view.Text(\"one\")\n```\n\n- a\n- [b](c)\n\n```go\nfmt.Println()\n```\n\n```demo\nreturn view.Text(\"two\")\n```\n"
	out, err := New(backend.Options{Package: "docs", ViewImport: "example.com/ui/view"}).Generate(page(t, "ButtonMdPage", doc))
	require.NoError(t, err)

	f := parseGo(t, out)
	assert.Equal(t, "docs", f.Name.Name)
	require.Len(t, f.Imports, 1)
	assert.Equal(t, `"example.com/ui/view"`, f.Imports[0].Path.Value)

	funcs := map[string]*ast.FuncDecl{}
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			funcs[fn.Name.Name] = fn
		}
	}
	require.Contains(t, funcs, "ButtonMdPage")
	require.Contains(t, funcs, "Demo1")
	require.Contains(t, funcs, "Demo2")
	assert.NotNil(t, funcs["Demo1"].Recv)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "// Code generated by demomark from docs/button/mod.md. DO NOT EDIT."))
	assert.Contains(t, text, `view.Div("demo-components__component",`)
	assert.Contains(t, text, `view.CodeBlock("go", "fmt.Println()")`)
	assert.Contains(t, text, `view.Link("c", view.Text("b"))`)
	assert.Contains(t, text, `view.Emphasis(view.Text("buttons"))`)
	assert.Contains(t, text, "type ButtonMdPageDemos struct{}")

	first := strings.Index(text, "d.Demo1()")
	second := strings.Index(text, "d.Demo2()")
	require.True(t, first > 0 && second > first, text)
	assert.Less(t, strings.Index(text, `view.Heading(1, view.Text("Button"))`), first)
}

func TestGenerateWithoutDemos(t *testing.T) {
	out, err := New(backend.Options{}).Generate(page(t, "PlainMdPage", "# Plain\n\n---\n"))
	require.NoError(t, err)
	f := parseGo(t, out)
	assert.Equal(t, DefaultPackage, f.Name.Name)
	assert.NotContains(t, string(out), "Demos struct")
	assert.NotContains(t, string(out), "var d ")
}

func TestGenerateMetaComment(t *testing.T) {
	p := page(t, "ButtonMdPage", "text\n")
	p.Meta = map[string]string{"title": "Button", "description": "Clickable\n  things."}
	out, err := New(backend.Options{}).Generate(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `// ButtonMdPage renders "Button".`)
	assert.Contains(t, string(out), "// Clickable things.")
}

func TestGenerateRejectsBadNames(t *testing.T) {
	p := page(t, "ButtonMdPage", "x\n")
	for _, name := range []string{"", "buttonPage", "Button Page", "1Page"} {
		p.Name = name
		_, err := New(backend.Options{}).Generate(p)
		assert.Error(t, err, name)
	}

	p.Name = "ButtonMdPage"
	_, err := New(backend.Options{Package: "my-docs"}).Generate(p)
	assert.Error(t, err)
}

func TestGenerateReportsUnformattableDemo(t *testing.T) {
	p := page(t, "BadMdPage", "```demo\nreturn (\n```\n")
	_, err := New(backend.Options{}).Generate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BadMdPage")
}

func TestGenerateRejectsDanglingReference(t *testing.T) {
	p := backend.Page{Name: "XMdPage", Body: emit.Body{Instructions: []emit.Instruction{&emit.DemoRef{Index: 1}}}}
	_, err := New(backend.Options{}).Generate(p)
	require.Error(t, err)
}

func TestGenerateKeepsInvalidUTF8Text(t *testing.T) {
	text := "bad \xff byte\nline2"
	pg := backend.Page{
		Name:   "XMdPage",
		Source: "x.md",
		Body:   emit.Body{Instructions: []emit.Instruction{&emit.CodeBlock{Lang: "txt", Text: text}}},
	}
	out, err := New(backend.Options{}).Generate(pg)
	require.NoError(t, err)
	parseGo(t, out)
	assert.Contains(t, string(out), strconv.Quote(text))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "`a\nb`", quote("a\nb"))
	assert.Equal(t, `"one line"`, quote("one line"))
	for _, s := range []string{"a\n`b`", "a\r\nb", "a\n\x00", "\xfe\n", "a\n\ufeff"} {
		assert.Equal(t, strconv.Quote(s), quote(s), "%q", s)
	}
}

func TestRegistered(t *testing.T) {
	b, err := backend.Lookup(Name, backend.Options{})
	require.NoError(t, err)
	assert.Equal(t, ".go", b.Ext())
}
