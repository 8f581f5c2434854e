package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/emit"
	"demomark/internal/trace"
)

func TestCompileExample(t *testing.T) {
	doc := "# Button\n\nA paragraph.\n\n```demo\nA\n```\n\n```rust\nlet x = 1;\n```\n\n```demo\nB\n```\n"
	res, err := Compile(context.Background(), doc, Options{})
	require.NoError(t, err)

	assert.Equal(t, []emit.DemoEntry{{Index: 1, Source: "A", Line: 5}, {Index: 2, Source: "B", Line: 13}}, res.Demos)
	require.Len(t, res.Body.Instructions, 5)
	assert.Equal(t, emit.KindHeading, res.Body.Instructions[0].Kind())
	assert.Equal(t, emit.KindParagraph, res.Body.Instructions[1].Kind())
	assert.Equal(t, &emit.DemoRef{Index: 1}, res.Body.Instructions[2])
	assert.Equal(t, emit.KindCodeBlock, res.Body.Instructions[3].Kind())
	assert.Equal(t, &emit.DemoRef{Index: 2}, res.Body.Instructions[4])
	assert.Equal(t, DefaultPath, res.File.Path)
	assert.Equal(t, "5 instructions, 2 demos", res.Describe())
}

func TestCompileIsIdempotent(t *testing.T) {
	doc := "---\ntitle: X\n---\n# A\n\n```demo\nd\n```\n"
	r1, err := Compile(context.Background(), doc, Options{FrontMatter: true})
	require.NoError(t, err)
	r2, err := Compile(context.Background(), doc, Options{FrontMatter: true})
	require.NoError(t, err)
	assert.Equal(t, r1.Body, r2.Body)
	assert.Equal(t, r1.Demos, r2.Demos)
	assert.Equal(t, r1.Meta, r2.Meta)
}

func TestCompileUnterminatedFence(t *testing.T) {
	res, err := Compile(context.Background(), "```demo\nA\n", Options{Path: "a.md"})
	assert.Nil(t, res)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindParse, ce.Kind)
	assert.Equal(t, 1, ce.Line)
	assert.Equal(t, 0, ce.DemoIndex)
	require.NotNil(t, ce.Diagnostic)
	assert.Equal(t, diag.MdUnterminatedFence, ce.Diagnostic.Code)
	assert.True(t, strings.HasPrefix(ce.Error(), "a.md:1: code fence"))
}

func TestCompileDemoSourceError(t *testing.T) {
	doc := "# T\n\n```demo\nreturn nil\n```\n\n```demo\nfoo(\n```\n"
	res, err := Compile(context.Background(), doc, Options{Validator: demo.GoValidator{}, Path: "p.md"})
	assert.Nil(t, res)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindDemoSource, ce.Kind)
	assert.Equal(t, 2, ce.DemoIndex)
	assert.Equal(t, 8, ce.Line)
	assert.Contains(t, ce.Error(), "(demo 2)")
	assert.Equal(t, diag.DemoSourceInvalid, ce.Diagnostic.Code)

	var se *demo.SyntaxError
	assert.True(t, errors.As(err, &se))
}

func TestCompileFrontMatter(t *testing.T) {
	doc := "---\ntitle: Button\ndescription: Clickable\norder: 3\n---\n# Heading\n\n```demo\nx\n```\n"
	res, err := Compile(context.Background(), doc, Options{FrontMatter: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "Button", "description": "Clickable", "order": "3"}, res.Meta)
	require.Len(t, res.Demos, 1)
	// строки заголовка сохраняются пустыми
	assert.Equal(t, 8, res.Demos[0].Line)
	assert.Equal(t, emit.KindHeading, res.Body.Instructions[0].Kind())
}

func TestCompileFrontMatterKeepsErrorLines(t *testing.T) {
	_, err := Compile(context.Background(), "---\nname: x\n---\n\n```\nopen\n", Options{FrontMatter: true})
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 5, ce.Line)
}

func TestCompileInvalidFrontMatter(t *testing.T) {
	_, err := Compile(context.Background(), "---\ntitle: [unclosed\n---\ntext\n", Options{FrontMatter: true})
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindFrontMatter, ce.Kind)
	assert.Equal(t, 1, ce.Line)
	assert.Equal(t, diag.MdFrontMatter, ce.Diagnostic.Code)
}

func TestCompileLeadingBreakIsNotFrontMatter(t *testing.T) {
	res, err := Compile(context.Background(), "---\n\ntext\n\n---\n", Options{FrontMatter: true})
	require.NoError(t, err)
	assert.Nil(t, res.Meta)
	require.Len(t, res.Body.Instructions, 3)
	assert.Equal(t, emit.KindDivider, res.Body.Instructions[0].Kind())
}

func bodyKinds(res *Result) []emit.Kind {
	kinds := make([]emit.Kind, len(res.Body.Instructions))
	for i, ins := range res.Body.Instructions {
		kinds[i] = ins.Kind()
	}
	return kinds
}

func TestCompileDashBlockIsMarkdownByDefault(t *testing.T) {
	for _, doc := range []string{
		"---\nIntro\n---\n",
		"---\nIntro text\n---\n",
		"---\nNote: read this first\n---\n",
	} {
		res, err := Compile(context.Background(), doc, Options{})
		require.NoError(t, err, doc)
		assert.Nil(t, res.Meta, doc)
		assert.Equal(t, []emit.Kind{emit.KindDivider, emit.KindParagraph, emit.KindDivider}, bodyKinds(res), doc)
	}

	res, err := Compile(context.Background(), "---\nNote: read this first\n---\n\nBody text.\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, []emit.Kind{emit.KindDivider, emit.KindParagraph, emit.KindDivider, emit.KindParagraph}, bodyKinds(res))
}

func TestCompileScalarHeaderFallsBackToMarkdown(t *testing.T) {
	for _, doc := range []string{"---\nIntro text\n---\n", "---\n- a\n- b\n---\n"} {
		res, err := Compile(context.Background(), doc, Options{FrontMatter: true})
		require.NoError(t, err, doc)
		assert.Nil(t, res.Meta, doc)
		require.NotEmpty(t, res.Body.Instructions, doc)
		assert.Equal(t, emit.KindDivider, res.Body.Instructions[0].Kind(), doc)
	}
}

func TestCompileCustomTag(t *testing.T) {
	res, err := Compile(context.Background(), "```demo\na\n```\n```example\nb\n```\n", Options{DemoTag: "example"})
	require.NoError(t, err)
	require.Len(t, res.Demos, 1)
	assert.Equal(t, "b", res.Demos[0].Source)
}

func TestCompileCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Compile(ctx, "# x", Options{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(path, []byte("# P\r\n\r\n```demo\r\nx\r\n```\r\n"), 0o600))

	res, err := CompileFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Demos[0].Source)

	_, err = CompileFile(context.Background(), filepath.Join(dir, "missing.md"), Options{})
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, KindIO, ce.Kind)
	assert.Equal(t, "io", ce.Kind.String())
	assert.Equal(t, diag.IOLoadFileError, ce.Diagnostic.Code)
}

func TestCompileEmitsTraceSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelPhase, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)

	_, err := Compile(ctx, "# A\n\n```demo\nx\n```\n", Options{FrontMatter: true})
	require.NoError(t, err)
	out := buf.String()
	for _, name := range []string{"frontmatter", "parse", "split"} {
		assert.Contains(t, out, "> "+name)
	}
	assert.Contains(t, out, "demos=1")
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "line 3: boom", (&Error{Message: "boom", Line: 3}).Error())
	assert.Equal(t, "x.md: boom (demo 2)", (&Error{Message: "boom", Path: "x.md", DemoIndex: 2}).Error())
	assert.Equal(t, "boom", (&Error{Message: "boom"}).Error())
}
