package emit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demomark/internal/demo"
	"demomark/internal/diag"
	"demomark/internal/markdown"
)

func split(t *testing.T, doc string, opts Options) (Body, []DemoEntry) {
	t.Helper()
	blocks, err := markdown.ParseString(doc)
	require.NoError(t, err)
	body, demos, err := SplitAndEmit(blocks, opts)
	require.NoError(t, err)
	return body, demos
}

func bodyKinds(b Body) []Kind {
	out := make([]Kind, len(b.Instructions))
	for i, ins := range b.Instructions {
		out[i] = ins.Kind()
	}
	return out
}

func TestSplitExampleDocument(t *testing.T) {
	doc := "# T\n\npara\n\n```demo\nA\n```\n\n```rust\nx\n```\n\n```demo\nB\n```\n"
	body, demos := split(t, doc, Options{})

	assert.Equal(t, []DemoEntry{{Index: 1, Source: "A", Line: 5}, {Index: 2, Source: "B", Line: 13}}, demos)
	assert.Equal(t, []Kind{KindHeading, KindParagraph, KindDemoRef, KindCodeBlock, KindDemoRef}, bodyKinds(body))
	assert.Equal(t, &DemoRef{Index: 1}, body.Instructions[2])
	assert.Equal(t, &CodeBlock{Lang: "rust", Text: "x"}, body.Instructions[3])
	assert.Equal(t, &DemoRef{Index: 2}, body.Instructions[4])
	assert.Equal(t, []int{1, 2}, body.DemoRefs())
}

func TestSplitNoDemos(t *testing.T) {
	body, demos := split(t, "# Only\n\ntext\n", Options{})
	assert.Empty(t, demos)
	assert.Empty(t, body.DemoRefs())
	assert.Len(t, body.Instructions, 2)
}

func TestSplitDuplicateSourcesKeepBothIndices(t *testing.T) {
	body, demos := split(t, "```demo\nsame\n```\n```demo\nsame\n```\n", Options{})
	require.Len(t, demos, 2)
	assert.Equal(t, 1, demos[0].Index)
	assert.Equal(t, 2, demos[1].Index)
	assert.Equal(t, demos[0].Source, demos[1].Source)
	assert.Equal(t, []int{1, 2}, body.DemoRefs())
}

func TestSplitOnlyExactTagIsDemo(t *testing.T) {
	for _, info := range []string{"demo extra", "Demo", "rust demo", "demos", ""} {
		t.Run(fmt.Sprintf("%q", info), func(t *testing.T) {
			body, demos := split(t, "```"+info+"\ncode\n```\n", Options{})
			assert.Empty(t, demos)
			require.Len(t, body.Instructions, 1)
			cb, ok := body.Instructions[0].(*CodeBlock)
			require.True(t, ok)
			assert.Equal(t, "code", cb.Text)
			assert.Equal(t, firstWord(info), cb.Lang)
		})
	}
}

func TestSplitCustomTag(t *testing.T) {
	_, demos := split(t, "```demo\na\n```\n```example\nb\n```\n", Options{DemoTag: "example"})
	require.Len(t, demos, 1)
	assert.Equal(t, "b", demos[0].Source)
}

func TestSplitRoundTripOrder(t *testing.T) {
	for k := 0; k <= 5; k++ {
		doc := "# Page\n\n"
		for i := 1; i <= k; i++ {
			doc += fmt.Sprintf("text %d\n\n```demo\nsrc%d\n```\n\n", i, i)
		}
		body, demos := split(t, doc, Options{})
		require.Len(t, demos, k)

		want := make([]int, 0, k)
		for i := 1; i <= k; i++ {
			want = append(want, i)
			assert.Equal(t, fmt.Sprintf("src%d", i), demos[i-1].Source)
		}
		if k == 0 {
			want = nil
		}
		assert.Equal(t, want, body.DemoRefs())

		var seen []string
		err := Replay(body, demos, func(ins Instruction, d *DemoEntry) error {
			if d != nil {
				seen = append(seen, d.Source)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, seen, k)
	}
}

func TestSplitIsIdempotent(t *testing.T) {
	doc := "# A\n\n- *x*\n- [y](z)\n\n```demo\nd1\n```\n\n---\n\n<div>raw</div>\n\n```demo\nd2\n```\n"
	blocks, err := markdown.ParseString(doc)
	require.NoError(t, err)
	b1, d1, err := SplitAndEmit(blocks, Options{})
	require.NoError(t, err)
	b2, d2, err := SplitAndEmit(blocks, Options{})
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Equal(t, d1, d2)
}

func TestSplitMapsInlines(t *testing.T) {
	body, _ := split(t, "## *a* **b** `c` [d](e)\n\n1. one\n2. two\n\n---\n\n<p>x</p>\n", Options{})
	require.Len(t, body.Instructions, 4)

	h := body.Instructions[0].(*Heading)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, []Instruction{
		&EmphasisNode{Children: []Instruction{&TextNode{Value: "a"}}},
		&TextNode{Value: " "},
		&StrongNode{Children: []Instruction{&TextNode{Value: "b"}}},
		&TextNode{Value: " "},
		&CodeNode{Value: "c"},
		&TextNode{Value: " "},
		&LinkNode{Target: "e", Children: []Instruction{&TextNode{Value: "d"}}},
	}, h.Children)

	l := body.Instructions[1].(*List)
	assert.True(t, l.Ordered)
	assert.Equal(t, 1, l.Start)
	assert.Equal(t, [][]Instruction{{&TextNode{Value: "one"}}, {&TextNode{Value: "two"}}}, l.Items)

	assert.Equal(t, &Divider{}, body.Instructions[2])
	assert.Equal(t, &RawContent{Text: "<p>x</p>"}, body.Instructions[3])
}

func TestSplitDemoSourceIsFatal(t *testing.T) {
	blocks, err := markdown.ParseString("# T\n\n```demo\nreturn nil\n```\n\n```demo\nx := \n```\n")
	require.NoError(t, err)
	bag := diag.NewBag(10)

	body, demos, err := SplitAndEmit(blocks, Options{Validator: demo.GoValidator{}, Reporter: diag.BagReporter{Bag: bag}})
	require.Error(t, err)
	assert.Nil(t, demos)
	assert.Empty(t, body.Instructions)

	var dse *DemoSourceError
	require.True(t, errors.As(err, &dse))
	assert.Equal(t, 2, dse.Index)
	assert.GreaterOrEqual(t, dse.Line, 7)

	var se *demo.SyntaxError
	assert.True(t, errors.As(err, &se))

	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.DemoSourceInvalid, bag.Items()[0].Code)
}

func TestSplitValidatorSeesIndices(t *testing.T) {
	var got []string
	v := demo.ValidatorFunc(func(i int, src string) error {
		got = append(got, fmt.Sprintf("%d:%s", i, src))
		return nil
	})
	_, _ = split(t, "```demo\na\n```\n```demo\nb\n```\n", Options{Validator: v})
	assert.Equal(t, []string{"1:a", "2:b"}, got)
}

func TestSplitValidatorErrorWithoutPosition(t *testing.T) {
	blocks, err := markdown.ParseString("text\n\n```demo\nbad\n```\n")
	require.NoError(t, err)
	boom := errors.New("rejected")
	_, _, err = SplitAndEmit(blocks, Options{Validator: demo.ValidatorFunc(func(int, string) error { return boom })})

	var dse *DemoSourceError
	require.True(t, errors.As(err, &dse))
	assert.Equal(t, 3, dse.Line)
	assert.ErrorIs(t, err, boom)
}

type strayBlock struct {
	markdown.Position
}

func (*strayBlock) Kind() markdown.BlockKind { return 99 }

func TestSplitUnknownBlockIsInternal(t *testing.T) {
	blocks := []markdown.Block{
		&markdown.Paragraph{Inlines: []markdown.Inline{&markdown.Text{Value: "ok"}}},
		&strayBlock{Position: markdown.Position{Line: 4}},
	}
	body, demos, err := SplitAndEmit(blocks, Options{})
	require.Error(t, err)
	assert.Nil(t, demos)
	assert.Empty(t, body.Instructions)

	var ie *InternalError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 4, ie.Line)
}

type strayInline struct{}

func (strayInline) InlineKind() markdown.InlineKind { return 99 }

func TestSplitUnknownInlineIsInternal(t *testing.T) {
	nested := &markdown.Strong{Children: []markdown.Inline{&markdown.Text{Value: "a"}, strayInline{}}}
	for _, b := range []markdown.Block{
		&markdown.Paragraph{Position: markdown.Position{Line: 2}, Inlines: []markdown.Inline{nested}},
		&markdown.List{Position: markdown.Position{Line: 2}, Items: [][]markdown.Inline{{strayInline{}}}},
	} {
		bag := diag.NewBag(4)
		body, demos, err := SplitAndEmit([]markdown.Block{b}, Options{Reporter: diag.BagReporter{Bag: bag}})
		assert.Empty(t, body.Instructions)
		assert.Nil(t, demos)

		var ie *InternalError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 2, ie.Line)
		assert.Contains(t, ie.Message, "strayInline")
		require.Equal(t, 1, bag.Len())
		assert.Equal(t, diag.InternalUnknownInline, bag.Items()[0].Code)
	}
}

func TestReplayDetectsMismatch(t *testing.T) {
	visit := func(Instruction, *DemoEntry) error { return nil }

	body := Body{Instructions: []Instruction{&DemoRef{Index: 1}, &DemoRef{Index: 2}}}
	err := Replay(body, []DemoEntry{{Index: 1, Source: "a"}}, visit)
	var ie *InternalError
	require.True(t, errors.As(err, &ie))

	err = Replay(Body{}, []DemoEntry{{Index: 1, Source: "a", Line: 3}}, visit)
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 3, ie.Line)

	body = Body{Instructions: []Instruction{&DemoRef{Index: 2}}}
	err = Replay(body, []DemoEntry{{Index: 1}}, visit)
	require.True(t, errors.As(err, &ie))
}

func TestReplayStopsOnVisitorError(t *testing.T) {
	stop := errors.New("stop")
	body := Body{Instructions: []Instruction{&Divider{}, &Divider{}}}
	calls := 0
	err := Replay(body, nil, func(Instruction, *DemoEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "demo_ref", KindDemoRef.String())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "unknown", Kind(200).String())
}
