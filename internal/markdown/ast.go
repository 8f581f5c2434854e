package markdown

import "demomark/internal/source"

// BlockKind tags the block variants produced by the parser.
type BlockKind uint8

const (
	BlockHeading BlockKind = iota + 1
	BlockParagraph
	BlockList
	BlockCodeFence
	BlockThematicBreak
	BlockRawHTML
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockList:
		return "list"
	case BlockCodeFence:
		return "code_fence"
	case BlockThematicBreak:
		return "thematic_break"
	case BlockRawHTML:
		return "raw_html"
	default:
		return "unknown"
	}
}

// Position locates a block in its document.
type Position struct {
	Span source.Span
	Line int // 1-based line of the first source line
}

// Pos returns the position itself; embedding Position gives every block the method.
func (p Position) Pos() Position { return p }

// Block is a top-level structural unit of a document. The set of
// implementations is closed over the types below; consumers switch on the
// concrete type.
type Block interface {
	Kind() BlockKind
	Pos() Position
}

// Heading is an ATX heading, Level in 1..6.
type Heading struct {
	Position
	Level   int
	Inlines []Inline
}

// Paragraph holds the merged text of consecutive non-blank lines.
type Paragraph struct {
	Position
	Inlines []Inline
}

// List is a run of items of one kind. Start is meaningful only when Ordered.
type List struct {
	Position
	Ordered bool
	Start   int
	Items   [][]Inline
}

// CodeFence is a fenced code block. Info is the trimmed info string of the
// opening fence, Body the raw lines between the fences joined by '\n'.
type CodeFence struct {
	Position
	Info  string
	Body  string
	Fence string // opening delimiter, e.g. "```" or "~~~~"
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Position
}

// RawHTML is a block of HTML passed through verbatim.
type RawHTML struct {
	Position
	Text string
}

func (*Heading) Kind() BlockKind       { return BlockHeading }
func (*Paragraph) Kind() BlockKind     { return BlockParagraph }
func (*List) Kind() BlockKind          { return BlockList }
func (*CodeFence) Kind() BlockKind     { return BlockCodeFence }
func (*ThematicBreak) Kind() BlockKind { return BlockThematicBreak }
func (*RawHTML) Kind() BlockKind       { return BlockRawHTML }

// InlineKind tags the inline span variants.
type InlineKind uint8

const (
	InlineText InlineKind = iota + 1
	InlineEmphasis
	InlineStrong
	InlineCode
	InlineLink
)

func (k InlineKind) String() string {
	switch k {
	case InlineText:
		return "text"
	case InlineEmphasis:
		return "emphasis"
	case InlineStrong:
		return "strong"
	case InlineCode:
		return "code"
	case InlineLink:
		return "link"
	default:
		return "unknown"
	}
}

// Inline is formatting or content within a block's text. Inline values form
// trees; children are never shared.
type Inline interface {
	InlineKind() InlineKind
}

type Text struct {
	Value string
}

type Emphasis struct {
	Children []Inline
}

type Strong struct {
	Children []Inline
}

type CodeSpan struct {
	Value string
}

type Link struct {
	Label  []Inline
	Target string
}

func (*Text) InlineKind() InlineKind     { return InlineText }
func (*Emphasis) InlineKind() InlineKind { return InlineEmphasis }
func (*Strong) InlineKind() InlineKind   { return InlineStrong }
func (*CodeSpan) InlineKind() InlineKind { return InlineCode }
func (*Link) InlineKind() InlineKind     { return InlineLink }

// PlainText flattens inlines into their visible text.
func PlainText(inlines []Inline) string {
	var buf []byte
	var walk func([]Inline)
	walk = func(nodes []Inline) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *Text:
				buf = append(buf, n.Value...)
			case *CodeSpan:
				buf = append(buf, n.Value...)
			case *Emphasis:
				walk(n.Children)
			case *Strong:
				walk(n.Children)
			case *Link:
				walk(n.Label)
			}
		}
	}
	walk(inlines)
	return string(buf)
}
