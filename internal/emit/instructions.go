package emit

// Kind tags instruction variants.
type Kind uint8

const (
	KindHeading Kind = iota + 1
	KindParagraph
	KindList
	KindCodeBlock
	KindDivider
	KindRawContent
	KindDemoRef
	KindText
	KindEmphasis
	KindStrong
	KindCode
	KindLink
)

var kindNames = [...]string{
	KindHeading:    "heading",
	KindParagraph:  "paragraph",
	KindList:       "list",
	KindCodeBlock:  "code_block",
	KindDivider:    "divider",
	KindRawContent: "raw",
	KindDemoRef:    "demo_ref",
	KindText:       "text",
	KindEmphasis:   "emphasis",
	KindStrong:     "strong",
	KindCode:       "code",
	KindLink:       "link",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Instruction is one step of building the rendered page. Block-level
// instructions appear at the top of a Body; inline ones only as children.
type Instruction interface {
	Kind() Kind
}

type Heading struct {
	Level    int
	Children []Instruction
}

type Paragraph struct {
	Children []Instruction
}

type List struct {
	Ordered bool
	Start   int
	Items   [][]Instruction
}

// CodeBlock is a fenced code sample shown verbatim. Lang is the first word
// of the fence info string.
type CodeBlock struct {
	Lang string
	Text string
}

type Divider struct{}

type RawContent struct {
	Text string
}

// DemoRef marks where demo Index renders inside the body.
type DemoRef struct {
	Index int
}

type TextNode struct {
	Value string
}

type EmphasisNode struct {
	Children []Instruction
}

type StrongNode struct {
	Children []Instruction
}

type CodeNode struct {
	Value string
}

type LinkNode struct {
	Target   string
	Children []Instruction
}

func (*Heading) Kind() Kind      { return KindHeading }
func (*Paragraph) Kind() Kind    { return KindParagraph }
func (*List) Kind() Kind         { return KindList }
func (*CodeBlock) Kind() Kind    { return KindCodeBlock }
func (*Divider) Kind() Kind      { return KindDivider }
func (*RawContent) Kind() Kind   { return KindRawContent }
func (*DemoRef) Kind() Kind      { return KindDemoRef }
func (*TextNode) Kind() Kind     { return KindText }
func (*EmphasisNode) Kind() Kind { return KindEmphasis }
func (*StrongNode) Kind() Kind   { return KindStrong }
func (*CodeNode) Kind() Kind     { return KindCode }
func (*LinkNode) Kind() Kind     { return KindLink }

// Body is the demo-free part of a document, in document order.
type Body struct {
	Instructions []Instruction
}

// DemoRefs returns the demo indices referenced by the body, in order.
func (b Body) DemoRefs() []int {
	var refs []int
	for _, ins := range b.Instructions {
		if ref, ok := ins.(*DemoRef); ok {
			refs = append(refs, ref.Index)
		}
	}
	return refs
}

// DemoEntry is one extracted demo. Index is 1-based and follows document
// order; Line is the line of the opening fence.
type DemoEntry struct {
	Index  int
	Source string
	Line   int
}
