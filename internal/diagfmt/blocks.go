package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"demomark/internal/markdown"
)

// BlockNodeOutput is the JSON shape of a block or an inline node.
type BlockNodeOutput struct {
	Type     string            `json:"type"`
	Line     int               `json:"line,omitempty"`
	Text     string            `json:"text,omitempty"`
	Fields   map[string]any    `json:"fields,omitempty"`
	Children []BlockNodeOutput `json:"children,omitempty"`
}

type treeNode struct {
	label    string
	children []*treeNode
}

// FormatBlocksPretty печатает блоки документа деревом:
//
//	Document (3 blocks)
//	├─ [1] heading level=1 (line 1)
//	│  └─ text "Title"
//	...
func FormatBlocksPretty(w io.Writer, path string, blocks []markdown.Block) error {
	root := &treeNode{label: fmt.Sprintf("%s (%d blocks)", path, len(blocks))}
	for i, b := range blocks {
		root.children = append(root.children, blockTree(i+1, b))
	}
	var sb strings.Builder
	sb.WriteString(root.label)
	sb.WriteByte('\n')
	writeTree(&sb, root.children, "")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, nodes []*treeNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		sb.WriteString(prefix + branch + n.label + "\n")
		writeTree(sb, n.children, prefix+next)
	}
}

func blockTree(idx int, b markdown.Block) *treeNode {
	pos := b.Pos()
	node := &treeNode{}
	switch b := b.(type) {
	case *markdown.Heading:
		node.label = fmt.Sprintf("heading level=%d", b.Level)
		node.children = inlineTrees(b.Inlines)
	case *markdown.Paragraph:
		node.label = "paragraph"
		node.children = inlineTrees(b.Inlines)
	case *markdown.List:
		node.label = "list"
		if b.Ordered {
			node.label = fmt.Sprintf("list ordered start=%d", b.Start)
		}
		for i, item := range b.Items {
			node.children = append(node.children, &treeNode{
				label:    fmt.Sprintf("item[%d]", i+1),
				children: inlineTrees(item),
			})
		}
	case *markdown.CodeFence:
		node.label = fmt.Sprintf("code_fence info=%q", b.Info)
		node.children = textLines(b.Body)
	case *markdown.ThematicBreak:
		node.label = "thematic_break"
	case *markdown.RawHTML:
		node.label = "raw_html"
		node.children = textLines(b.Text)
	default:
		node.label = b.Kind().String()
	}
	node.label = fmt.Sprintf("[%d] %s (line %d)", idx, node.label, pos.Line)
	return node
}

func textLines(s string) []*treeNode {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]*treeNode, len(lines))
	for i, l := range lines {
		out[i] = &treeNode{label: strconv.Quote(l)}
	}
	return out
}

func inlineTrees(nodes []markdown.Inline) []*treeNode {
	out := make([]*treeNode, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *markdown.Text:
			out = append(out, &treeNode{label: "text " + strconv.Quote(n.Value)})
		case *markdown.CodeSpan:
			out = append(out, &treeNode{label: "code " + strconv.Quote(n.Value)})
		case *markdown.Emphasis:
			out = append(out, &treeNode{label: "emphasis", children: inlineTrees(n.Children)})
		case *markdown.Strong:
			out = append(out, &treeNode{label: "strong", children: inlineTrees(n.Children)})
		case *markdown.Link:
			out = append(out, &treeNode{label: "link " + strconv.Quote(n.Target), children: inlineTrees(n.Label)})
		}
	}
	return out
}

// FormatBlocksJSON writes blocks as an indented JSON array.
func FormatBlocksJSON(w io.Writer, blocks []markdown.Block) error {
	out := make([]BlockNodeOutput, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockJSON(b))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func blockJSON(b markdown.Block) BlockNodeOutput {
	node := BlockNodeOutput{Type: b.Kind().String(), Line: b.Pos().Line}
	switch b := b.(type) {
	case *markdown.Heading:
		node.Fields = map[string]any{"level": b.Level}
		node.Children = inlinesJSON(b.Inlines)
	case *markdown.Paragraph:
		node.Children = inlinesJSON(b.Inlines)
	case *markdown.List:
		node.Fields = map[string]any{"ordered": b.Ordered}
		if b.Ordered {
			node.Fields["start"] = b.Start
		}
		for _, item := range b.Items {
			node.Children = append(node.Children, BlockNodeOutput{Type: "item", Children: inlinesJSON(item)})
		}
	case *markdown.CodeFence:
		node.Fields = map[string]any{"info": b.Info, "fence": b.Fence}
		node.Text = b.Body
	case *markdown.RawHTML:
		node.Text = b.Text
	}
	return node
}

func inlinesJSON(nodes []markdown.Inline) []BlockNodeOutput {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]BlockNodeOutput, 0, len(nodes))
	for _, n := range nodes {
		node := BlockNodeOutput{Type: n.InlineKind().String()}
		switch n := n.(type) {
		case *markdown.Text:
			node.Text = n.Value
		case *markdown.CodeSpan:
			node.Text = n.Value
		case *markdown.Emphasis:
			node.Children = inlinesJSON(n.Children)
		case *markdown.Strong:
			node.Children = inlinesJSON(n.Children)
		case *markdown.Link:
			node.Fields = map[string]any{"target": n.Target}
			node.Children = inlinesJSON(n.Label)
		}
		out = append(out, node)
	}
	return out
}
