// Package html renders a static preview of a page. Demos are shown as their
// source inside a slot marked with the demo index.
package html

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark/util"

	"demomark/internal/backend"
	"demomark/internal/emit"
)

const Name = "html"

func init() {
	backend.Register(Name, func(backend.Options) backend.Backend { return Renderer{} })
}

type Renderer struct{}

func (Renderer) Name() string { return Name }
func (Renderer) Ext() string  { return ".html" }

func (Renderer) Generate(page backend.Page) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.Write(util.EscapeHTML([]byte(page.Title())))
	buf.WriteString("</title>\n")
	if desc := page.Meta["description"]; desc != "" {
		buf.WriteString(`<meta name="description" content="`)
		buf.Write(util.EscapeHTML([]byte(desc)))
		buf.WriteString("\">\n")
	}
	buf.WriteString("</head>\n<body>\n<div class=\"demo-components__component\">\n")

	err := emit.Replay(page.Body, page.Demos, func(ins emit.Instruction, d *emit.DemoEntry) error {
		if d != nil {
			fmt.Fprintf(&buf, "<div class=\"demo\" data-demo=\"%d\"><pre><code>", d.Index)
			buf.Write(util.EscapeHTML([]byte(d.Source)))
			buf.WriteString("</code></pre></div>\n")
			return nil
		}
		block(&buf, ins)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}

	buf.WriteString("</div>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

func block(buf *bytes.Buffer, ins emit.Instruction) {
	switch ins := ins.(type) {
	case *emit.Heading:
		tag := "h" + strconv.Itoa(ins.Level)
		buf.WriteString("<" + tag + ">")
		inlines(buf, ins.Children)
		buf.WriteString("</" + tag + ">\n")
	case *emit.Paragraph:
		buf.WriteString("<p>")
		inlines(buf, ins.Children)
		buf.WriteString("</p>\n")
	case *emit.List:
		switch {
		case !ins.Ordered:
			buf.WriteString("<ul>\n")
		case ins.Start != 1:
			fmt.Fprintf(buf, "<ol start=\"%d\">\n", ins.Start)
		default:
			buf.WriteString("<ol>\n")
		}
		for _, item := range ins.Items {
			buf.WriteString("<li>")
			inlines(buf, item)
			buf.WriteString("</li>\n")
		}
		if ins.Ordered {
			buf.WriteString("</ol>\n")
		} else {
			buf.WriteString("</ul>\n")
		}
	case *emit.CodeBlock:
		buf.WriteString("<pre><code")
		if ins.Lang != "" {
			buf.WriteString(` class="language-`)
			buf.Write(util.EscapeHTML([]byte(ins.Lang)))
			buf.WriteString(`"`)
		}
		buf.WriteString(">")
		buf.Write(util.EscapeHTML([]byte(ins.Text)))
		buf.WriteString("</code></pre>\n")
	case *emit.Divider:
		buf.WriteString("<hr>\n")
	case *emit.RawContent:
		buf.WriteString(ins.Text)
		buf.WriteString("\n")
	}
}

func inlines(buf *bytes.Buffer, nodes []emit.Instruction) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *emit.TextNode:
			buf.Write(util.EscapeHTML([]byte(n.Value)))
		case *emit.EmphasisNode:
			buf.WriteString("<em>")
			inlines(buf, n.Children)
			buf.WriteString("</em>")
		case *emit.StrongNode:
			buf.WriteString("<strong>")
			inlines(buf, n.Children)
			buf.WriteString("</strong>")
		case *emit.CodeNode:
			buf.WriteString("<code>")
			buf.Write(util.EscapeHTML([]byte(n.Value)))
			buf.WriteString("</code>")
		case *emit.LinkNode:
			buf.WriteString(`<a href="`)
			buf.Write(util.EscapeHTML(util.URLEscape([]byte(n.Target), false)))
			buf.WriteString(`">`)
			inlines(buf, n.Children)
			buf.WriteString("</a>")
		}
	}
}
