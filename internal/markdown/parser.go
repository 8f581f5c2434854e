package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"

	"demomark/internal/diag"
	"demomark/internal/source"
)

// Options configures a parse.
type Options struct {
	// Reporter receives the diagnostic that aborts the parse, in addition to
	// the returned error. May be nil.
	Reporter diag.Reporter
}

type parser struct {
	file   *source.File
	lines  []line
	i      int
	rep    *diag.FirstErrorReporter
	blocks []Block
}

// Parse turns a document into its block sequence. Parsing stops at the first
// structural error; no partial block list is returned.
func Parse(file *source.File, opts Options) ([]Block, error) {
	p := &parser{
		file:  file,
		lines: splitLines(file),
		rep:   &diag.FirstErrorReporter{Next: opts.Reporter},
	}
	for p.i < len(p.lines) && !p.rep.Failed() {
		p.parseBlock()
	}
	if d, failed := p.rep.First(); failed {
		return nil, newParseError(file, d)
	}
	return p.blocks, nil
}

// ParseString parses text as an in-memory document.
func ParseString(text string) ([]Block, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<input>", []byte(text))
	return Parse(fs.Get(id), Options{})
}

func (p *parser) parseBlock() {
	l := p.lines[p.i]
	if l.blank() {
		p.i++
		return
	}
	if open, ok := fenceOpen(l.text); ok {
		p.parseFence(open)
		return
	}
	if h, ok := atxHeading(l.text); ok {
		p.parseHeading(l, h)
		return
	}
	if isThematicBreak(l.text) {
		p.blocks = append(p.blocks, &ThematicBreak{Position: p.position(l, l)})
		p.i++
		return
	}
	if m, ok := listMarker(l.text); ok {
		p.parseList(m)
		return
	}
	if kind := htmlStart(l.text); kind != htmlNone {
		p.parseRawHTML(kind)
		return
	}
	p.parseParagraph()
}

func (p *parser) position(first, last line) Position {
	return Position{
		Span: source.Span{File: p.file.ID, Start: first.start, End: last.end()},
		Line: first.num,
	}
}

// interrupts reports whether l starts a block that ends a running paragraph
// or list item. Raw HTML does not interrupt.
func (p *parser) interrupts(l line) bool {
	if _, ok := fenceOpen(l.text); ok {
		return true
	}
	if _, ok := atxHeading(l.text); ok {
		return true
	}
	if isThematicBreak(l.text) {
		return true
	}
	_, ok := listMarker(l.text)
	return ok
}

// inlines resolves inline spans in the merged text of one block.
func (p *parser) inlines(tb *textBuilder) []Inline {
	nodes, ierr := parseInlines(tb.text())
	if ierr != nil {
		off := tb.locate(ierr.off)
		span := source.Span{File: p.file.ID, Start: off, End: off + 1}
		diag.Emit(p.rep, diag.NewError(diag.MdMalformedLink, span, ierr.msg))
		return nil
	}
	return nodes
}

// ---- fenced code ----

type fence struct {
	ch     byte
	n      int
	indent int
	info   string
	delim  string
}

func fenceOpen(s string) (fence, bool) {
	cols, nb := indentOf(s)
	if cols > 3 {
		return fence{}, false
	}
	rest := s[nb:]
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return fence{}, false
	}
	ch := rest[0]
	n := runLen(rest, 0, ch)
	if n < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(rest[n:])
	if ch == '`' && strings.IndexByte(info, '`') >= 0 {
		return fence{}, false
	}
	return fence{ch: ch, n: n, indent: cols, info: info, delim: rest[:n]}, true
}

func (f fence) closedBy(s string) bool {
	cols, nb := indentOf(s)
	if cols > 3 {
		return false
	}
	rest := s[nb:]
	n := runLen(rest, 0, f.ch)
	if n < f.n {
		return false
	}
	return strings.TrimSpace(rest[n:]) == ""
}

func (p *parser) parseFence(open fence) {
	first := p.lines[p.i]
	body := make([]string, 0, 8)
	for j := p.i + 1; j < len(p.lines); j++ {
		l := p.lines[j]
		if open.closedBy(l.text) {
			p.blocks = append(p.blocks, &CodeFence{
				Position: p.position(first, l),
				Info:     open.info,
				Body:     strings.Join(body, "\n"),
				Fence:    open.delim,
			})
			p.i = j + 1
			return
		}
		body = append(body, stripIndent(l.text, open.indent))
	}

	span := source.Span{File: p.file.ID, Start: first.start, End: first.end()}
	msg := fmt.Sprintf("code fence %q opened on line %d is never closed", open.delim, first.num)
	diag.Emit(p.rep, diag.NewError(diag.MdUnterminatedFence, span, msg).
		WithNote(span, fmt.Sprintf("close it with a line of at least %d %q characters", open.n, open.ch)))
	p.i = len(p.lines)
}

// ---- headings / breaks ----

type heading struct {
	level      int
	content    string
	contentOff int // byte offset of content inside the line
}

func atxHeading(s string) (heading, bool) {
	cols, nb := indentOf(s)
	if cols > 3 {
		return heading{}, false
	}
	rest := s[nb:]
	level := runLen(rest, 0, '#')
	if level == 0 || level > 6 {
		return heading{}, false
	}
	if level < len(rest) && rest[level] != ' ' && rest[level] != '\t' {
		return heading{}, false
	}
	after := rest[level:]
	content := strings.TrimLeft(after, " \t")
	off := nb + level + len(after) - len(content)
	content = strings.TrimRight(content, " \t")

	// optional closing sequence: "## Title ##"
	if trimmed := strings.TrimRight(content, "#"); trimmed == "" {
		content = ""
	} else if len(trimmed) < len(content) && (strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t")) {
		content = strings.TrimRight(trimmed, " \t")
	}
	return heading{level: level, content: content, contentOff: off}, true
}

func (p *parser) parseHeading(l line, h heading) {
	var inlines []Inline
	if h.content != "" {
		var tb textBuilder
		tb.add(h.content, l.start+uint32(h.contentOff), l.num) // #nosec G115 -- offset bounded by line length
		inlines = p.inlines(&tb)
		if p.rep.Failed() {
			return
		}
	}
	p.blocks = append(p.blocks, &Heading{Position: p.position(l, l), Level: h.level, Inlines: inlines})
	p.i++
}

func isThematicBreak(s string) bool {
	cols, nb := indentOf(s)
	if cols > 3 {
		return false
	}
	var ch byte
	n := 0
	for i := nb; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t':
		case '-', '*', '_':
			if ch == 0 {
				ch = c
			} else if c != ch {
				return false
			}
			n++
		default:
			return false
		}
	}
	return n >= 3
}

// ---- lists ----

type listItemStart struct {
	ordered    bool
	marker     byte // bullet char, or '.' / ')' for ordered lists
	number     int
	contentOff int
}

func (m listItemStart) sameKind(o listItemStart) bool {
	return m.ordered == o.ordered && m.marker == o.marker
}

func listMarker(s string) (listItemStart, bool) {
	cols, nb := indentOf(s)
	if cols > 3 || nb == len(s) {
		return listItemStart{}, false
	}
	rest := s[nb:]
	var m listItemStart
	width := 0
	switch c := rest[0]; {
	case c == '-' || c == '*' || c == '+':
		m.marker = c
		width = 1
	case isDigit(c):
		d := 0
		for d < len(rest) && isDigit(rest[d]) {
			d++
		}
		if d > 9 || d == len(rest) || (rest[d] != '.' && rest[d] != ')') {
			return listItemStart{}, false
		}
		n, err := strconv.Atoi(rest[:d])
		if err != nil {
			return listItemStart{}, false
		}
		m.ordered = true
		m.number = n
		m.marker = rest[d]
		width = d + 1
	default:
		return listItemStart{}, false
	}
	after := rest[width:]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return listItemStart{}, false
	}
	content := strings.TrimLeft(after, " \t")
	m.contentOff = nb + width + len(after) - len(content)
	return m, true
}

// continuesList reports whether l is a further item of the list started by first.
func continuesList(l line, first listItemStart) bool {
	if isThematicBreak(l.text) {
		return false
	}
	m, ok := listMarker(l.text)
	return ok && m.sameKind(first)
}

func (p *parser) parseList(first listItemStart) {
	startLine := p.lines[p.i]
	last := startLine
	list := &List{Ordered: first.ordered, Start: first.number}

	for p.i < len(p.lines) && continuesList(p.lines[p.i], first) {
		l := p.lines[p.i]
		m, _ := listMarker(l.text)

		var tb textBuilder
		tb.add(strings.TrimRight(l.text[m.contentOff:], " \t"), l.start+uint32(m.contentOff), l.num) // #nosec G115 -- offset bounded by line length
		last = l
		p.i++
		for p.i < len(p.lines) {
			next := p.lines[p.i]
			if next.blank() || p.interrupts(next) {
				break
			}
			tb.addLine(next)
			last = next
			p.i++
		}

		item := p.inlines(&tb)
		if p.rep.Failed() {
			return
		}
		list.Items = append(list.Items, item)

		// blank lines between items keep the list open
		j := p.i
		for j < len(p.lines) && p.lines[j].blank() {
			j++
		}
		if j > p.i {
			if j < len(p.lines) && continuesList(p.lines[j], first) {
				p.i = j
				continue
			}
			break
		}
	}

	list.Position = p.position(startLine, last)
	p.blocks = append(p.blocks, list)
}

// ---- raw HTML ----

type htmlKind uint8

const (
	htmlNone htmlKind = iota
	htmlComment
	htmlBlock
)

func htmlStart(s string) htmlKind {
	cols, nb := indentOf(s)
	if cols > 3 {
		return htmlNone
	}
	rest := s[nb:]
	if strings.HasPrefix(rest, "<!--") {
		return htmlComment
	}
	if !strings.HasPrefix(rest, "<") {
		return htmlNone
	}
	name := strings.TrimPrefix(rest[1:], "/")
	n := 0
	for n < len(name) && (isDigit(name[n]) || isLetter(name[n])) {
		n++
	}
	if n == 0 {
		return htmlNone
	}
	if n < len(name) {
		switch name[n] {
		case ' ', '\t', '>', '/':
		default:
			return htmlNone
		}
	}
	if atom.Lookup([]byte(strings.ToLower(name[:n]))) == 0 {
		return htmlNone
	}
	return htmlBlock
}

func (p *parser) parseRawHTML(kind htmlKind) {
	first := p.lines[p.i]
	last := first
	text := make([]string, 0, 4)
	for p.i < len(p.lines) {
		l := p.lines[p.i]
		if kind == htmlBlock && l.blank() {
			break
		}
		text = append(text, l.text)
		last = l
		p.i++
		if kind == htmlComment && strings.Contains(l.text, "-->") {
			break
		}
	}
	p.blocks = append(p.blocks, &RawHTML{Position: p.position(first, last), Text: strings.Join(text, "\n")})
}

// ---- paragraphs ----

func (p *parser) parseParagraph() {
	first := p.lines[p.i]
	last := first
	var tb textBuilder
	tb.addLine(first)
	p.i++
	for p.i < len(p.lines) {
		l := p.lines[p.i]
		if l.blank() || p.interrupts(l) {
			break
		}
		tb.addLine(l)
		last = l
		p.i++
	}
	inlines := p.inlines(&tb)
	if p.rep.Failed() {
		return
	}
	p.blocks = append(p.blocks, &Paragraph{Position: p.position(first, last), Inlines: inlines})
}

func runLen(s string, i int, ch byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == ch {
		n++
	}
	return n
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
