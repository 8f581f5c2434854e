package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type inlineError struct {
	off int // offset in the merged block text
	msg string
}

type pieceKind uint8

const (
	pieceText pieceKind = iota
	pieceNode
	pieceDelim
)

// piece is an intermediate inline: literal text, a finished node, or a run of
// '*' / '_' that may still become emphasis.
type piece struct {
	kind     pieceKind
	text     string
	node     Inline
	ch       byte
	count    int
	canOpen  bool
	canClose bool
}

type inlineParser struct {
	src     string
	base    int // offset of src inside the merged block text
	pos     int
	pieces  []piece
	pending strings.Builder
}

func parseInlines(src string) ([]Inline, *inlineError) {
	return parseInlinesAt(src, 0)
}

func parseInlinesAt(src string, base int) ([]Inline, *inlineError) {
	p := &inlineParser{src: src, base: base}
	if err := p.scan(); err != nil {
		return nil, err
	}
	p.flushText()
	return flatten(processEmphasis(p.pieces)), nil
}

func (p *inlineParser) errorf(off int, msg string) *inlineError {
	return &inlineError{off: p.base + off, msg: msg}
}

func (p *inlineParser) flushText() {
	if p.pending.Len() == 0 {
		return
	}
	p.pieces = append(p.pieces, piece{kind: pieceText, text: p.pending.String()})
	p.pending.Reset()
}

func (p *inlineParser) push(n Inline) {
	p.flushText()
	p.pieces = append(p.pieces, piece{kind: pieceNode, node: n})
}

func (p *inlineParser) scan() *inlineError {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '\\':
			p.scanEscape()
		case '`':
			p.scanCodeSpan()
		case '*', '_':
			p.scanDelimRun()
		case '[':
			if err := p.scanLink(); err != nil {
				return err
			}
		case ']':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '(' {
				return p.errorf(p.pos, "link text closed by ']' has no opening '['")
			}
			p.pending.WriteByte(c)
			p.pos++
		default:
			j := p.pos + 1
			for j < len(p.src) && !isInlineSpecial(p.src[j]) {
				j++
			}
			p.pending.WriteString(p.src[p.pos:j])
			p.pos = j
		}
	}
	return nil
}

func (p *inlineParser) scanEscape() {
	if p.pos+1 < len(p.src) && isASCIIPunct(p.src[p.pos+1]) {
		p.pending.WriteByte(p.src[p.pos+1])
		p.pos += 2
		return
	}
	p.pending.WriteByte('\\')
	p.pos++
}

// scanCodeSpan matches a backtick run with the next run of the same length.
// An unmatched run stays literal.
func (p *inlineParser) scanCodeSpan() {
	n := runLen(p.src, p.pos, '`')
	end := closingBackticks(p.src, p.pos+n, n)
	if end < 0 {
		p.pending.WriteString(p.src[p.pos : p.pos+n])
		p.pos += n
		return
	}
	p.push(&CodeSpan{Value: normalizeCodeSpan(p.src[p.pos+n : end])})
	p.pos = end + n
}

// closingBackticks returns the start of the first run of exactly n backticks
// at or after from, or -1.
func closingBackticks(s string, from, n int) int {
	for j := from; j < len(s); {
		k := strings.IndexByte(s[j:], '`')
		if k < 0 {
			return -1
		}
		k += j
		m := runLen(s, k, '`')
		if m == n {
			return k
		}
		j = k + m
	}
	return -1
}

func normalizeCodeSpan(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func (p *inlineParser) scanDelimRun() {
	c := p.src[p.pos]
	n := runLen(p.src, p.pos, c)

	before, after := ' ', ' '
	if p.pos > 0 {
		before, _ = utf8.DecodeLastRuneInString(p.src[:p.pos])
	}
	if p.pos+n < len(p.src) {
		after, _ = utf8.DecodeRuneInString(p.src[p.pos+n:])
	}
	left := !unicode.IsSpace(after) && (!isPunctRune(after) || unicode.IsSpace(before) || isPunctRune(before))
	right := !unicode.IsSpace(before) && (!isPunctRune(before) || unicode.IsSpace(after) || isPunctRune(after))

	canOpen, canClose := left, right
	if c == '_' {
		// no intraword emphasis with underscores
		canOpen = left && (!right || isPunctRune(before))
		canClose = right && (!left || isPunctRune(after))
	}

	p.flushText()
	p.pieces = append(p.pieces, piece{kind: pieceDelim, ch: c, count: n, canOpen: canOpen, canClose: canClose})
	p.pos += n
}

// scanLink handles '[' at p.pos. Only "[label](" commits to a link; after
// that an unclosed destination is an error. Anything else is literal text.
func (p *inlineParser) scanLink() *inlineError {
	open := p.pos
	closeIdx := matchBracket(p.src, open)
	if closeIdx < 0 || closeIdx+1 >= len(p.src) || p.src[closeIdx+1] != '(' {
		p.pending.WriteByte('[')
		p.pos++
		return nil
	}

	paren := closeIdx + 1
	destEnd := matchParen(p.src, paren)
	if destEnd < 0 {
		return p.errorf(paren, "link destination opened with '(' is never closed")
	}
	target, ok := parseDestination(p.src[paren+1 : destEnd])
	if !ok {
		return p.errorf(paren, "malformed link destination")
	}

	label, err := parseInlinesAt(p.src[open+1:closeIdx], p.base+open+1)
	if err != nil {
		return err
	}
	p.push(&Link{Label: label, Target: target})
	p.pos = destEnd + 1
	return nil
}

// matchBracket returns the index of the ']' closing the '[' at open, skipping
// escapes and code spans, or -1.
func matchBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '`':
			n := runLen(s, i, '`')
			if end := closingBackticks(s, i+n, n); end >= 0 {
				i = end + n - 1
			} else {
				i += n - 1
			}
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchParen returns the index of the ')' closing the '(' at open, or -1.
// A destination written as <...> may contain unbalanced parentheses.
func matchParen(s string, open int) int {
	i := open + 1
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	if i < len(s) && s[i] == '<' {
		end := strings.IndexAny(s[i:], ">\n")
		if end < 0 || s[i+end] != '>' {
			return -1
		}
		i += end + 1
	}
	depth := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseDestination splits "target [title]" and drops the title.
func parseDestination(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	var target, rest string
	if s[0] == '<' {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return "", false
		}
		target, rest = s[1:end], strings.TrimSpace(s[end+1:])
	} else {
		end := strings.IndexAny(s, " \t\n")
		if end < 0 {
			end = len(s)
		}
		target, rest = s[:end], strings.TrimSpace(s[end:])
	}
	if rest != "" && !isLinkTitle(rest) {
		return "", false
	}
	return unescape(target), true
}

func isLinkTitle(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case '"', '\'':
		return s[len(s)-1] == s[0]
	case '(':
		return s[len(s)-1] == ')'
	}
	return false
}

func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// processEmphasis pairs delimiter runs from left to right: each closer takes
// the nearest compatible opener. Runs left over become literal text.
func processEmphasis(ps []piece) []piece {
	for c := 0; c < len(ps); c++ {
		if ps[c].kind != pieceDelim || !ps[c].canClose {
			continue
		}
		for ps[c].count > 0 {
			o := findOpener(ps, c)
			if o < 0 {
				break
			}
			use := 1
			if ps[o].count >= 2 && ps[c].count >= 2 {
				use = 2
			}
			children := flatten(ps[o+1 : c])
			var node Inline = &Emphasis{Children: children}
			if use == 2 {
				node = &Strong{Children: children}
			}
			ps[o].count -= use
			ps[c].count -= use

			rest := make([]piece, 0, len(ps)-c+1)
			rest = append(rest, piece{kind: pieceNode, node: node})
			rest = append(rest, ps[c:]...)
			ps = append(ps[:o+1], rest...)
			c = o + 2
		}
	}
	return ps
}

func findOpener(ps []piece, closer int) int {
	ch := ps[closer].ch
	for o := closer - 1; o >= 0; o-- {
		if ps[o].kind == pieceDelim && ps[o].ch == ch && ps[o].canOpen && ps[o].count > 0 {
			return o
		}
	}
	return -1
}

// flatten turns pieces into inline nodes, merging adjacent text.
func flatten(ps []piece) []Inline {
	out := make([]Inline, 0, len(ps))
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out = append(out, &Text{Value: text.String()})
			text.Reset()
		}
	}
	for _, pc := range ps {
		switch pc.kind {
		case pieceText:
			text.WriteString(pc.text)
		case pieceDelim:
			text.WriteString(strings.Repeat(string(pc.ch), pc.count))
		case pieceNode:
			flush()
			out = append(out, pc.node)
		}
	}
	flush()
	return out
}

func isInlineSpecial(c byte) bool {
	switch c {
	case '\\', '`', '*', '_', '[', ']':
		return true
	}
	return false
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
