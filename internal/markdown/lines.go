package markdown

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"demomark/internal/source"
)

// line is one physical source line without its terminating '\n'.
type line struct {
	text  string
	start uint32 // byte offset of text[0] in the file
	num   int    // 1-based
}

func (l line) end() uint32 {
	n, err := safecast.Conv[uint32](len(l.text))
	if err != nil {
		panic(fmt.Errorf("line length overflow: %w", err))
	}
	return l.start + n
}

func (l line) blank() bool {
	return strings.TrimSpace(l.text) == ""
}

// splitLines cuts the file into lines. A trailing newline does not produce
// an extra empty line.
func splitLines(f *source.File) []line {
	content := string(f.Content)
	lines := make([]line, 0, len(f.Lines))
	var off uint32
	num := 1
	for len(content) > 0 {
		i := strings.IndexByte(content, '\n')
		text := content
		if i >= 0 {
			text = content[:i]
		}
		lines = append(lines, line{text: text, start: off, num: num})
		if i < 0 {
			break
		}
		step, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line length overflow: %w", err))
		}
		off += step
		content = content[i+1:]
		num++
	}
	return lines
}

// indentOf returns the indentation width in columns and in bytes.
// A tab advances to the next multiple of 4.
func indentOf(s string) (cols, n int) {
	for n < len(s) {
		switch s[n] {
		case ' ':
			cols++
		case '\t':
			cols += 4 - cols%4
		default:
			return cols, n
		}
		n++
	}
	return cols, n
}

// stripIndent removes up to max columns of leading whitespace.
func stripIndent(s string, max int) string {
	if max <= 0 {
		return s
	}
	cols := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			cols++
		case '\t':
			cols += 4 - cols%4
		default:
			return s[i:]
		}
		if cols >= max {
			return s[i+1:]
		}
	}
	return ""
}

// segment maps a piece of merged block text back to the source.
type segment struct {
	mergedOff int    // offset of the piece inside the merged text
	srcOff    uint32 // offset of the same byte in the file
	line      int
}

// textBuilder merges the text-bearing lines of one block and remembers where
// each piece came from, so inline errors point at the right line and column.
type textBuilder struct {
	buf  strings.Builder
	segs []segment
}

func (b *textBuilder) add(text string, srcOff uint32, lineNum int) {
	if b.buf.Len() > 0 {
		b.buf.WriteByte('\n')
	}
	b.segs = append(b.segs, segment{mergedOff: b.buf.Len(), srcOff: srcOff, line: lineNum})
	b.buf.WriteString(text)
}

// addLine adds l with leading and trailing whitespace trimmed.
func (b *textBuilder) addLine(l line) {
	trimmed := strings.TrimLeft(l.text, " \t")
	skipped, err := safecast.Conv[uint32](len(l.text) - len(trimmed))
	if err != nil {
		panic(fmt.Errorf("indent overflow: %w", err))
	}
	b.add(strings.TrimRight(trimmed, " \t"), l.start+skipped, l.num)
}

func (b *textBuilder) text() string {
	return b.buf.String()
}

// locate translates an offset in the merged text into a file offset.
func (b *textBuilder) locate(off int) uint32 {
	if len(b.segs) == 0 {
		return 0
	}
	seg := b.segs[0]
	for _, s := range b.segs[1:] {
		if s.mergedOff > off {
			break
		}
		seg = s
	}
	delta, err := safecast.Conv[uint32](off - seg.mergedOff)
	if err != nil {
		delta = 0
	}
	return seg.srcOff + delta
}
