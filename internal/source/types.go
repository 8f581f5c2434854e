package source

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a loaded document.
	FileFlags uint8
)

const (
	// FileVirtual marks a document added from memory (stdin, tests, cache).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one normalized markdown document.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   []uint32 // byte offset where each line begins; Lines[0] == 0
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("document too large: %w", err))
	}
	return v
}

func lineStarts(content []byte) []uint32 {
	starts := make([]uint32, 1, len(content)/32+1)
	for i, b := range content {
		// after a final '\n' there is no further line
		if b == '\n' && i+1 < len(content) {
			starts = append(starts, u32(i+1))
		}
	}
	return starts
}

// Position returns the line/column of a byte offset. The '\n' ending a line
// belongs to that line.
func (f *File) Position(off uint32) LineCol {
	n := sort.Search(len(f.Lines), func(i int) bool { return f.Lines[i] > off })
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: u32(n), Col: off - f.Lines[n-1] + 1}
}

// LineCount returns the number of lines in the document.
func (f *File) LineCount() int {
	if len(f.Content) == 0 {
		return 0
	}
	return len(f.Lines)
}

// LineStart returns the byte offset where the 1-based line begins, or the
// content length past the last line.
func (f *File) LineStart(line uint32) uint32 {
	switch {
	case line <= 1:
		return 0
	case int(line) <= len(f.Lines):
		return f.Lines[line-1]
	default:
		return u32(len(f.Content))
	}
}

// GetLine returns the text of the 1-based line without its newline.
// Out-of-range lines yield "".
func (f *File) GetLine(line uint32) string {
	if line == 0 || int(line) > f.LineCount() {
		return ""
	}
	start := f.Lines[line-1]
	end := u32(len(f.Content))
	if int(line) < len(f.Lines) {
		end = f.Lines[line] - 1
	} else if end > start && f.Content[end-1] == '\n' {
		end--
	}
	return string(f.Content[start:end])
}
