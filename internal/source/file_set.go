package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// FileSet owns the documents taking part in one compile call or one build.
// Not safe for concurrent mutation: every page gets its own set.
type FileSet struct {
	files []File
	base  string // display paths are relative to it; "" means the working dir
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet { return &FileSet{} }

// NewFileSetWithBase creates a FileSet whose paths are displayed relative to base.
func NewFileSetWithBase(base string) *FileSet { return &FileSet{base: base} }

// Add stores already normalized content and returns its ID. Adding the same
// path twice yields a new ID; older versions stay reachable.
func (s *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id := FileID(u32(len(s.files)))
	s.files = append(s.files, File{
		ID:      id,
		Path:    filepath.ToSlash(filepath.Clean(path)),
		Content: content,
		Lines:   lineStarts(content),
		Hash:    blake3.Sum256(content),
		Flags:   flags,
	})
	return id
}

// Load reads a document from disk, normalizes it and adds it.
func (s *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return s.Add(path, content, flags), nil
}

// AddVirtual normalizes content and adds it with the FileVirtual flag.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return s.Add(name, content, flags|FileVirtual)
}

// Has reports whether id belongs to the set.
func (s *FileSet) Has(id FileID) bool {
	return s != nil && int(id) < len(s.files)
}

// Get returns the file for the given ID.
func (s *FileSet) Get(id FileID) *File {
	return &s.files[id]
}

// Resolve converts a span into line and column positions.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	f := s.Get(span.File)
	return f.Position(span.Start), f.Position(span.End)
}

// DisplayPath returns the file path relative to the set's base directory
// when the file lives below it.
func (s *FileSet) DisplayPath(id FileID) string {
	f := s.Get(id)
	if f.Flags&FileVirtual != 0 {
		return f.Path
	}
	base := s.base
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return f.Path
		}
		base = wd
	}
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		return f.Path
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return f.Path
	}
	rel, err := filepath.Rel(absBase, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
