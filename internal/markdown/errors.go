package markdown

import (
	"fmt"

	"demomark/internal/diag"
	"demomark/internal/source"
)

// ParseError is returned when the document has structurally invalid markdown.
// Line and Col are 1-based and point at the offending construct.
type ParseError struct {
	Path       string
	Line       int
	Col        int
	Diagnostic diag.Diagnostic
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Diagnostic.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Diagnostic.Message)
}

func newParseError(file *source.File, d diag.Diagnostic) error {
	pos := file.Position(d.Primary.Start)
	return &ParseError{
		Path:       file.Path,
		Line:       int(pos.Line),
		Col:        int(pos.Col),
		Diagnostic: d,
	}
}
