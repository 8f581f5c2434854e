package emit

import (
	"fmt"

	"demomark/internal/source"
)

// DemoSourceError reports a demo whose source the validator rejected.
// Line is the document line of the failure when the validator can tell,
// otherwise the line of the opening fence.
type DemoSourceError struct {
	Index int
	Line  int
	Span  source.Span
	Err   error
}

func (e *DemoSourceError) Error() string {
	return fmt.Sprintf("demo %d (line %d): %v", e.Index, e.Line, e.Err)
}

func (e *DemoSourceError) Unwrap() error { return e.Err }

// InternalError is a defect in demomark itself, never caused by input that
// parsed successfully.
type InternalError struct {
	Message string
	Line    int
}

func (e *InternalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("internal error at line %d: %s", e.Line, e.Message)
	}
	return "internal error: " + e.Message
}
