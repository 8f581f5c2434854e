// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"demomark/internal/emit"
	"demomark/internal/markdown"
	"demomark/internal/source"
)

// CheckBlockSpans verifies the positions produced by the markdown parser:
// 1) every block span is non-empty, points at file and fits its content
// 2) blocks appear in source order and do not overlap
// 3) Line agrees with the line of the span start
func CheckBlockSpans(blocks []markdown.Block, file *source.File) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var prevEnd uint32
	for i, b := range blocks {
		pos := b.Pos()
		sp := pos.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("block %d (%s): empty span %v", i+1, b.Kind(), sp)
		}
		if sp.File != file.ID {
			return fmt.Errorf("block %d: span file mismatch: got=%d want=%d", i+1, sp.File, file.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("block %d: span end beyond content: %d > %d", i+1, sp.End, lenContent)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("block %d: span %v overlaps the previous block ending at %d", i+1, sp, prevEnd)
		}
		prevEnd = sp.End
		if line := int(file.Position(sp.Start).Line); line != pos.Line {
			return fmt.Errorf("block %d: Line=%d but span starts on line %d", i+1, pos.Line, line)
		}
	}
	return nil
}

// CheckDemoOrder verifies that demos are numbered 1..n in order, that the
// body references each exactly once, and that every reference has a demo.
func CheckDemoOrder(body emit.Body, demos []emit.DemoEntry) error {
	for i, d := range demos {
		if d.Index != i+1 {
			return fmt.Errorf("demo %d has index %d", i+1, d.Index)
		}
	}
	refs := body.DemoRefs()
	if len(refs) != len(demos) {
		return fmt.Errorf("body references %d demos, have %d", len(refs), len(demos))
	}
	for i, ref := range refs {
		if ref != i+1 {
			return fmt.Errorf("reference %d points at demo %d", i+1, ref)
		}
	}
	return nil
}
