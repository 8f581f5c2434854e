// Package diag defines the diagnostic model shared by the markdown parser,
// the body/demo splitter and the build pipeline.
//
// A Diagnostic carries a severity, a numeric Code with a stable string ID
// (MD1001, DEMO2001, ...), a short message and the primary source.Span.
// Producers emit through the Reporter interface; BagReporter collects into a
// Bag for the CLI, FirstErrorReporter lets an all-or-nothing phase stop on
// the first error.
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt.
package diag
