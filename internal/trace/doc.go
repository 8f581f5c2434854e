// Package trace records spans of demomark's work: the CLI command, the
// compile passes of a document, and per-page work during a build.
//
// Enable it from the command line:
//
//	demomark build --trace=- --trace-level=detail
//
// Levels:
//
//   - LevelOff: no tracing
//   - LevelError: only ring dumps after a failure
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-page events
//   - LevelDebug: everything, including per-block events
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
