// Package trace records what brilopt does while it runs.
//
// The tool has no logging framework; trace events are its execution log.
// A Tracer travels through the pipeline inside a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lvn", parentID)
//	defer span.End("")
//
// # Levels
//
//   - LevelOff: nothing is recorded
//   - LevelError: only Errorf points
//   - LevelPhase: driver operations
//   - LevelDetail: per-function work
//   - LevelDebug: every pass invocation
//
// Enable from the command line with --trace=- --trace-level=detail. Output is
// plain text, or NDJSON when the trace file ends in .ndjson.
package trace
