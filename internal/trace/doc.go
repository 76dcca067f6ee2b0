// Package trace provides leveled tracing for refinement runs.
//
// The tracer records the descent through the source tree so that a run
// can be replayed step by step when a code clash or an unexpected folder
// layout needs explaining.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	ontorefine refine --trace=- --trace-level=debug -i in -c refine.toml ...
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Reserved for failure reports
//   - LevelPhase: Driver boundaries (load, refine, persist)
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything including individual tree nodes
//
// # Scopes
//
//   - ScopeDriver: Top-level run operations
//   - ScopeFile: Per-input-file processing
//   - ScopeNode: Entity/stage/section/question/variable level
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "refine:Participant", 0)
//	defer span.End("")
package trace
