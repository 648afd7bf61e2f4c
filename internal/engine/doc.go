// Package engine implements the orchestration core of the runtime: the
// track activation state machine, the instance manager that expands a
// placement into its grid of live instances, the channel router, and the
// method execution pipeline.
//
// The engine is an explicit service object. All collaborators (module
// registry, surface pool, frame gate, random source, status sink) are
// injected at construction, and all mutable state lives on the instance,
// so independent engines can coexist in one process; the tests rely on
// exactly that.
//
// Concurrency model: placements initialize concurrently during activation;
// within one method batch the matrix step strictly precedes everything
// else, and the remaining calls fan out over a frozen instance snapshot.
// Across batches no ordering is guaranteed: with the default last-wins
// policy two rapid triggers on the same placement race at the instance
// level. Deactivation never cancels in-flight batches; instances carry a
// destroyed flag checked before every effectful call instead.
package engine
