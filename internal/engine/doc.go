// Package engine drives identification modules to a fixpoint.
//
// ARCHITECTURE:
//
// Rounds:
// The engine runs rounds strictly one after another. A round invokes every
// module with the same step number, waits for all of them, then folds their
// headers into the accumulated set. Modules only learn about each other's
// facts through files in the run workspace, so everything written in round N
// is visible to every module in round N+1.
//
// Inside a round the invocations are independent and run concurrently, bounded
// by the configured parallelism. Results are merged in module order after the
// join, so the accumulated set is only ever touched by the Run goroutine.
//
// Convergence:
// A round that adds no header not already known ends the run (Converged).
// Nothing guarantees that modules ever stop producing, so WithMaxRounds offers
// a ceiling; reaching it returns the partial result with a RoundLimitError.
//
// Resumption:
// The first step is the number of headers recovered from the store. When a
// Recorder is configured and remembers a completed step for the run path,
// the engine continues from the step after it instead.
//
// Cancellation is checked at round boundaries; a cancelled context also
// kills the subprocesses of the round in flight.
package engine
