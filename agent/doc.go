// Package agent contains the shared task-lifecycle machinery and the concrete
// research agents built on it. The package focuses on three concerns:
//
//  1. Base lifecycle + admission plumbing (BaseAgent)
//  2. A closed, verified action-to-handler dispatch table per agent
//  3. The thin concrete agents (literature, planning, executor, memory,
//     systematic review, writer) that supply domain handlers
//
// Design principles:
//   - No hidden global state; the cost estimator and transport are injected
//   - Failures are task-scoped: a handler error returns a failed response and
//     leaves the agent Ready, never Error
//   - Admission is explicit: capability gate, then capacity gate, both
//     answered with structured failed responses rather than errors
//
// Execution model: every admitted task runs under its own cancellable
// context derived from the caller's, so Stop aborts in-flight work rather
// than merely forgetting about it.
package agent
