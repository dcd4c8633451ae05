// Package engine transforms anchored graphs: projection to the rendered
// surface, orphan-reference validation, cross-graph inlining, and
// materialization back into plain runtime values.
//
// All operations are pure functions over immutable inputs. Each call owns
// its memo/index for the duration of that call only, so the engine is
// safe to use from multiple goroutines as long as each invocation gets
// its own inputs. Termination on cyclic graphs is guaranteed because
// every composite is visited through its anchor at most once per
// traversal.
package engine
