// Package depgraph compiles an unordered set of features into a valid
// application order, or a precise structured error explaining why no such
// order exists.
//
// The compiler is a pure, synchronous computation: it performs no I/O,
// holds no state across invocations, and is safe to run concurrently for
// independent layers. One compile moves through fixed stages:
//
//	collect provides -> conflict check -> resolve requires -> toposort
//
// and stops at the first failing stage. Conflicts (two features providing
// different values for the same key) are reported before unresolved or
// invalid requirements, which are reported before cycles. Identical
// re-declarations are collapsed, not rejected. Items provided by the
// parent layer satisfy requirements without contributing ordering edges:
// the parent is already built.
//
// Ordering is deterministic. Features with no mutual dependency keep their
// declaration order, and cycle reports are rotated so the same input
// always produces the same message.
package depgraph
