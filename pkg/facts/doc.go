// Package facts stores the resolved item sets of built layers.
//
// The compiler consumes facts through the narrow Reader interface: a
// read-only, already-validated view of what an ancestor layer provides.
// Items found there are treated as satisfied preconditions, never
// re-validated and never a source of ordering edges.
//
// Two implementations are provided. MemoryStore is the in-process map used
// during a compile and in tests. DB persists facts in a SQLite database so
// that layer builds can be incremental: a compiled layer's provides are
// written once and read back as the parent item set of its children.
package facts
