// Package layer ties a set of features to a parent item store and drives
// compilation. A Layer is the unit a manifest file describes; CompileAll
// compiles independent layers concurrently, which is safe because a compile
// is a pure function of its inputs.
package layer
