// Package validator defines the pure predicates evaluated against a
// resolved item, or against the absence of one, when the dependency graph
// checks a feature's requirements.
//
// Requirements are matched by item key, but the key alone does not tell the
// whole story: a requirement may need the path it points at to be an
// executable file, or a directory, or to not exist at all. Validators carry
// that extra check.
//
// Every validator defines its own polarity for an absent item: Exists and
// Executable fail closed, DoesNotExist passes. Callers signal absence by
// evaluating against a nil item; removal items count as absent for
// DoesNotExist and present for everything else.
package validator
