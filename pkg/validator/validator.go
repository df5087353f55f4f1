package validator

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/stratum/pkg/item"
)

// Validator is a pure, total predicate over a resolved item. A nil item
// means the key resolved to nothing; each variant decides what absence
// means for it. Satisfies never errors and never mutates.
type Validator interface {
	Satisfies(it item.Item) bool
	fmt.Stringer
}

// Exists passes for any present item. Against an absent item it fails,
// which the graph reports as a missing dependency rather than a validation
// failure.
type Exists struct{}

func (Exists) Satisfies(it item.Item) bool { return it != nil }

func (Exists) String() string { return "Exists" }

// DoesNotExist is the one validator satisfied by absence. A removal item
// also satisfies it: a path removed earlier in the layer no longer exists
// as far as requirements are concerned. Any other present item fails.
type DoesNotExist struct{}

func (DoesNotExist) Satisfies(it item.Item) bool { return it == nil || item.IsUndo(it) }

func (DoesNotExist) String() string { return "DoesNotExist" }

// IsFileType asserts a path entry of a specific type. Symlink items satisfy
// only the symlink type; the graph chases links to their targets before
// evaluating validators, so a requirement for a directory behind a symlink
// is checked against the real directory entry.
type IsFileType struct {
	Type item.FileType
}

func (v IsFileType) Satisfies(it item.Item) bool {
	switch e := it.(type) {
	case item.PathEntry:
		return e.Type == v.Type
	case item.SymlinkEntry:
		return v.Type == item.TypeSymlink
	}
	return false
}

func (v IsFileType) String() string { return fmt.Sprintf("FileType(%s)", v.Type) }

// Executable asserts a regular file with at least one execute bit.
type Executable struct{}

func (Executable) Satisfies(it item.Item) bool {
	e, ok := it.(item.PathEntry)
	return ok && e.Executable()
}

func (Executable) String() string { return "Executable" }

// All passes when every inner validator passes. An empty All always passes.
type All struct {
	Inner []Validator
}

func (v All) Satisfies(it item.Item) bool {
	for _, inner := range v.Inner {
		if !inner.Satisfies(it) {
			return false
		}
	}
	return true
}

func (v All) String() string { return fmt.Sprintf("All(%s)", joinInner(v.Inner)) }

// Any passes when at least one inner validator passes.
type Any struct {
	Inner []Validator
}

func (v Any) Satisfies(it item.Item) bool {
	for _, inner := range v.Inner {
		if inner.Satisfies(it) {
			return true
		}
	}
	return false
}

func (v Any) String() string { return fmt.Sprintf("Any(%s)", joinInner(v.Inner)) }

// ItemInLayer asserts that a key inside another (already built) layer
// satisfies an inner validator. The item under test must be a LayerRef;
// when the key is absent from that layer, the inner validator's own
// absence polarity decides the outcome.
type ItemInLayer struct {
	Key   item.Key
	Inner Validator
}

func (v ItemInLayer) Satisfies(it item.Item) bool {
	layer, ok := it.(item.LayerRef)
	if !ok {
		return false
	}
	inner, found := layer.Lookup(v.Key)
	if !found {
		return v.Inner.Satisfies(nil)
	}
	return v.Inner.Satisfies(inner)
}

func (v ItemInLayer) String() string {
	return fmt.Sprintf("ItemInLayer(%s: %s)", v.Key, v.Inner)
}

func joinInner(inner []Validator) string {
	parts := make([]string, len(inner))
	for i, v := range inner {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
