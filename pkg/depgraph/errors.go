package depgraph

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// The compiler fails with exactly one of the error types below per compile
// attempt. They carry full structure for programmatic inspection; Error()
// renders the single-line, greppable form that tests and log scrapers
// match against.

// ConflictError reports two or more features providing structurally
// different values for the same key.
type ConflictError struct {
	Key      item.Key
	Item     item.Item
	Features []*feature.Feature
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is provided by multiple features: [%s]", e.Item, joinFeatures(e.Features))
}

// MissingItemError reports a requirement whose key resolves to nothing in
// either the current layer or the parent item set.
type MissingItemError struct {
	Key        item.Key
	RequiredBy *feature.Feature
}

func (e *MissingItemError) Error() string {
	return fmt.Sprintf("%s is required by %s but was never provided", e.Key, e.RequiredBy)
}

// ValidatorFailedError reports a requirement whose key resolved to an item
// that fails the requirement's validator.
type ValidatorFailedError struct {
	Item       item.Item
	Validator  validator.Validator
	RequiredBy *feature.Feature
}

func (e *ValidatorFailedError) Error() string {
	return fmt.Sprintf("%s does not satisfy the validation rules: %s as required by %s",
		e.Item, e.Validator, e.RequiredBy)
}

// CycleError reports a closed loop of ordered requirements. Features holds
// exactly the cycle's members in traversal order, rotated so the smallest
// member is first; the rotation is semantically meaningless but keeps the
// message deterministic.
type CycleError struct {
	Features []*feature.Feature
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Features)+1)
	for _, f := range e.Features {
		parts = append(parts, f.String())
	}
	if len(e.Features) > 0 {
		parts = append(parts, e.Features[0].String())
	}
	return fmt.Sprintf("cycle in dependency graph: %s", strings.Join(parts, " -> "))
}

func joinFeatures(features []*feature.Feature) string {
	parts := make([]string, len(features))
	for i, f := range features {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
