// Package item defines the typed, keyed representation of everything a
// feature can provide or require: path entries, symlinks, users, groups,
// rpm packages, and references to other layers.
//
// Every Item projects to a Key, the identity used for lookup and conflict
// comparison. Two items with the same Key but different field values are a
// conflict, not two independent items; structural equality (Item.Equal)
// is what distinguishes an idempotent re-declaration from a conflict.
package item
