package item

import "fmt"

// KeyKind discriminates the namespace a Key lives in. Keys of different
// kinds never collide, even when their values are textually equal (the
// user "mail" and the group "mail" are distinct keys).
type KeyKind string

const (
	KindPath  KeyKind = "path"
	KindUser  KeyKind = "user"
	KindGroup KeyKind = "group"
	KindRpm   KeyKind = "rpm"
	KindLayer KeyKind = "layer"
)

// Key is the identity-only projection of an Item. It is comparable and is
// used as a map key throughout the compiler.
type Key struct {
	Kind  KeyKind
	Value string
}

// PathKey returns the Key for a filesystem path.
func PathKey(path string) Key { return Key{Kind: KindPath, Value: path} }

// UserKey returns the Key for a user name.
func UserKey(name string) Key { return Key{Kind: KindUser, Value: name} }

// GroupKey returns the Key for a group name.
func GroupKey(name string) Key { return Key{Kind: KindGroup, Value: name} }

// RpmKey returns the Key for an rpm package name.
func RpmKey(name string) Key { return Key{Kind: KindRpm, Value: name} }

// LayerKey returns the Key for a layer label.
func LayerKey(label string) Key { return Key{Kind: KindLayer, Value: label} }

// String renders the key in the form used by error messages, e.g.
// "Path(/usr/bin)" or "User(builder)".
func (k Key) String() string {
	switch k.Kind {
	case KindPath:
		return fmt.Sprintf("Path(%s)", k.Value)
	case KindUser:
		return fmt.Sprintf("User(%s)", k.Value)
	case KindGroup:
		return fmt.Sprintf("Group(%s)", k.Value)
	case KindRpm:
		return fmt.Sprintf("Rpm(%s)", k.Value)
	case KindLayer:
		return fmt.Sprintf("Layer(%s)", k.Value)
	}
	return fmt.Sprintf("%s(%s)", k.Kind, k.Value)
}

// Item is a typed unit of filesystem-visible state. The set of
// implementations is closed: new kinds are added here, never registered at
// runtime.
type Item interface {
	// Key returns the identity projection used for lookup and conflict
	// comparison. It is pure and deterministic.
	Key() Key

	// Equal reports structural (field-wise) equality with another item.
	// Equal items for the same key are deduplicated; unequal ones conflict.
	Equal(other Item) bool

	fmt.Stringer
}

// IsUndo reports whether an item marks the removal of a previously provided
// item. An undo provide for an occupied key supersedes the previous provider
// instead of conflicting with it.
func IsUndo(it Item) bool {
	_, ok := it.(RemovedEntry)
	return ok
}
