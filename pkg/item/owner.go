package item

import "fmt"

// User is a user account known to the image.
type User struct {
	Name string
}

func (u User) Key() Key { return UserKey(u.Name) }

func (u User) Equal(other Item) bool {
	o, ok := other.(User)
	return ok && u == o
}

func (u User) String() string { return fmt.Sprintf("user %s", u.Name) }

// Group is a group known to the image.
type Group struct {
	Name string
}

func (g Group) Key() Key { return GroupKey(g.Name) }

func (g Group) Equal(other Item) bool {
	o, ok := other.(Group)
	return ok && g == o
}

func (g Group) String() string { return fmt.Sprintf("group %s", g.Name) }

// Rpm is an installed rpm package.
type Rpm struct {
	Name string
}

func (r Rpm) Key() Key { return RpmKey(r.Name) }

func (r Rpm) Equal(other Item) bool {
	o, ok := other.(Rpm)
	return ok && r == o
}

func (r Rpm) String() string { return fmt.Sprintf("rpm %s", r.Name) }

// LayerRef is a fully-built layer that features in the current layer may
// reach into (clone sources). Items is the layer's resolved item set, used
// by the ItemInLayer validator. Equality is by label: a label identifies
// exactly one built layer per compile.
type LayerRef struct {
	Label string
	Items map[Key]Item
}

func (l LayerRef) Key() Key { return LayerKey(l.Label) }

func (l LayerRef) Equal(other Item) bool {
	o, ok := other.(LayerRef)
	return ok && l.Label == o.Label
}

func (l LayerRef) String() string { return fmt.Sprintf("layer %s", l.Label) }

// Lookup finds an item provided by the referenced layer.
func (l LayerRef) Lookup(key Key) (Item, bool) {
	it, ok := l.Items[key]
	return it, ok
}
