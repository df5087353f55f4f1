package facts

import (
	"sort"

	"github.com/arthur-debert/stratum/pkg/item"
)

// Reader is the compiler's view of an ancestor layer's item set.
type Reader interface {
	// Lookup returns the item stored under key, if any.
	Lookup(key item.Key) (item.Item, bool)
}

// MemoryStore is an in-memory Reader. The zero value is an empty, usable
// store.
type MemoryStore struct {
	items map[item.Key]item.Item
}

// NewMemoryStore builds a store holding the given items. Later items win
// when two share a key, mirroring the "most recent version of an item"
// rule used while building a layer.
func NewMemoryStore(items ...item.Item) *MemoryStore {
	s := &MemoryStore{}
	for _, it := range items {
		s.Insert(it)
	}
	return s
}

// Insert adds or replaces an item.
func (s *MemoryStore) Insert(it item.Item) {
	if s.items == nil {
		s.items = make(map[item.Key]item.Item)
	}
	s.items[it.Key()] = it
}

// Delete removes the item stored under key, if any.
func (s *MemoryStore) Delete(key item.Key) {
	if s.items != nil {
		delete(s.items, key)
	}
}

// Lookup implements Reader. A nil store is empty.
func (s *MemoryStore) Lookup(key item.Key) (item.Item, bool) {
	if s == nil || s.items == nil {
		return nil, false
	}
	it, ok := s.items[key]
	return it, ok
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the stored items sorted by key, for deterministic
// iteration.
func (s *MemoryStore) Items() []item.Item {
	if s == nil {
		return nil
	}
	keys := make([]item.Key, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Value < keys[j].Value
	})
	items := make([]item.Item, len(keys))
	for i, k := range keys {
		items[i] = s.items[k]
	}
	return items
}

// AsMap returns a copy of the store's contents keyed by item key, in the
// shape LayerRef wants.
func (s *MemoryStore) AsMap() map[item.Key]item.Item {
	out := make(map[item.Key]item.Item, s.Len())
	if s != nil {
		for k, v := range s.items {
			out[k] = v
		}
	}
	return out
}
