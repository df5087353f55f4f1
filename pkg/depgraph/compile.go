package depgraph

import (
	"path"
	"sort"
	"time"

	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/logging"
)

// maxSymlinkHops bounds symlink chasing during lookup so a link loop in
// the declared items cannot hang the compiler.
const maxSymlinkHops = 40

// Compile validates the features of one layer against each other and
// against the parent layer's item set, and produces an application order.
// parent may be nil for a layer with no ancestors.
//
// The returned error, if any, is exactly one of *ConflictError,
// *MissingItemError, *ValidatorFailedError or *CycleError.
func Compile(features []*feature.Feature, parent facts.Reader) (*Graph, error) {
	logger := logging.GetLogger("depgraph")
	start := time.Now()

	c := newCompiler(features, parent)
	if err := c.collectProvides(); err != nil {
		return nil, err
	}
	if err := c.checkConflicts(); err != nil {
		return nil, err
	}
	if err := c.resolveRequires(); err != nil {
		return nil, err
	}
	order, err := c.sortFeatures()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		features: features,
		order:    order,
		edges:    c.edgeList,
		provides: c.finalProvides(),
	}
	logger.Debug().
		Int("features", len(features)).
		Int("edges", len(c.edgeList)).
		Dur("elapsed", time.Since(start)).
		Msg("Layer compiled")
	return g, nil
}

// provide records one feature's declaration of an item.
type provide struct {
	idx int
	it  item.Item
}

// slot is one version of an item key. Undo provides (path removal over an
// existing path) close the current slot and open a new one, recording the
// provider chain so removers run after producers.
type slot struct {
	it      item.Item
	entries []provide
}

type compiler struct {
	features []*feature.Feature
	parent   facts.Reader
	ambient  map[item.Key]item.Item

	slots    map[item.Key][]*slot
	keyOrder []item.Key

	out      [][]int
	edgeSeen map[[2]int]bool
	edgeList [][2]int
}

func newCompiler(features []*feature.Feature, parent facts.Reader) *compiler {
	return &compiler{
		features: features,
		parent:   parent,
		ambient:  ambientItems(),
		slots:    make(map[item.Key][]*slot),
		out:      make([][]int, len(features)),
		edgeSeen: make(map[[2]int]bool),
	}
}

// ambientItems returns the items every image has by construction: the root
// user and group, and the root directory. They behave like parent facts so
// the first layer of an image can bootstrap.
func ambientItems() map[item.Key]item.Item {
	items := []item.Item{
		item.User{Name: "root"},
		item.Group{Name: "root"},
		item.PathEntry{Path: "/", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
	}
	m := make(map[item.Key]item.Item, len(items))
	for _, it := range items {
		m[it.Key()] = it
	}
	return m
}

// inherited looks a key up in the pre-satisfied item sets: ambient items
// first, then the parent layer.
func (c *compiler) inherited(key item.Key) (item.Item, bool) {
	if it, ok := c.ambient[key]; ok {
		return it, true
	}
	if c.parent != nil {
		return c.parent.Lookup(key)
	}
	return nil, false
}

// collectProvides partitions every feature's provides into per-key slots.
// Provides that contradict the inherited item set fail immediately; current
// layer contradictions are left for checkConflicts so that all co-providers
// of a key are known when the conflict is reported.
func (c *compiler) collectProvides() error {
	for i, f := range c.features {
		for _, it := range f.Provides() {
			key := it.Key()
			history := c.slots[key]

			if len(history) > 0 {
				current := history[len(history)-1]
				switch {
				case item.IsUndo(it) && !item.IsUndo(current.it):
					// The removal supersedes the current version of this
					// item and must run after whatever produced it.
					for _, p := range current.entries {
						c.addEdge(p.idx, i)
					}
					c.slots[key] = append(history, &slot{it: it, entries: []provide{{idx: i, it: it}}})
				case !item.IsUndo(it) && item.IsUndo(current.it):
					// A regular provide joining a removed key slots in
					// beneath the removal, whatever the declaration order:
					// within one layer the removal always wins, and the
					// remover runs after the producer.
					for _, p := range current.entries {
						c.addEdge(i, p.idx)
					}
					if len(history) > 1 && !item.IsUndo(history[len(history)-2].it) {
						prior := history[len(history)-2]
						prior.entries = append(prior.entries, provide{idx: i, it: it})
					} else {
						c.slots[key] = append(history[:len(history)-1],
							&slot{it: it, entries: []provide{{idx: i, it: it}}}, current)
					}
				default:
					current.entries = append(current.entries, provide{idx: i, it: it})
				}
				continue
			}

			if inheritedItem, ok := c.inherited(key); ok && !item.IsUndo(it) && !inheritedItem.Equal(it) {
				return &ConflictError{
					Key:      key,
					Item:     inheritedItem,
					Features: []*feature.Feature{f},
				}
			}
			c.keyOrder = append(c.keyOrder, key)
			c.slots[key] = append(history, &slot{it: it, entries: []provide{{idx: i, it: it}}})
		}
	}
	return nil
}

// checkConflicts fails on the first slot holding structurally different
// values. Identical re-declarations were merged into the slot and are not
// an error. The reported item and participant order are independent of
// declaration order so that compiling [A, B] and [B, A] yields the same
// conflict.
func (c *compiler) checkConflicts() error {
	for _, key := range c.keyOrder {
		for _, s := range c.slots[key] {
			if len(s.entries) < 2 {
				continue
			}
			conflicting := false
			for _, p := range s.entries {
				if !p.it.Equal(s.it) {
					conflicting = true
					break
				}
			}
			if !conflicting {
				continue
			}
			reported := s.entries[0].it
			featureSet := make([]*feature.Feature, 0, len(s.entries))
			for _, p := range s.entries {
				if p.it.String() < reported.String() {
					reported = p.it
				}
				featureSet = append(featureSet, c.features[p.idx])
			}
			sort.Slice(featureSet, func(i, j int) bool {
				return featureSet[i].String() < featureSet[j].String()
			})
			return &ConflictError{Key: key, Item: reported, Features: featureSet}
		}
	}
	return nil
}

// resolveRequires checks every requirement against the provider map and
// wires ordering edges for requirements satisfied inside the current
// layer. Parent-satisfied requirements add no edge: the parent is already
// applied.
func (c *compiler) resolveRequires() error {
	for i, f := range c.features {
		for _, req := range f.Requires() {
			res, ok := c.resolve(req.Key, i, 0)
			if !ok {
				if req.Validator.Satisfies(nil) {
					continue
				}
				return &MissingItemError{Key: req.Key, RequiredBy: f}
			}

			effective := c.chase(res.it, 0)
			if !req.Validator.Satisfies(effective) {
				return &ValidatorFailedError{Item: effective, Validator: req.Validator, RequiredBy: f}
			}

			if res.fromLayer && req.Ordered {
				for _, provider := range res.providers {
					if provider != i {
						c.addEdge(provider, i)
					}
				}
			}
		}
	}
	return nil
}

type resolution struct {
	it        item.Item
	fromLayer bool
	providers []int
}

// resolve finds the current value of a key: the latest current-layer slot
// first, then ambient and parent items. Slot versions created by the
// requiring feature itself are skipped, so a removal's "must exist"
// requirement refers to the state before its own removal. A path key with
// no direct match is retried through any provided ancestor symlink, with
// the target resolved relative to the link.
//
// requirer is the index of the feature whose requirement is being
// resolved, or -1 for lookups with no requiring feature.
func (c *compiler) resolve(key item.Key, requirer int, hops int) (resolution, bool) {
	if history, ok := c.slots[key]; ok {
		for s := len(history) - 1; s >= 0; s-- {
			current := history[s]
			if providers := providersExcept(current, requirer); len(providers) > 0 {
				return resolution{it: current.it, fromLayer: true, providers: providers}, true
			}
		}
		// Every version of this key came from the requirer itself; fall
		// through to the inherited item set.
	}
	if it, ok := c.inherited(key); ok {
		return resolution{it: it}, true
	}

	if key.Kind != item.KindPath || hops >= maxSymlinkHops {
		return resolution{}, false
	}
	for ancestor := path.Dir(key.Value); ; ancestor = path.Dir(ancestor) {
		if res, ok := c.resolveDirect(item.PathKey(ancestor)); ok {
			if link, isLink := res.it.(item.SymlinkEntry); isLink {
				rewritten := path.Join(resolveTarget(link), key.Value[len(ancestor):])
				return c.resolve(item.PathKey(rewritten), requirer, hops+1)
			}
		}
		if ancestor == "/" || ancestor == "." {
			break
		}
	}
	return resolution{}, false
}

// resolveDirect is resolve without the symlink ancestor walk and without a
// requiring feature.
func (c *compiler) resolveDirect(key item.Key) (resolution, bool) {
	if history, ok := c.slots[key]; ok {
		current := history[len(history)-1]
		return resolution{it: current.it, fromLayer: true, providers: providersExcept(current, -1)}, true
	}
	if it, ok := c.inherited(key); ok {
		return resolution{it: it}, true
	}
	return resolution{}, false
}

// providersExcept lists the distinct feature indices providing a slot,
// excluding the given one.
func providersExcept(s *slot, except int) []int {
	var out []int
	seen := map[int]bool{}
	for _, p := range s.entries {
		if p.idx != except && !seen[p.idx] {
			seen[p.idx] = true
			out = append(out, p.idx)
		}
	}
	return out
}

// chase follows a symlink item to the entry it points at, so validators
// check the target rather than the link. An unresolvable target falls back
// to the link itself; the validator's failure message then names the link.
func (c *compiler) chase(it item.Item, hops int) item.Item {
	link, ok := it.(item.SymlinkEntry)
	if !ok || hops >= maxSymlinkHops {
		return it
	}
	res, found := c.resolve(item.PathKey(resolveTarget(link)), -1, 0)
	if !found {
		return it
	}
	return c.chase(res.it, hops+1)
}

// resolveTarget absolutizes a symlink target relative to the link's
// directory.
func resolveTarget(link item.SymlinkEntry) string {
	if path.IsAbs(link.Target) {
		return path.Clean(link.Target)
	}
	return path.Join(path.Dir(link.Link), link.Target)
}

func (c *compiler) addEdge(provider, requirer int) {
	edge := [2]int{provider, requirer}
	if c.edgeSeen[edge] {
		return
	}
	c.edgeSeen[edge] = true
	c.edgeList = append(c.edgeList, edge)
	c.out[provider] = append(c.out[provider], requirer)
}

// finalProvides returns each provided key's final value in
// first-declaration order.
func (c *compiler) finalProvides() []item.Item {
	out := make([]item.Item, 0, len(c.keyOrder))
	for _, key := range c.keyOrder {
		history := c.slots[key]
		out = append(out, history[len(history)-1].it)
	}
	return out
}
