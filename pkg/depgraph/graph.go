package depgraph

import (
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
)

// Graph is the result of a successful compile: the validated dependency
// graph plus the topological order the mutation engine must follow.
type Graph struct {
	features []*feature.Feature
	order    []int
	edges    [][2]int
	provides []item.Item
}

// Ordered returns the features in application order: every feature appears
// after all features it depends on. Mutually independent features keep
// their declaration order.
func (g *Graph) Ordered() []*feature.Feature {
	out := make([]*feature.Feature, len(g.order))
	for i, idx := range g.order {
		out[i] = g.features[idx]
	}
	return out
}

// Features returns the features in declaration order.
func (g *Graph) Features() []*feature.Feature {
	out := make([]*feature.Feature, len(g.features))
	copy(out, g.features)
	return out
}

// Edges returns the ordering edges as (provider, requirer) index pairs
// into Features(). Exposed for graph export; the order is deterministic.
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, len(g.edges))
	copy(out, g.edges)
	return out
}

// Provides returns the final value of every item key this layer provides,
// in first-declaration order. Keys that ended in a removal are reported as
// RemovedEntry markers; merging with the parent item set is the caller's
// concern.
func (g *Graph) Provides() []item.Item {
	out := make([]item.Item, len(g.provides))
	copy(out, g.provides)
	return out
}
