package layer

import (
	"sync"
	"time"

	"github.com/arthur-debert/stratum/pkg/depgraph"
	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/logging"
)

// Layer is one image layer: a label, the features to apply, and a read view
// of the parent layer's items. Parent may be nil for a base layer.
type Layer struct {
	Label    string
	Features []*feature.Feature
	Parent   facts.Reader
}

// Result pairs a layer with its compiled graph.
type Result struct {
	Layer *Layer
	Graph *depgraph.Graph
}

// Compile validates the layer and produces its application order. The error,
// when non-nil, is one of the depgraph error types and can be inspected with
// errors.As.
func (l *Layer) Compile() (*Result, error) {
	logger := logging.GetLogger("layer")
	start := time.Now()

	g, err := depgraph.Compile(l.Features, l.Parent)
	if err != nil {
		logger.Debug().
			Str("layer", l.Label).
			Err(err).
			Msg("Layer failed to compile")
		return nil, err
	}

	logger.Info().
		Str("layer", l.Label).
		Int("features", len(l.Features)).
		Dur("elapsed", time.Since(start)).
		Msg("Layer compiled")
	return &Result{Layer: l, Graph: g}, nil
}

// Apply folds the layer's provides into a copy of base, producing the item
// set a child of this layer inherits. Removed paths drop out of the set;
// everything else is inserted under its key. base may be nil.
func (r *Result) Apply(base *facts.MemoryStore) *facts.MemoryStore {
	out := facts.NewMemoryStore()
	if base != nil {
		for _, it := range base.Items() {
			out.Insert(it)
		}
	}
	for _, it := range r.Graph.Provides() {
		if removed, ok := it.(item.RemovedEntry); ok {
			out.Delete(removed.Key())
			continue
		}
		out.Insert(it)
	}
	return out
}

// CompileAll compiles every layer, one goroutine per layer. Results line up
// index-for-index with the input; the first error by input order is
// returned, so concurrent compilation cannot change which failure a caller
// sees.
func CompileAll(layers []*Layer) ([]*Result, error) {
	results := make([]*Result, len(layers))
	errs := make([]error, len(layers))

	var wg sync.WaitGroup
	for i, l := range layers {
		wg.Add(1)
		go func(i int, l *Layer) {
			defer wg.Done()
			results[i], errs[i] = l.Compile()
		}(i, l)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
