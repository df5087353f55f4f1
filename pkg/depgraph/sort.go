package depgraph

import (
	"container/heap"

	"github.com/arthur-debert/stratum/pkg/feature"
)

// sortFeatures runs Kahn's algorithm over the ordering edges. Among
// features whose dependencies are all satisfied, the one declared first
// runs first, which makes the output order a deterministic function of the
// input.
func (c *compiler) sortFeatures() ([]int, error) {
	n := len(c.features)
	indeg := make([]int, n)
	for _, edge := range c.edgeList {
		indeg[edge[1]]++
	}

	ready := &intHeap{}
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, n)
	placed := make([]bool, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		placed[i] = true
		for _, succ := range c.out[i] {
			indeg[succ]--
			if indeg[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}

	if len(order) < n {
		return nil, &CycleError{Features: c.extractCycle(placed)}
	}
	return order, nil
}

// extractCycle reproduces one simple cycle out of the leftover subgraph.
// Every unplaced feature still has an unplaced predecessor (that is what
// kept its in-degree positive), so walking smallest predecessors from the
// smallest unplaced feature must revisit a feature; the revisited segment
// is a simple cycle. The result follows edge direction and is rotated so
// the smallest member comes first.
func (c *compiler) extractCycle(placed []bool) []*feature.Feature {
	n := len(c.features)

	pred := make([][]int, n)
	for _, edge := range c.edgeList {
		if !placed[edge[0]] && !placed[edge[1]] {
			pred[edge[1]] = append(pred[edge[1]], edge[0])
		}
	}

	start := -1
	for i := 0; i < n; i++ {
		if !placed[i] {
			start = i
			break
		}
	}

	pos := make(map[int]int)
	var walk []int
	cur := start
	for {
		if at, seen := pos[cur]; seen {
			walk = walk[at:]
			break
		}
		pos[cur] = len(walk)
		walk = append(walk, cur)

		next := pred[cur][0]
		for _, p := range pred[cur] {
			if p < next {
				next = p
			}
		}
		cur = next
	}

	// The walk followed predecessors, so reverse it to follow edges.
	cycle := make([]int, len(walk))
	for i, idx := range walk {
		cycle[len(walk)-1-i] = idx
	}

	minAt := 0
	for i, idx := range cycle {
		if c.features[idx].String() < c.features[cycle[minAt]].String() {
			minAt = i
		}
	}
	rotated := append(cycle[minAt:], cycle[:minAt]...)

	features := make([]*feature.Feature, len(rotated))
	for i, idx := range rotated {
		features[i] = c.features[idx]
	}
	return features
}

// intHeap is a min-heap of feature indices.
type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
