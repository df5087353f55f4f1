package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/stratum/pkg/depgraph"
)

// Dot writes the dependency graph in Graphviz dot form. Nodes are labeled
// with the feature's display string; edges point from provider to requirer,
// matching application order.
func Dot(w io.Writer, g *depgraph.Graph) error {
	features := g.Features()

	var b strings.Builder
	b.WriteString("digraph depgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")
	for i, f := range features {
		fmt.Fprintf(&b, "  n%d [label=%q];\n", i, f.String())
	}
	for _, edge := range g.Edges() {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", edge[0], edge[1])
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
