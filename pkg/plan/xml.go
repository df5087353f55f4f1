package plan

import (
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/layer"
)

// XML writes a machine-readable report of a compiled layer: the features in
// application order, the ordering edges, and the items the layer provides.
func XML(w io.Writer, res *layer.Result) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("plan")
	root.CreateAttr("layer", res.Layer.Label)

	features := res.Graph.Features()
	order := root.CreateElement("order")
	for i, f := range res.Graph.Ordered() {
		el := order.CreateElement("feature")
		el.CreateAttr("step", strconv.Itoa(i+1))
		el.CreateAttr("kind", string(f.Kind()))
		el.CreateAttr("label", f.Label)
	}

	edges := root.CreateElement("edges")
	for _, e := range res.Graph.Edges() {
		el := edges.CreateElement("edge")
		el.CreateAttr("from", features[e[0]].Label)
		el.CreateAttr("to", features[e[1]].Label)
	}

	items := root.CreateElement("items")
	for _, it := range res.Graph.Provides() {
		el := items.CreateElement("item")
		el.CreateAttr("key", it.Key().String())
		el.SetText(it.String())
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrReportRender, "writing XML report")
	}
	return nil
}
