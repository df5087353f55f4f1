package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stratum/pkg/config"
	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/layer"
	"github.com/arthur-debert/stratum/pkg/manifest"
	"github.com/arthur-debert/stratum/pkg/plan"
)

var (
	compileFormat string
	compileSave   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <manifest>...",
	Short: "Compile layer manifests into ordered application plans",
	Long: `Compile validates each manifest's features against each other and against
the parent layer's item set, and prints the order the features must be
applied in. Nothing is written to any filesystem; with --save the compiled
item sets are recorded in the facts database for child layers to build on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := facts.OpenDB(cfg.FactsDBPath())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		layers := make([]*layer.Layer, len(args))
		parents := make([]*facts.MemoryStore, len(args))
		for i, path := range args {
			l, parent, err := buildLayer(path, db)
			if err != nil {
				return err
			}
			layers[i] = l
			parents[i] = parent
		}

		var results []*layer.Result
		if cfg.Compile.Parallel {
			results, err = layer.CompileAll(layers)
		} else {
			results = make([]*layer.Result, len(layers))
			for i, l := range layers {
				if results[i], err = l.Compile(); err != nil {
					break
				}
			}
		}
		if err != nil {
			pterm.Error.Printfln("compile failed: %v", err)
			return err
		}

		for i, res := range results {
			if err := renderResult(res, plan.ColorMode(cfg.Color)); err != nil {
				return err
			}
			if compileSave {
				resolved := res.Apply(parents[i])
				if err := db.SaveLayer(res.Layer.Label, resolved.Items()); err != nil {
					return err
				}
			}
			pterm.Success.Printfln("%s: %d features ordered", res.Layer.Label, len(res.Graph.Ordered()))
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileFormat, "format", "text", "Output format: text, xml or dot")
	compileCmd.Flags().BoolVar(&compileSave, "save", false, "Record compiled item sets in the facts database")
}

// loadConfig loads the configuration and applies the --facts-db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if factsPath != "" {
		cfg.FactsDB = factsPath
	}
	return cfg, nil
}

// buildLayer turns a manifest file into a compilable layer, loading the
// parent item set and resolving clone source layers out of the facts
// database.
func buildLayer(path string, db *facts.DB) (*layer.Layer, *facts.MemoryStore, error) {
	doc, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}

	var parent *facts.MemoryStore
	if doc.Parent != "" {
		parent, err = db.LoadLayer(doc.Parent)
		if err != nil {
			return nil, nil, err
		}
		if parent.Len() == 0 {
			return nil, nil, errors.Newf(errors.ErrLayerNotFound,
				"parent layer %s has no recorded facts; compile it with --save first", doc.Parent)
		}
	}

	var layerRefs []item.LayerRef
	features, err := doc.Features(func(label string) (item.LayerRef, error) {
		store, err := db.LoadLayer(label)
		if err != nil {
			return item.LayerRef{}, err
		}
		if store.Len() == 0 {
			return item.LayerRef{}, errors.Newf(errors.ErrLayerNotFound,
				"layer %s has no recorded facts", label)
		}
		ref := item.LayerRef{Label: label, Items: store.AsMap()}
		layerRefs = append(layerRefs, ref)
		return ref, nil
	})
	if err != nil {
		return nil, nil, err
	}

	l := &layer.Layer{Label: doc.Label, Features: features}
	if parent != nil {
		l.Parent = parent
	}
	if len(layerRefs) > 0 {
		// Source layers referenced by clone, extract and mount stanzas enter
		// the compile universe as layer items so their requirements resolve.
		// They stay out of the save-side parent set: layer refs are
		// compile-time only.
		universe := facts.NewMemoryStore()
		if parent != nil {
			for _, it := range parent.Items() {
				universe.Insert(it)
			}
		}
		for _, ref := range layerRefs {
			universe.Insert(ref)
		}
		l.Parent = universe
	}
	return l, parent, nil
}

func renderResult(res *layer.Result, color plan.ColorMode) error {
	switch compileFormat {
	case "text":
		return plan.NewRenderer(os.Stdout, color).Text(res)
	case "xml":
		return plan.XML(os.Stdout, res)
	case "dot":
		return plan.Dot(os.Stdout, res.Graph)
	}
	return errors.Newf(errors.ErrInvalidInput, "unknown format %q: expected text, xml or dot", compileFormat)
}
