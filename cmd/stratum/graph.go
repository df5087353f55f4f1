package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/plan"
)

var graphCmd = &cobra.Command{
	Use:   "graph <manifest>",
	Short: "Export a layer's dependency graph as Graphviz dot",
	Long: `Graph compiles a manifest and writes the dependency graph to stdout in
dot form, for piping into Graphviz:

  stratum graph base.toml | dot -Tsvg -o base.svg`,
	Args: cobra.ExactArgs(1),
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

		l, _, err := buildLayer(args[0], db)
		if err != nil {
			return err
		}
		res, err := l.Compile()
		if err != nil {
			return err
		}
		return plan.Dot(os.Stdout, res.Graph)
	},
}
