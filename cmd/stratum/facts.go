package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/item"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Inspect the facts database",
	Long: `The facts database records the resolved item set of every layer compiled
with --save. Child layers and clone features read parent and source layer
items from it.`,
}

var factsLayersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List layers recorded in the facts database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openFactsDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		labels, err := db.Layers()
		if err != nil {
			return err
		}
		if len(labels) == 0 {
			pterm.Info.Println("no layers recorded")
			return nil
		}
		for _, label := range labels {
			fmt.Println(label)
		}
		return nil
	},
}

var factsShowCmd = &cobra.Command{
	Use:   "show <layer>",
	Short: "Print a layer's recorded items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openFactsDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		store, err := db.LoadLayer(args[0])
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return errors.Newf(errors.ErrLayerNotFound, "layer %s has no recorded facts", args[0])
		}
		for _, it := range store.Items() {
			fmt.Printf("%-24s %s\n", it.Key(), it)
		}
		return nil
	},
}

var factsGetCmd = &cobra.Command{
	Use:   "get <layer> <kind> <value>",
	Short: "Look up one item, e.g. 'facts get //img:base path /etc/passwd'",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openFactsDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		key := item.Key{Kind: item.KeyKind(args[1]), Value: args[2]}
		it, err := db.Get(args[0], key)
		if err != nil {
			return err
		}
		if it == nil {
			return errors.Newf(errors.ErrNotFound, "%s not found in layer %s", key, args[0])
		}
		fmt.Println(it)
		return nil
	},
}

func openFactsDB() (*facts.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return facts.OpenDB(cfg.FactsDBPath())
}

func init() {
	factsCmd.AddCommand(factsLayersCmd)
	factsCmd.AddCommand(factsShowCmd)
	factsCmd.AddCommand(factsGetCmd)
}
