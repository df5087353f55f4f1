package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/stratum/internal/version"
)

var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate the man page",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		header := &doc.GenManHeader{
			Title:   "STRATUM",
			Section: "1",
			Source:  "stratum " + version.Version,
			Manual:  "stratum manual",
		}
		return doc.GenMan(rootCmd, header, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(manCmd)
}
