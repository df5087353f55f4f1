package main

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stratum/pkg/errors"
)

//go:embed topics/*.md
var topicsFS embed.FS

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Show built-in documentation topics",
	Long:  `Without arguments, docs lists the available topics. With a topic name it renders that topic to the terminal.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listTopics()
		}
		return showTopic(args[0])
	},
}

func listTopics() error {
	entries, err := topicsFS.ReadDir("topics")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)

	fmt.Println("Available topics:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("\nUse 'stratum docs <topic>' to read one.")
	return nil
}

func showTopic(name string) error {
	content, err := topicsFS.ReadFile("topics/" + name + ".md")
	if err != nil {
		return errors.Newf(errors.ErrNotFound, "unknown topic %q; run 'stratum docs' for the list", name)
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		// Fall back to plain text when the terminal renderer cannot be set up.
		fmt.Print(string(content))
		return nil
	}
	rendered, err := renderer.Render(string(content))
	if err != nil {
		fmt.Print(string(content))
		return nil
	}
	fmt.Print(rendered)
	return nil
}
