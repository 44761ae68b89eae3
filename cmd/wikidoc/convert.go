package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/markdown"
	"github.com/deepwiki-tools/wikidoc/internal/scrape"
)

func convertCmd() *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "convert <page.html>",
		Short: "Convert a saved wiki page to Markdown",
		Long: `Convert a rendered HTML page, saved to disk, into Markdown. Diagrams
embedded as SVG are reconstructed into mermaid blocks. Writes to stdout
unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			md, err := convertFile(args[0])
			if err != nil {
				return err
			}
			if outFlag == "" {
				fmt.Println(md)
				return nil
			}
			return os.WriteFile(outFlag, []byte(md+"\n"), 0o644)
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "write Markdown to this file instead of stdout")
	return cmd
}

func convertFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := dom.ParseString(string(data))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return markdown.NewConverter().ConvertPage(scrape.MainContent(root)), nil
}
