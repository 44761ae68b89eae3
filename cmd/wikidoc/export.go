package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepwiki-tools/wikidoc/internal/docx"
)

func exportCmd() *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "export <document.md>",
		Short: "Export a Markdown document to a Word file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			out := outFlag
			if out == "" {
				out = docxPath(args[0])
			}
			return exportFile(args[0], out)
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output .docx path (default: input with .docx extension)")
	return cmd
}

func exportFile(in, out string) error {
	source, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	data, err := docx.NewExporter().Export(source)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", in, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}

func docxPath(mdPath string) string {
	if ext := ".md"; strings.HasSuffix(mdPath, ext) {
		return strings.TrimSuffix(mdPath, ext) + ".docx"
	}
	return mdPath + ".docx"
}
