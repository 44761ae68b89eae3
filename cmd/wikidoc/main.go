// cmd/wikidoc/main.go
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/deepwiki-tools/wikidoc/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	verbose    bool
)

func versionString() string {
	return fmt.Sprintf("wikidoc %s (commit: %s, built: %s)", version, commit, date)
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = "wikidoc.toml"
	}
	return config.Load(path)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "wikidoc",
		Short: "Turn rendered wiki sites into Markdown and Word documents",
		Long: `wikidoc scrapes client-rendered wiki pages, reconstructs their diagrams
into mermaid notation, converts the content to Markdown, and optionally
translates it and exports Word documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(versionCmd, runCmd(), convertCmd(), exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
