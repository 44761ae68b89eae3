package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepwiki-tools/wikidoc/internal/docx"
	"github.com/deepwiki-tools/wikidoc/internal/pipeline"
	"github.com/deepwiki-tools/wikidoc/internal/scrape"
	"github.com/deepwiki-tools/wikidoc/internal/tasklist"
	"github.com/deepwiki-tools/wikidoc/internal/translate"
)

func runCmd() *cobra.Command {
	var (
		tasksFlag       string
		outputFlag      string
		workersFlag     int
		noTranslateFlag bool
		noDocxFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "run [url...]",
		Short: "Scrape wikis and produce Markdown, translations, and Word documents",
		Long: `Run the full pipeline over one or more wiki URLs. With no arguments the
URL list is read from the task spreadsheet named in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputFlag != "" {
				cfg.Output.Dir = outputFlag
			}
			if workersFlag > 0 {
				cfg.Pipeline.Workers = workersFlag
			}
			if noTranslateFlag {
				cfg.Translate.Enabled = false
			}
			if noDocxFlag {
				cfg.Output.Docx = false
			}
			if tasksFlag != "" {
				cfg.Tasks.File = tasksFlag
			}

			urls := args
			if len(urls) == 0 {
				urls, err = tasklist.URLs(cfg.Tasks.File, cfg.Tasks.Column)
				if err != nil {
					return fmt.Errorf("reading task list: %w", err)
				}
			}
			if len(urls) == 0 {
				return fmt.Errorf("no wiki URLs to process")
			}

			logger := newLogger()
			logger.Info("starting pipeline", "wikis", len(urls), "output", cfg.Output.Dir)

			scraper := scrape.New(cmd.Context(), scrape.Options{
				ChromePath:  cfg.Scrape.ChromePath,
				Headless:    cfg.Scrape.Headless,
				SettleDelay: time.Duration(cfg.Scrape.SettleDelaySeconds) * time.Second,
				Timeout:     time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second,
			})
			defer scraper.Close()

			runner := &pipeline.Runner{
				Fetcher:   scraper,
				Logger:    logger,
				OutputDir: cfg.Output.Dir,
				Workers:   cfg.Pipeline.Workers,
			}

			if cfg.Translate.Enabled {
				apiKey, err := cfg.Translate.ResolveAPIKey()
				if err != nil {
					return fmt.Errorf("resolving translation API key: %w", err)
				}
				client := translate.NewClient(cfg.Translate.BaseURL, apiKey, cfg.Translate.Model)
				runner.Translator = translate.NewTranslator(client, cfg.Translate.Language, cfg.Translate.RequestsPerSecond, logger)
			}
			if cfg.Output.Docx {
				runner.Exporter = docx.NewExporter()
			}

			result, err := runner.Run(cmd.Context(), urls)
			if err != nil {
				return err
			}
			for _, pageErr := range result.Errors {
				logger.Warn("page failed", "err", pageErr)
			}
			if result.Pages == 0 {
				return fmt.Errorf("no pages produced")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tasksFlag, "tasks", "", "spreadsheet with wiki URLs (overrides config)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "concurrent translate/export workers (overrides config)")
	cmd.Flags().BoolVar(&noTranslateFlag, "no-translate", false, "skip the translation stage")
	cmd.Flags().BoolVar(&noDocxFlag, "no-docx", false, "skip the Word export stage")

	return cmd
}
