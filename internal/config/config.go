// Package config loads the application's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Scrape    ScrapeConfig    `toml:"scrape"`
	Translate TranslateConfig `toml:"translate"`
	Output    OutputConfig    `toml:"output"`
	Tasks     TasksConfig     `toml:"tasks"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
}

// ScrapeConfig holds browser settings for page fetching.
type ScrapeConfig struct {
	ChromePath         string `toml:"chrome_path"`
	Headless           bool   `toml:"headless"`
	SettleDelaySeconds int    `toml:"settle_delay_seconds"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// TranslateConfig holds settings for the translation stage.
type TranslateConfig struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	Language          string  `toml:"language"`
	APIKeySource      string  `toml:"api_key_source"`
	APIKey            string  `toml:"api_key"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// OutputConfig holds settings for where and how documents are written.
type OutputConfig struct {
	Dir  string `toml:"dir"`
	Docx bool   `toml:"docx"`
}

// TasksConfig locates the spreadsheet listing wikis to process.
type TasksConfig struct {
	File   string `toml:"file"`
	Column string `toml:"column"`
}

// PipelineConfig holds settings for pipeline execution.
type PipelineConfig struct {
	Workers int `toml:"workers"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			Headless:           true,
			SettleDelaySeconds: 3,
			TimeoutSeconds:     120,
		},
		Translate: TranslateConfig{
			Enabled:           true,
			Language:          "Chinese",
			APIKeySource:      "env",
			RequestsPerSecond: 1,
		},
		Output: OutputConfig{
			Dir:  "output",
			Docx: true,
		},
		Tasks: TasksConfig{
			File:   "task.xlsx",
			Column: "D",
		},
		Pipeline: PipelineConfig{
			Workers: 4,
		},
	}
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
