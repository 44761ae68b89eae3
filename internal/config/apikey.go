package config

import (
	"fmt"
	"os"
)

// EnvAPIKey is the environment variable consulted when the key source is
// "env".
const EnvAPIKey = "DEEPSEEK_API_KEY"

// ResolveAPIKey resolves the translation API key based on the configured
// source. Supported sources: "env" (from DEEPSEEK_API_KEY) and "config"
// (from the api_key value).
func (c TranslateConfig) ResolveAPIKey() (string, error) {
	switch c.APIKeySource {
	case "env":
		val := os.Getenv(EnvAPIKey)
		if val == "" {
			return "", fmt.Errorf("environment variable %s is not set", EnvAPIKey)
		}
		return val, nil
	case "config":
		if c.APIKey == "" {
			return "", fmt.Errorf("api_key_source is 'config' but no api_key value provided")
		}
		return c.APIKey, nil
	default:
		return "", fmt.Errorf("unknown api_key_source: %q", c.APIKeySource)
	}
}
