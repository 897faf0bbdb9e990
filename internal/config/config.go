// Package config loads collector configuration from flags,
// environment variables, and optional files. Everything is resolved
// once at startup and passed by value into the orchestrator; nothing
// reads ambient state after that.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/modelscout/modelscout/pkg/errors"
)

// Default upstream endpoints. Each can be overridden via viper keys
// or environment variables, which also lets tests point the collector
// at local fakes.
const (
	DefaultHubBaseURL     = "https://huggingface.co"
	DefaultRouterBaseURL  = "https://openrouter.ai"
	DefaultLibraryPageURL = "https://ollama.com/library"
)

// Config is the resolved collector configuration.
type Config struct {
	// DatastorePath is the SQLite database location. Required: the
	// run has no useful partial output without a destination.
	DatastorePath string

	HubBaseURL string
	HubAPIKey  string

	RouterBaseURL string
	RouterAPIKey  string

	LibraryPageURL string
}

// Load resolves configuration from viper (flags, config file, env).
// API keys are optional; absent keys degrade to unauthenticated
// requests. A missing datastore path is a fatal configuration error.
func Load() (Config, error) {
	cfg := Config{
		DatastorePath:  getString("datastore.path", "MODELSCOUT_DB"),
		HubBaseURL:     getString("hub.base_url", "HUB_BASE_URL"),
		HubAPIKey:      getString("hub.api_key", "HUB_API_KEY"),
		RouterBaseURL:  getString("router.base_url", "ROUTER_BASE_URL"),
		RouterAPIKey:   getString("router.api_key", "ROUTER_API_KEY"),
		LibraryPageURL: getString("library.page_url", "LIBRARY_PAGE_URL"),
	}

	if cfg.HubBaseURL == "" {
		cfg.HubBaseURL = DefaultHubBaseURL
	}
	if cfg.RouterBaseURL == "" {
		cfg.RouterBaseURL = DefaultRouterBaseURL
	}
	if cfg.LibraryPageURL == "" {
		cfg.LibraryPageURL = DefaultLibraryPageURL
	}

	if cfg.DatastorePath == "" {
		return cfg, errors.NewConfigError("datastore", "datastore path is required (set --db or MODELSCOUT_DB)", errors.ErrInvalidConfig)
	}
	return cfg, nil
}

// getString reads a viper key, falling back to a bare environment
// variable when viper has no value.
func getString(key, envKey string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envKey)
}
