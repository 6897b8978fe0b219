package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from an optional YAML file
// with environment variables taking precedence.
type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		Orchestrator bool   `yaml:"orchestrator"` // run the bot orchestrator in-process
	} `yaml:"server"`
	Storage struct {
		Backend string `yaml:"backend"` // postgres (default) or memory
	} `yaml:"storage"`
	NATS struct {
		URL string `yaml:"url"` // empty means local-only event fanout
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Orchestrator = true
	cfg.Storage.Backend = "postgres"
	return cfg
}

// loadConfig reads the YAML config when present and applies env
// overrides. A missing file is fine; defaults carry the day.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	if v := os.Getenv("RUN_ORCHESTRATOR"); v != "" {
		cfg.Server.Orchestrator = v == "true" || v == "1"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
