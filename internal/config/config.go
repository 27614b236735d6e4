package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the arbor.yaml file read by the serve and mcp commands.
// Command-line flags override any value set here.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Port     int    `yaml:"port"`
	Metrics  bool   `yaml:"metrics"`
	Redis    Redis  `yaml:"redis"`
}

// Redis configures the optional event publisher.
// An empty Addr disables publishing.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Port:     8080,
		Metrics:  true,
		Redis: Redis{
			Channel: "arbor:events",
		},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d in %s", cfg.Port, path)
	}
	return cfg, nil
}
