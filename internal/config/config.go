// Package config loads CultureBridge configuration from YAML with
// environment overrides. The config struct is built once at startup and
// passed down explicitly; there is no ambient global state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all CultureBridge configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Data    DataConfig    `yaml:"data"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig locates the cultural dataset.
type DataConfig struct {
	// DatasetPath points at a YAML dataset file. Empty means the embedded
	// defaults.
	DatasetPath string `yaml:"dataset_path"`
}

// StoreConfig configures the variant store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			Timeout:         "60s",
			MaxOutputTokens: 4096,
		},
		Store: StoreConfig{
			DatabasePath: ".bridge/variants.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (optional), then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays BRIDGE_* environment variables onto the config.
// GEMINI_API_KEY is honored as a fallback for the key since that is what
// the provider's own tooling exports.
func (c *Config) applyEnv() {
	if v := os.Getenv("BRIDGE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("BRIDGE_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("BRIDGE_LLM_TIMEOUT"); v != "" {
		c.LLM.Timeout = v
	}
	if v := os.Getenv("BRIDGE_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LLM.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("BRIDGE_DATASET_PATH"); v != "" {
		c.Data.DatasetPath = v
	}
	if v := os.Getenv("BRIDGE_DB_PATH"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("BRIDGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Timeout parses the LLM timeout, defaulting to 60s on bad input.
func (l LLMConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
