package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fieldexplorer/internal/storage"
)

// YAMLConfig represents the structure of the config.yaml file.
// Per-store tuning that's easier to manage in YAML than env vars.
type YAMLConfig struct {
	Defaults StoreConfig            `yaml:"defaults"`
	Stores   map[string]StoreConfig `yaml:"stores"` // keyed by "postgres", "mongodb", "neo4j"
}

// StoreConfig tunes the guard around one store. Zero fields inherit.
type StoreConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig mirrors storage.BreakerSettings.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"` // open-state duration
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return parseYAMLConfig(data)
}

func parseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StoreTimeout returns the call timeout for store, falling back to the
// defaults section and then to fallback.
func (c *YAMLConfig) StoreTimeout(store string, fallback time.Duration) time.Duration {
	if c == nil {
		return fallback
	}
	if sc, ok := c.Stores[store]; ok && sc.Timeout > 0 {
		return sc.Timeout
	}
	if c.Defaults.Timeout > 0 {
		return c.Defaults.Timeout
	}
	return fallback
}

// BreakerSettings returns the breaker settings for store. Each field falls
// back to the defaults section and then to storage.DefaultBreakerSettings.
func (c *YAMLConfig) BreakerSettings(store string) storage.BreakerSettings {
	s := storage.DefaultBreakerSettings()
	if c == nil {
		return s
	}
	c.Defaults.Breaker.apply(&s)
	if sc, ok := c.Stores[store]; ok {
		sc.Breaker.apply(&s)
	}
	return s
}

func (b BreakerConfig) apply(s *storage.BreakerSettings) {
	if b.MaxRequests > 0 {
		s.MaxRequests = b.MaxRequests
	}
	if b.Interval > 0 {
		s.Interval = b.Interval
	}
	if b.Timeout > 0 {
		s.Timeout = b.Timeout
	}
	if b.MinRequests > 0 {
		s.MinRequests = b.MinRequests
	}
	if b.FailureRatio > 0 {
		s.FailureRatio = b.FailureRatio
	}
}
