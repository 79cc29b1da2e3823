package ledger

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RegionConfig holds the endpoint and credentials of one regional accounting
// backend.
type RegionConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Config routes accounts to regional accounting backends.
type Config struct {
	Regions        map[string]RegionConfig
	DefaultRegion  string
	RequestTimeout time.Duration
}

// UnmarshalYAML decodes the config, parsing the timeout from a duration
// string like "5s".
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Regions        map[string]RegionConfig `yaml:"regions"`
		DefaultRegion  string                  `yaml:"default_region"`
		RequestTimeout string                  `yaml:"request_timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if len(raw.Regions) > 0 {
		c.Regions = raw.Regions
	}
	if raw.DefaultRegion != "" {
		c.DefaultRegion = raw.DefaultRegion
	}
	if raw.RequestTimeout != "" {
		timeout, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("ledger: invalid request_timeout: %w", err)
		}
		c.RequestTimeout = timeout
	}
	return nil
}

// LoadConfig loads the region table from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		DefaultRegion:  getenvDefault("LEDGER_DEFAULT_REGION", ""),
		RequestTimeout: 10 * time.Second,
	}

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Regions) == 0 {
		if baseURL := os.Getenv("LEDGER_BASE_URL"); baseURL != "" {
			region := cfg.DefaultRegion
			if region == "" {
				region = "default"
				cfg.DefaultRegion = region
			}
			cfg.Regions = map[string]RegionConfig{
				region: {BaseURL: baseURL, Token: os.Getenv("LEDGER_TOKEN")},
			}
		}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if len(cfg.Regions) == 0 {
		return cfg, errors.New("ledger: no regions configured")
	}
	return cfg, nil
}

// RegionFor resolves the region config, falling back to the default region.
func (c Config) RegionFor(region string) (RegionConfig, bool) {
	if region == "" {
		region = c.DefaultRegion
	}
	rc, ok := c.Regions[region]
	return rc, ok
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
