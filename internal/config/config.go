package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"convene/internal/agent"
)

type Config struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Identity IdentityConfig `yaml:"identity"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type IdentityConfig struct {
	Keyfile string `yaml:"keyfile"`
}

// NotifyConfig configures the webhook fan-out: one endpoint per agent
// known to be reachable. Agents without an endpoint are skipped.
type NotifyConfig struct {
	Webhooks       map[string]string `yaml:"webhooks"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

func (n NotifyConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}

	if strings.TrimSpace(cfg.Identity.Keyfile) == "" {
		return fmt.Errorf("identity keyfile is required")
	}

	if cfg.Notify.TimeoutSeconds < 0 {
		return fmt.Errorf("notify timeout must not be negative")
	}
	for id, endpoint := range cfg.Notify.Webhooks {
		if !agent.ID(id).Valid() {
			return fmt.Errorf("webhook key is not a valid agent id: %s", id)
		}
		parsed, err := url.Parse(endpoint)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("invalid webhook endpoint for %s: %s", id, endpoint)
		}
	}

	return nil
}
