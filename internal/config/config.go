// Package config handles global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/citegraph/gref/internal/eutils"
	"github.com/citegraph/gref/internal/fetcher"
	"github.com/citegraph/gref/internal/frontier"
	"github.com/citegraph/gref/internal/ratelimit"
	"github.com/citegraph/gref/internal/similarity"
	"github.com/citegraph/gref/internal/storage"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/gref/config.yml.
type Config struct {
	DataDir string `yaml:"data_dir,omitempty"`

	// E-utilities
	APIKey      string        `yaml:"api_key,omitempty"`
	Email       string        `yaml:"email,omitempty" validate:"omitempty,email"`
	Tool        string        `yaml:"tool,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty" validate:"omitempty,url"`
	MinInterval time.Duration `yaml:"min_interval,omitempty" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	Attempts    int           `yaml:"attempts,omitempty" validate:"gte=0,lte=10"`

	// Crawling
	Concurrency int     `yaml:"concurrency,omitempty" validate:"gte=0"`
	BatchSize   int     `yaml:"batch_size,omitempty" validate:"gte=0"`
	Similarity  string  `yaml:"similarity,omitempty" validate:"omitempty,oneof=weighted distinct jaccard"`
	Seed        *uint64 `yaml:"seed,omitempty"`

	Debug bool `yaml:"debug,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "gref"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables that override the config file.
const (
	EnvAPIKey  = "NCBI_API_KEY"
	EnvEmail   = "NCBI_EMAIL"
	EnvDataDir = "GREF_DATA_DIR"
)

var validate = validator.New()

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/gref/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path (Path() when empty), applies environment
// overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvEmail); v != "" {
		c.Email = v
	}
	if v := getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = storage.DefaultDataDir
	}
	c.DataDir = expandTilde(c.DataDir)
	if c.Tool == "" {
		c.Tool = eutils.DefaultTool
	}
	if c.BaseURL == "" {
		c.BaseURL = eutils.BaseURL
	}
	if c.MinInterval == 0 {
		c.MinInterval = ratelimit.DefaultInterval
	}
	if c.Timeout == 0 {
		c.Timeout = eutils.DefaultTimeout
	}
	if c.Attempts == 0 {
		c.Attempts = eutils.DefaultAttempts
	}
	if c.Concurrency == 0 {
		c.Concurrency = fetcher.DefaultConcurrency
	}
	if c.BatchSize == 0 {
		c.BatchSize = frontier.DefaultBatchSize
	}
	if c.Similarity == "" {
		c.Similarity = similarity.Weighted.String()
	}
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SimilarityMode returns the configured edge-weight mode.
func (c *Config) SimilarityMode() similarity.Mode {
	mode, err := similarity.ParseMode(c.Similarity)
	if err != nil {
		return similarity.Weighted
	}
	return mode
}

// expandTilde replaces a leading ~ with the home directory.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
