package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "/etc/libdoc/config.json"

// Config describes a documentation site: where library sources live and
// where generated docs and the search index go.
type Config struct {
	Site      string   `json:"site" yaml:"site"`
	OutputDir string   `json:"output_dir" yaml:"output_dir"`
	IndexDir  string   `json:"index_dir" yaml:"index_dir"`
	Roots     []string `json:"roots" yaml:"roots"`
	Exclude   []string `json:"exclude" yaml:"exclude"`
	DocFormat string   `json:"doc_format" yaml:"doc_format"`
}

func DefaultPath() string {
	if path := os.Getenv("LIBDOC_CONFIG_FILE"); path != "" {
		return path
	}
	return defaultConfigPath
}

// Load reads a JSON or YAML config, chosen by file extension.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Site == "" {
		return errors.New("config site is required")
	}
	if c.OutputDir == "" {
		return errors.New("config output_dir is required")
	}
	if len(c.Roots) == 0 {
		return errors.New("config roots is required")
	}
	return nil
}

func (c *Config) IndexPath() string {
	if c.IndexDir != "" {
		return c.IndexDir
	}
	return filepath.Join(c.OutputDir, "search.db")
}

func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site, "/")
}
