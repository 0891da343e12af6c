// Package config provides configuration loading for ontoscope.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/ontoscope/pkg/source"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// Config is the complete ontoscope configuration.
type Config struct {
	Source   SourceConfig          `yaml:"source"`
	GitHub   GitHubConfig          `yaml:"github"`
	Graph    GraphConfig           `yaml:"graph"`
	Server   ServerConfig          `yaml:"server"`
	Output   OutputConfig          `yaml:"output"`
	Prefixes []store.PrefixMapping `yaml:"prefixes"`
	LogLevel string                `yaml:"log_level"`
}

// SourceConfig selects the ontology to load.
type SourceConfig struct {
	// Location is a local file or directory, or github:owner/repo@branch:dir.
	Location string `yaml:"location"`
	// Pattern is the doublestar glob documents must match (default: **/*.ttl).
	Pattern string `yaml:"pattern"`
	// Document restricts loading to one document name or path (empty = all).
	Document string `yaml:"document"`
	// Watch reloads local sources when their files change.
	Watch bool `yaml:"watch"`
}

// GitHubConfig configures remote sources.
type GitHubConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	RawBaseURL string `yaml:"raw_base_url"`
	// TokenEnv names the environment variable holding an API token.
	TokenEnv string `yaml:"token_env"`
	// CacheDir stores raw downloads (empty = no cache).
	CacheDir string        `yaml:"cache_dir"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// RequestInterval is the minimum spacing between API requests.
	RequestInterval time.Duration `yaml:"request_interval"`
	Timeout         time.Duration `yaml:"timeout"`
}

// GraphConfig bounds hierarchy traversals.
type GraphConfig struct {
	DefaultDepth int `yaml:"default_depth"`
	MaxDepth     int `yaml:"max_depth"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OutputConfig configures CLI rendering.
type OutputConfig struct {
	// Format is table or json.
	Format string `yaml:"format"`
	// Delimiter joins multi-valued table cells.
	Delimiter string `yaml:"delimiter"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "ontoscope")
	}

	return &Config{
		Source: SourceConfig{
			Location: "github:dfo-pacific-science/dfo-salmon-ontology@main:ontology",
			Pattern:  source.DefaultPattern,
		},
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			RawBaseURL: "https://raw.githubusercontent.com",
			TokenEnv:   "GITHUB_TOKEN",
			CacheDir:   cacheDir,
			CacheTTL:   time.Hour,
			Timeout:    30 * time.Second,
		},
		Graph: GraphConfig{
			DefaultDepth: 2,
			MaxDepth:     10,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Format:    "table",
			Delimiter: ", ",
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Location) == "" {
		return fmt.Errorf("source.location is required")
	}
	if c.Graph.DefaultDepth < 0 {
		return fmt.Errorf("graph.default_depth must be non-negative")
	}
	if c.Graph.MaxDepth < c.Graph.DefaultDepth {
		return fmt.Errorf("graph.max_depth (%d) must be at least graph.default_depth (%d)", c.Graph.MaxDepth, c.Graph.DefaultDepth)
	}
	if c.GitHub.CacheTTL < 0 {
		return fmt.Errorf("github.cache_ttl must be non-negative")
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be table or json, got %q", c.Output.Format)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	for _, mapping := range c.Prefixes {
		if mapping.Prefix == "" || mapping.Namespace == "" {
			return fmt.Errorf("prefixes entries need both prefix and namespace")
		}
	}
	return nil
}

// PrefixMap returns the default prefixes plus the configured ones.
func (c *Config) PrefixMap() *store.PrefixMap {
	options := make([]store.PrefixOption, 0, len(c.Prefixes))
	for _, mapping := range c.Prefixes {
		options = append(options, store.WithPrefix(mapping.Prefix, mapping.Namespace))
	}
	return store.NewPrefixMap(options...)
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return parsed, nil
}

// Overlay applies the keys set in a YAML document onto c. Keys the document
// does not mention keep their current values; keys it sets replace them,
// zero values included. Prefixes accumulate across layers. On error c is
// left unchanged.
func (c *Config) Overlay(data []byte) error {
	next := *c
	next.Prefixes = nil
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	prefixes := make([]store.PrefixMapping, 0, len(c.Prefixes)+len(next.Prefixes))
	prefixes = append(prefixes, c.Prefixes...)
	next.Prefixes = append(prefixes, next.Prefixes...)
	*c = next
	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
