// Package config provides configuration loading and structs for the bunseki server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Segmenter names accepted in text.segmenter.
const (
	SegmenterGSE    = "gse"
	SegmenterBleve  = "bleve"
	SegmenterSimple = "simple"
)

// Vocabulary scopes accepted in search.vocabulary_scope.
const (
	// ScopeCorpus builds the search vocabulary from every accessible document.
	ScopeCorpus = "corpus"
	// ScopeQuery restricts the search vocabulary to the query's own tokens.
	ScopeQuery = "query"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Text    TextConfig    `yaml:"text"`
	Search  SearchConfig  `yaml:"search"`
	Cluster ClusterConfig `yaml:"cluster"`
	Import  ImportConfig  `yaml:"import"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the document database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// TextConfig selects the segmenter and stopword additions used by the tokenizer.
type TextConfig struct {
	Segmenter      string   `yaml:"segmenter"`
	DictionaryPath string   `yaml:"dictionary_path"`
	ExtraStopwords []string `yaml:"extra_stopwords"`
}

// SearchConfig holds relevance search settings.
type SearchConfig struct {
	ResultLimit     int    `yaml:"result_limit"`
	VocabularyScope string `yaml:"vocabulary_scope"`
}

// ClusterConfig holds k-means settings.
type ClusterConfig struct {
	DefaultK      int   `yaml:"default_k"`
	MaxIterations int   `yaml:"max_iterations"`
	Seed          int64 `yaml:"seed"`
	// ContentPrefix is how many characters of each document's content feed clustering.
	ContentPrefix int `yaml:"content_prefix"`
	ThemeCount    int `yaml:"theme_count"`
}

// ImportConfig holds defaults for importing files into the document store.
type ImportConfig struct {
	Extensions []string `yaml:"extensions"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	// Owner is the principal that owns documents imported from watched directories.
	Owner      string   `yaml:"owner"`
	Extensions []string `yaml:"extensions"`
	Recursive  *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, applies defaults and validates.
// Returns an error if the file cannot be read, parsed or holds unknown option values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Text.DictionaryPath != "" {
		cfg.Text.DictionaryPath = expandPath(cfg.Text.DictionaryPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects option values the engine does not understand.
func (c *Config) Validate() error {
	switch c.Text.Segmenter {
	case SegmenterGSE, SegmenterBleve, SegmenterSimple:
	default:
		return fmt.Errorf("invalid text.segmenter %q (want %s, %s or %s)",
			c.Text.Segmenter, SegmenterGSE, SegmenterBleve, SegmenterSimple)
	}
	switch c.Search.VocabularyScope {
	case ScopeCorpus, ScopeQuery:
	default:
		return fmt.Errorf("invalid search.vocabulary_scope %q (want %s or %s)",
			c.Search.VocabularyScope, ScopeCorpus, ScopeQuery)
	}
	if c.Cluster.DefaultK <= 0 {
		return fmt.Errorf("invalid cluster.default_k %d: must be positive", c.Cluster.DefaultK)
	}
	if len(c.Watch.Directories) > 0 && c.Watch.Owner == "" {
		return fmt.Errorf("watch.owner is required when watch.directories is set")
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
