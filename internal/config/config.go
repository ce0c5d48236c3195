// Package config provides configuration loading and structs for the Lexfold server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Search     SearchConfig     `yaml:"search"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Schema     SchemaConfig     `yaml:"schema"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for database and indices.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	BleveIndexPath  string `yaml:"bleve_index_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// TemplatesConfig holds template directory settings.
type TemplatesConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
	Watch      bool     `yaml:"watch"`
}

// EmbeddingConfig holds ONNX embedder settings.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds hybrid search settings.
type SearchConfig struct {
	DefaultLimit    int     `yaml:"default_limit"`
	MaxLimit        int     `yaml:"max_limit"`
	TopKCandidates  int     `yaml:"top_k_candidates"`
	TitleBoost      float64 `yaml:"title_boost"`
	FullTextWeight  float64 `yaml:"full_text_weight"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	WeightTolerance float64 `yaml:"weight_tolerance"`
	SuggestLimit    int     `yaml:"suggest_limit"`
}

// ExtractionConfig holds entity extraction settings.
type ExtractionConfig struct {
	SummaryBudget int        `yaml:"summary_budget"`
	Risk          RiskConfig `yaml:"risk"`
	// Workers bounds the background extraction pool.
	Workers int `yaml:"workers"`
}

// RiskConfig holds the risk-scoring weights. All weights are points added to
// (or subtracted from) the base score; the final score is clamped to [0,100].
type RiskConfig struct {
	Base                  int `yaml:"base"`
	UnlimitedLiability    int `yaml:"unlimited_liability"`
	ShortCurePeriod       int `yaml:"short_cure_period"`
	NoLiabilityCap        int `yaml:"no_liability_cap"`
	Insurance             int `yaml:"insurance"`
	MutualIndemnification int `yaml:"mutual_indemnification"`
	LiabilityCap          int `yaml:"liability_cap"`
	// CurePeriodThresholdDays: notice-to-cure periods shorter than this add points.
	CurePeriodThresholdDays int `yaml:"cure_period_threshold_days"`
}

// SchemaConfig holds schema inference policy settings.
type SchemaConfig struct {
	// RequiredSections lists section-name substrings whose fields default to required.
	RequiredSections []string `yaml:"required_sections"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
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

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Templates.Directory != "" {
		cfg.Templates.Directory = expandPath(cfg.Templates.Directory, configDir)
	}

	return &cfg, nil
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
