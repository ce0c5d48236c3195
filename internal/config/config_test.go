package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.FullTextWeight != 0.6 || cfg.Search.SemanticWeight != 0.4 {
		t.Errorf("default weights: got %f/%f", cfg.Search.FullTextWeight, cfg.Search.SemanticWeight)
	}
	if cfg.Search.TitleBoost != 2.0 {
		t.Errorf("default title boost: got %f", cfg.Search.TitleBoost)
	}
	if cfg.Extraction.Risk.Base != 50 {
		t.Errorf("default risk base: got %d", cfg.Extraction.Risk.Base)
	}
	if cfg.Extraction.Risk.CurePeriodThresholdDays != 15 {
		t.Errorf("default cure threshold: got %d", cfg.Extraction.Risk.CurePeriodThresholdDays)
	}
	if len(cfg.Schema.RequiredSections) != 3 {
		t.Errorf("default required sections: got %v", cfg.Schema.RequiredSections)
	}
}

func TestApplyDefaultsKeepsExplicitWeights(t *testing.T) {
	cfg := &Config{}
	cfg.Search.FullTextWeight = 1.0
	ApplyDefaults(cfg)
	if cfg.Search.FullTextWeight != 1.0 || cfg.Search.SemanticWeight != 0 {
		t.Errorf("explicit weights overwritten: %f/%f", cfg.Search.FullTextWeight, cfg.Search.SemanticWeight)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/lexfold.db
templates:
  directory: ./templates
search:
  full_text_weight: 0.7
  semantic_weight: 0.3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Search.FullTextWeight != 0.7 {
		t.Errorf("full text weight: got %f", cfg.Search.FullTextWeight)
	}
	wantDB := filepath.Join(dir, "data/lexfold.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database path not expanded: got %q want %q", cfg.Storage.DatabasePath, wantDB)
	}
	wantTpl := filepath.Join(dir, "templates")
	if cfg.Templates.Directory != wantTpl {
		t.Errorf("templates dir not expanded: got %q want %q", cfg.Templates.Directory, wantTpl)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}
