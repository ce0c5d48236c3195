package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/lexfold/data/db/lexfold.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/lexfold/data/indices/bleve"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/lexfold/data/indices/vectors.bin"
	}
	if cfg.Templates.Extensions == nil {
		cfg.Templates.Extensions = []string{".txt", ".md"}
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/lexfold/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 100
	}
	if cfg.Search.TitleBoost == 0 {
		cfg.Search.TitleBoost = 2.0
	}
	if cfg.Search.FullTextWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.FullTextWeight = 0.6
		cfg.Search.SemanticWeight = 0.4
	}
	if cfg.Search.WeightTolerance == 0 {
		cfg.Search.WeightTolerance = 0.01
	}
	if cfg.Search.SuggestLimit == 0 {
		cfg.Search.SuggestLimit = 5
	}
	if cfg.Extraction.SummaryBudget == 0 {
		cfg.Extraction.SummaryBudget = 500
	}
	if cfg.Extraction.Workers == 0 {
		cfg.Extraction.Workers = 4
	}
	applyRiskDefaults(&cfg.Extraction.Risk)
	if cfg.Schema.RequiredSections == nil {
		cfg.Schema.RequiredSections = []string{"General", "Party", "Information"}
	}
}

// applyRiskDefaults fills the baseline risk-scoring weights. The taxonomy and
// weights are a reference policy, overridable per deployment.
func applyRiskDefaults(r *RiskConfig) {
	if r.Base == 0 {
		r.Base = 50
	}
	if r.UnlimitedLiability == 0 {
		r.UnlimitedLiability = 15
	}
	if r.ShortCurePeriod == 0 {
		r.ShortCurePeriod = 10
	}
	if r.NoLiabilityCap == 0 {
		r.NoLiabilityCap = 10
	}
	if r.Insurance == 0 {
		r.Insurance = 10
	}
	if r.MutualIndemnification == 0 {
		r.MutualIndemnification = 10
	}
	if r.LiabilityCap == 0 {
		r.LiabilityCap = 15
	}
	if r.CurePeriodThresholdDays == 0 {
		r.CurePeriodThresholdDays = 15
	}
}
