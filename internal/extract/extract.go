// Package extract derives structured metadata from free-form contract text.
//
// The engine is a small ordered pipeline of pure extractor functions, each
// scanning the full text independently. Input text is untrusted free-form
// content, so a failure in one extractor never blocks the others: each runs
// panic-isolated and defaults to an empty or absent result.
package extract

import (
	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/redact"
)

// Engine runs the extraction pipeline.
type Engine struct {
	risk          config.RiskConfig
	summaryBudget int
	redactor      *redact.Engine
}

// NewEngine creates an extraction engine. cfg supplies the risk-scoring
// weights and summary budget; zero values fall back to the baseline policy.
func NewEngine(cfg config.ExtractionConfig) *Engine {
	if cfg.SummaryBudget == 0 {
		cfg.SummaryBudget = 500
	}
	riskDefaults(&cfg.Risk)
	return &Engine{
		risk:          cfg.Risk,
		summaryBudget: cfg.SummaryBudget,
		redactor:      redact.NewEngine(),
	}
}

func riskDefaults(r *config.RiskConfig) {
	base := config.Config{}
	config.ApplyDefaults(&base)
	d := base.Extraction.Risk
	if r.Base == 0 {
		r.Base = d.Base
	}
	if r.UnlimitedLiability == 0 {
		r.UnlimitedLiability = d.UnlimitedLiability
	}
	if r.ShortCurePeriod == 0 {
		r.ShortCurePeriod = d.ShortCurePeriod
	}
	if r.NoLiabilityCap == 0 {
		r.NoLiabilityCap = d.NoLiabilityCap
	}
	if r.Insurance == 0 {
		r.Insurance = d.Insurance
	}
	if r.MutualIndemnification == 0 {
		r.MutualIndemnification = d.MutualIndemnification
	}
	if r.LiabilityCap == 0 {
		r.LiabilityCap = d.LiabilityCap
	}
	if r.CurePeriodThresholdDays == 0 {
		r.CurePeriodThresholdDays = d.CurePeriodThresholdDays
	}
}

// Extract runs every extractor over text and assembles the metadata. It never
// returns an error: a panicking extractor leaves its field empty.
func (e *Engine) Extract(text string) *models.ExtractedMetadata {
	meta := &models.ExtractedMetadata{
		Parties:           []string{},
		Currency:          "USD",
		IdentifiedClauses: []string{},
	}

	safely(func() {
		meta.Parties = ExtractParties(text)
	})
	safely(func() {
		if value, currency, ok := ExtractValue(text); ok {
			meta.ContractValue = &value
			meta.Currency = currency
		}
	})
	safely(func() {
		meta.EffectiveDate, meta.ExpirationDate = ExtractDates(text)
	})
	safely(func() {
		meta.IdentifiedClauses = ClassifyClauses(text)
	})
	safely(func() {
		score := ScoreRisk(text, e.risk)
		meta.RiskScore = &score
	})
	safely(func() {
		meta.Summary = Summarize(text, e.summaryBudget)
	})
	safely(func() {
		meta.RedactionCounts = e.redactor.Scan(text)
	})
	return meta
}

// safely runs fn, swallowing panics so one extractor cannot take down the rest.
func safely(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
