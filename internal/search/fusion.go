// Package search runs hybrid (lexical + semantic) queries over the document
// catalog and fuses the component scores.
package search

import (
	"sort"
	"time"

	"github.com/lexfold/lexfold/internal/models"
)

// FusedResult holds a document key and its fused component scores.
type FusedResult struct {
	Key           string
	Score         float64
	LexicalScore  float64
	SemanticScore float64
}

// MinMaxNormalize rescales raw scores to [0, 1] within the candidate set.
// When all scores are equal they all map to 1 if positive, 0 otherwise, so a
// single-candidate set does not read as a perfect or a worthless match by
// accident of the formula.
func MinMaxNormalize(raw map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(raw))
	if len(raw) == 0 {
		return normalized
	}
	first := true
	var min, max float64
	for _, s := range raw {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		flat := 0.0
		if max > 0 {
			flat = 1.0
		}
		for k := range raw {
			normalized[k] = flat
		}
		return normalized
	}
	span := max - min
	for k, s := range raw {
		normalized[k] = (s - min) / span
	}
	return normalized
}

// Fuse merges normalized lexical and semantic score maps using the given
// weights. A document missing from one component contributes 0 for it.
// Results sort by fused score descending; ties break by most recently
// updated, then by key for determinism.
func Fuse(lexical, semantic map[string]float64, weights models.Weights, updatedAt map[string]time.Time) []*FusedResult {
	merged := make(map[string]*FusedResult, len(lexical)+len(semantic))
	for key, score := range lexical {
		merged[key] = &FusedResult{Key: key, LexicalScore: score}
	}
	for key, score := range semantic {
		if r, ok := merged[key]; ok {
			r.SemanticScore = score
		} else {
			merged[key] = &FusedResult{Key: key, SemanticScore: score}
		}
	}

	results := make([]*FusedResult, 0, len(merged))
	for _, r := range merged {
		r.Score = weights.FullText*r.LexicalScore + weights.Semantic*r.SemanticScore
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ti, tj := updatedAt[results[i].Key], updatedAt[results[j].Key]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return results[i].Key < results[j].Key
	})
	return results
}
