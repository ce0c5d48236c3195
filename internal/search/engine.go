package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/internal/embedding"
	"github.com/lexfold/lexfold/internal/index"
	"github.com/lexfold/lexfold/internal/keyword"
	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/vector"
)

// Engine answers hybrid search queries. The lexical and semantic components
// run concurrently; their scores are min-max normalized within the candidate
// set and fused with the query weights.
type Engine struct {
	catalog      *index.Catalog
	keywordIndex keyword.Index
	vectorIndex  vector.Index
	embedder     embedding.Embedder
	cfg          *config.SearchConfig
	logger       *zap.Logger
}

// NewEngine creates a search engine with the given collaborators.
func NewEngine(
	catalog *index.Catalog,
	keywordIndex keyword.Index,
	vectorIndex vector.Index,
	embedder embedding.Embedder,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		catalog:      catalog,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
		cfg:          cfg,
		logger:       logger,
	}
}

// Query validates q, runs the components its mode calls for, and returns
// fused, paginated results scoped to tenantID.
func (e *Engine) Query(ctx context.Context, tenantID string, q *models.SearchQuery) (*models.SearchResponse, error) {
	started := time.Now()

	defaults := models.Weights{FullText: e.cfg.FullTextWeight, Semantic: e.cfg.SemanticWeight}
	if err := q.Validate(defaults, e.cfg.WeightTolerance); err != nil {
		return nil, err
	}
	weights := *q.Weights

	var (
		lexicalHits  []*keyword.Result
		semanticHits []*vector.Result
		lexicalErr   error
		semanticErr  error
		degraded     bool
		wg           sync.WaitGroup
	)

	if weights.FullText > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts := &keyword.SearchOptions{TitleBoost: e.cfg.TitleBoost}
			lexicalHits, lexicalErr = e.keywordIndex.Search(ctx, tenantID, q.Query, e.cfg.TopKCandidates, opts)
		}()
	}

	if weights.Semantic > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryVec, err := e.embedder.Embed(ctx, q.Query)
			if err != nil {
				// The embedding provider is allowed to fail without
				// failing the query: drop the semantic component and
				// report degraded results.
				e.logger.Warn("query embedding failed, degrading to lexical",
					zap.String("query", q.Query), zap.Error(err))
				degraded = true
				return
			}
			semanticHits, semanticErr = e.vectorIndex.Search(ctx, queryVec, e.cfg.TopKCandidates)
		}()
	}

	wg.Wait()
	if lexicalErr != nil {
		return nil, fmt.Errorf("lexical search: %w", lexicalErr)
	}
	if semanticErr != nil {
		return nil, fmt.Errorf("semantic search: %w", semanticErr)
	}
	if degraded {
		weights = models.Weights{FullText: 1.0}
	}

	lexicalRaw := make(map[string]float64, len(lexicalHits))
	for _, h := range lexicalHits {
		lexicalRaw[h.Key] = h.Score
	}
	semanticRaw := make(map[string]float64, len(semanticHits))
	for _, h := range semanticHits {
		if tenantVisible(h.Key, tenantID) {
			semanticRaw[h.Key] = h.Score
		}
	}

	updatedAt := make(map[string]time.Time, len(lexicalRaw)+len(semanticRaw))
	collectUpdated := func(keys map[string]float64) {
		for key := range keys {
			if _, seen := updatedAt[key]; seen {
				continue
			}
			if doc, ok := e.catalog.Get(key); ok {
				updatedAt[key] = doc.UpdatedAt
			}
		}
	}
	collectUpdated(lexicalRaw)
	collectUpdated(semanticRaw)

	fused := Fuse(MinMaxNormalize(lexicalRaw), MinMaxNormalize(semanticRaw), weights, updatedAt)

	start := q.Offset
	if start > len(fused) {
		start = len(fused)
	}
	end := start + q.Limit
	if end > len(fused) {
		end = len(fused)
	}

	response := &models.SearchResponse{
		Results:   make([]*models.SearchResult, 0, end-start),
		Total:     len(fused),
		QueryTime: time.Since(started).Milliseconds(),
		Query:     q.Query,
		Degraded:  degraded,
	}
	for i, r := range fused[start:end] {
		doc, ok := e.catalog.Get(r.Key)
		if !ok {
			// Index and catalog can briefly disagree while a delete is
			// in flight; skip rather than return a hollow result.
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Document:      doc,
			Score:         r.Score,
			LexicalScore:  r.LexicalScore,
			SemanticScore: r.SemanticScore,
			Rank:          start + i + 1,
		})
	}
	return response, nil
}

// DocCount returns the number of documents in the lexical index.
func (e *Engine) DocCount() (uint64, error) {
	return e.keywordIndex.DocCount()
}

// Suggest returns query completions for prefix within the tenant's view.
func (e *Engine) Suggest(ctx context.Context, tenantID, prefix string) ([]string, error) {
	return e.keywordIndex.Suggest(ctx, tenantID, prefix, e.cfg.SuggestLimit)
}

// Facets returns aggregate counts over the tenant's view.
func (e *Engine) Facets(ctx context.Context, tenantID string) (*models.Facets, error) {
	return e.keywordIndex.Facets(ctx, tenantID)
}

// tenantVisible reports whether the document key belongs to tenantID or to
// the global scope. The vector index is shared across tenants, so its hits
// are filtered here by the tenant segment of the key.
func tenantVisible(key, tenantID string) bool {
	owner, _, found := strings.Cut(key, "|")
	if !found {
		return false
	}
	return owner == "" || owner == tenantID
}
