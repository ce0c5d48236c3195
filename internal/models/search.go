package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// EntityType is the kind of entity behind a search document.
type EntityType string

const (
	EntityContract EntityType = "contract"
	EntityClause   EntityType = "clause"
)

// SearchMode selects the scoring components for a query.
type SearchMode string

const (
	ModeLexical  SearchMode = "lexical"
	ModeSemantic SearchMode = "semantic"
	ModeHybrid   SearchMode = "hybrid"

	// ModeFullText is an accepted alias for ModeLexical, matching the
	// weight field name on the wire.
	ModeFullText SearchMode = "full_text"
)

// ErrInvalidWeights is returned when hybrid weights do not sum to 1.0 within tolerance.
var ErrInvalidWeights = errors.New("search weights must sum to 1.0")

// SearchDocument maps (tenant_id, entity_type, entity_id) to searchable content.
// Lifecycle: created or replaced whole on entity create/update, removed on
// delete. Never partially patched, so keywords and embedding cannot drift.
type SearchDocument struct {
	// TenantID scopes the document; empty means global (visible to all tenants).
	TenantID   string     `json:"tenant_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Keywords   []string   `json:"keywords,omitempty"`
	// Embedding is a fixed-length vector; nil when the embedding provider was
	// unavailable, in which case the document scores 0 for the semantic component.
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the logical identity of the document within the index.
func (d *SearchDocument) Key() string {
	return DocumentKey(d.TenantID, d.EntityType, d.EntityID)
}

// DocumentKey builds the composite index key for a (tenant, entity_type, entity_id) triple.
func DocumentKey(tenantID string, entityType EntityType, entityID string) string {
	return tenantID + "|" + string(entityType) + "|" + entityID
}

// Weights are the hybrid fusion weights for the lexical and semantic components.
type Weights struct {
	FullText float64 `json:"full_text"`
	Semantic float64 `json:"semantic"`
}

// SearchQuery is a search request against the hybrid index.
type SearchQuery struct {
	Query   string     `json:"query"`
	Mode    SearchMode `json:"mode,omitempty"`
	Weights *Weights   `json:"weights,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	Offset  int        `json:"offset,omitempty"`
}

// Validate normalizes the query and resolves the effective weights for its
// mode. Weight validation happens here, before any scoring. tolerance bounds
// how far the hybrid weights may drift from summing to 1.0.
func (q *SearchQuery) Validate(defaults Weights, tolerance float64) error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Mode == "" {
		q.Mode = ModeHybrid
	}
	switch q.Mode {
	case ModeLexical, ModeFullText:
		q.Mode = ModeLexical
		q.Weights = &Weights{FullText: 1.0}
	case ModeSemantic:
		q.Weights = &Weights{Semantic: 1.0}
	case ModeHybrid:
		if q.Weights == nil {
			w := defaults
			q.Weights = &w
		}
		if math.Abs(q.Weights.FullText+q.Weights.Semantic-1.0) > tolerance {
			return fmt.Errorf("%w: full_text=%v semantic=%v", ErrInvalidWeights, q.Weights.FullText, q.Weights.Semantic)
		}
	default:
		return fmt.Errorf("unknown search mode %q", q.Mode)
	}
	return nil
}

// SearchResult is a single search hit with component scores.
type SearchResult struct {
	Document      *SearchDocument `json:"document"`
	Score         float64         `json:"score"`
	LexicalScore  float64         `json:"lexical_score"`
	SemanticScore float64         `json:"semantic_score"`
	Rank          int             `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
	// Degraded reports that the semantic component was skipped because the
	// embedding provider failed; scoring fell back to lexical-only.
	Degraded bool `json:"degraded,omitempty"`
}

// DateRangeCount is one bucket of the created_at histogram facet.
type DateRangeCount struct {
	Name  string     `json:"name"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
	Count int        `json:"count"`
}

// Facets are tenant-scoped aggregate counts for result filtering.
type Facets struct {
	EntityTypes map[string]int   `json:"entity_types"`
	Keywords    map[string]int   `json:"keywords"`
	CreatedAt   []DateRangeCount `json:"created_at"`
}
