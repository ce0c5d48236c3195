// Package keyword provides the lexical (full-text) side of hybrid search.
package keyword

import (
	"context"

	"github.com/lexfold/lexfold/internal/models"
)

// SearchOptions are optional lexical search parameters. Nil means defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution of title matches.
	// Values > 1 make title hits rank above body hits. 0 means no boost.
	TitleBoost float64
	// EntityType restricts results to one entity type when non-empty.
	EntityType models.EntityType
}

// Index defines lexical search operations over search documents. All reads
// are tenant-scoped: a tenant sees its own documents plus global ones.
type Index interface {
	Index(ctx context.Context, doc *models.SearchDocument) error
	Search(ctx context.Context, tenantID, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Suggest(ctx context.Context, tenantID, prefix string, limit int) ([]string, error)
	Facets(ctx context.Context, tenantID string) (*models.Facets, error)
	Delete(ctx context.Context, key string) error
	DocCount() (uint64, error)
	Close() error
}

// Result is a single lexical hit. Key is the document key and Score is the
// raw relevance score, unnormalized.
type Result struct {
	Key   string
	Score float64
}
