// Package storage persists contracts, clauses, templates and cached schemas.
package storage

import (
	"context"
	"errors"

	"github.com/lexfold/lexfold/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage defines the persistence operations. All contract reads and writes
// are tenant-scoped. Clause and template reads fall back to global records
// (empty tenant); tenant-scoped writes never touch global records.
type Storage interface {
	SaveContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, tenantID, id string) (*models.Contract, error)
	ListContracts(ctx context.Context, tenantID string) ([]*models.Contract, error)
	DeleteContract(ctx context.Context, tenantID, id string) error

	SaveClause(ctx context.Context, clause *models.Clause) error
	// GetClause reads the tenant's clause with the given ID, falling back
	// to a global clause of the same ID.
	GetClause(ctx context.Context, tenantID, id string) (*models.Clause, error)
	ListClauses(ctx context.Context, tenantID string) ([]*models.Clause, error)

	SaveTemplate(ctx context.Context, tmpl *models.Template) error
	GetTemplate(ctx context.Context, tenantID, filename string) (*models.Template, error)
	ListTemplates(ctx context.Context, tenantID string) ([]*models.Template, error)

	// Schema cache, keyed by (tenant, filename) and guarded by a content
	// fingerprint: a cached schema is only valid for the exact template
	// text it was inferred from.
	GetCachedSchema(ctx context.Context, tenantID, filename, fingerprint string) (*models.TemplateSchema, error)
	PutCachedSchema(ctx context.Context, tenantID, filename, fingerprint string, schema *models.TemplateSchema) error

	Close() error
}
