package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexfold/lexfold/internal/models"
)

// SQLiteStorage implements Storage using SQLite in WAL mode.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a database at dbPath and initializes the
// schema. Parent directories are created if missing.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		title TEXT,
		text TEXT NOT NULL,
		template_type TEXT,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_contracts_tenant ON contracts(tenant_id);

	CREATE TABLE IF NOT EXISTS clauses (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		category TEXT,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS templates (
		filename TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		content TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (tenant_id, filename)
	);

	CREATE TABLE IF NOT EXISTS schema_cache (
		tenant_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		schema TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL,
		PRIMARY KEY (tenant_id, filename)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveContract upserts a contract. The metadata column is replaced whole.
func (s *SQLiteStorage) SaveContract(ctx context.Context, contract *models.Contract) error {
	var metadataJSON []byte
	if contract.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(contract.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	now := time.Now()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	contract.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contracts (id, tenant_id, title, text, template_type, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, id) DO UPDATE SET
			title = excluded.title,
			text = excluded.text,
			template_type = excluded.template_type,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		contract.ID, contract.TenantID, contract.Title, contract.Text,
		string(contract.TemplateType), nullableString(metadataJSON), contract.CreatedAt, contract.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save contract %q: %w", contract.ID, err)
	}
	return nil
}

// GetContract returns the tenant's contract by ID.
func (s *SQLiteStorage) GetContract(ctx context.Context, tenantID, id string) (*models.Contract, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, title, text, template_type, metadata, created_at, updated_at
		 FROM contracts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	contract, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contract %q: %w", id, ErrNotFound)
	}
	return contract, err
}

// ListContracts returns the tenant's contracts, most recently updated first.
func (s *SQLiteStorage) ListContracts(ctx context.Context, tenantID string) ([]*models.Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, title, text, template_type, metadata, created_at, updated_at
		 FROM contracts WHERE tenant_id = ? ORDER BY updated_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return contracts, rows.Err()
}

// DeleteContract removes the tenant's contract by ID.
func (s *SQLiteStorage) DeleteContract(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contracts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete contract %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contract %q: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*models.Contract, error) {
	var contract models.Contract
	var templateType string
	var metadataJSON sql.NullString
	err := row.Scan(&contract.ID, &contract.TenantID, &contract.Title, &contract.Text,
		&templateType, &metadataJSON, &contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return nil, err
	}
	contract.TemplateType = models.TemplateType(templateType)
	if metadataJSON.Valid && metadataJSON.String != "" {
		contract.Metadata = &models.ExtractedMetadata{}
		if err := json.Unmarshal([]byte(metadataJSON.String), contract.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &contract, nil
}

// SaveClause upserts a clause.
func (s *SQLiteStorage) SaveClause(ctx context.Context, clause *models.Clause) error {
	if clause.CreatedAt.IsZero() {
		clause.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clauses (id, tenant_id, title, content, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			category = excluded.category`,
		clause.ID, clause.TenantID, clause.Title, clause.Content, clause.Category, clause.CreatedAt)
	if err != nil {
		return fmt.Errorf("save clause %q: %w", clause.ID, err)
	}
	return nil
}

// GetClause reads the tenant's clause, falling back to a global one.
func (s *SQLiteStorage) GetClause(ctx context.Context, tenantID, id string) (*models.Clause, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, title, content, category, created_at
		 FROM clauses WHERE id = ? AND tenant_id IN (?, '')
		 ORDER BY tenant_id DESC LIMIT 1`, id, tenantID)
	var clause models.Clause
	err := row.Scan(&clause.ID, &clause.TenantID, &clause.Title, &clause.Content,
		&clause.Category, &clause.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clause %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &clause, nil
}

// ListClauses returns the tenant's clauses plus the global ones.
func (s *SQLiteStorage) ListClauses(ctx context.Context, tenantID string) ([]*models.Clause, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, title, content, category, created_at
		 FROM clauses WHERE tenant_id IN (?, '') ORDER BY title`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	var clauses []*models.Clause
	for rows.Next() {
		var clause models.Clause
		if err := rows.Scan(&clause.ID, &clause.TenantID, &clause.Title, &clause.Content,
			&clause.Category, &clause.CreatedAt); err != nil {
			return nil, err
		}
		clauses = append(clauses, &clause)
	}
	return clauses, rows.Err()
}

// SaveTemplate upserts a template.
func (s *SQLiteStorage) SaveTemplate(ctx context.Context, tmpl *models.Template) error {
	tmpl.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (filename, tenant_id, content, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (tenant_id, filename) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		tmpl.Filename, tmpl.TenantID, tmpl.Content, tmpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save template %q: %w", tmpl.Filename, err)
	}
	return nil
}

// GetTemplate reads the tenant's template, falling back to a global one.
func (s *SQLiteStorage) GetTemplate(ctx context.Context, tenantID, filename string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT filename, tenant_id, content, updated_at
		 FROM templates WHERE filename = ? AND tenant_id IN (?, '')
		 ORDER BY tenant_id DESC LIMIT 1`, filename, tenantID)
	var tmpl models.Template
	err := row.Scan(&tmpl.Filename, &tmpl.TenantID, &tmpl.Content, &tmpl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ListTemplates returns the tenant's templates plus the global ones.
func (s *SQLiteStorage) ListTemplates(ctx context.Context, tenantID string) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, tenant_id, content, updated_at
		 FROM templates WHERE tenant_id IN (?, '') ORDER BY filename`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		var tmpl models.Template
		if err := rows.Scan(&tmpl.Filename, &tmpl.TenantID, &tmpl.Content, &tmpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &tmpl)
	}
	return templates, rows.Err()
}

// GetCachedSchema returns the cached schema for (tenant, filename) when the
// stored fingerprint matches. A stale fingerprint reads as a miss.
func (s *SQLiteStorage) GetCachedSchema(ctx context.Context, tenantID, filename, fingerprint string) (*models.TemplateSchema, error) {
	var schemaJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT schema FROM schema_cache
		 WHERE tenant_id = ? AND filename = ? AND fingerprint = ?`,
		tenantID, filename, fingerprint).Scan(&schemaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schema cache for %q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var schema models.TemplateSchema
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return nil, fmt.Errorf("unmarshal cached schema: %w", err)
	}
	return &schema, nil
}

// PutCachedSchema stores the schema for (tenant, filename), replacing any
// previous entry regardless of its fingerprint.
func (s *SQLiteStorage) PutCachedSchema(ctx context.Context, tenantID, filename, fingerprint string, schema *models.TemplateSchema) error {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO schema_cache (tenant_id, filename, fingerprint, schema, cached_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, filename) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			schema = excluded.schema,
			cached_at = excluded.cached_at`,
		tenantID, filename, fingerprint, string(schemaJSON), time.Now())
	if err != nil {
		return fmt.Errorf("cache schema %q: %w", filename, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
