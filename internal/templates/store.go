// Package templates resolves template text and caches inferred schemas.
package templates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/schema"
	"github.com/lexfold/lexfold/internal/storage"
)

// ErrTemplateNotFound is returned when a template cannot be resolved for the
// tenant from disk or the database.
var ErrTemplateNotFound = errors.New("template not found")

// Store resolves templates and serves their inferred schemas. Resolution
// order: the tenant's uploaded template, then the shared template directory
// on disk, then a global uploaded template.
//
// Schemas are cached in two layers keyed by (tenant, filename) and guarded
// by a fingerprint of the template text: the schema is a pure function of
// that text, so a fingerprint match means the cached schema is exact.
type Store struct {
	dir        string
	extensions []string
	db         storage.Storage
	engine     *schema.Engine
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[string]*cachedSchema
}

type cachedSchema struct {
	fingerprint string
	schema      *models.TemplateSchema
}

// NewStore creates a template store over dir, backed by db for uploads and
// cached schemas. extensions filters which disk files count as templates;
// empty means .txt only.
func NewStore(dir string, extensions []string, db storage.Storage, engine *schema.Engine, logger *zap.Logger) *Store {
	if len(extensions) == 0 {
		extensions = []string{".txt"}
	}
	return &Store{
		dir:        dir,
		extensions: extensions,
		db:         db,
		engine:     engine,
		logger:     logger,
		cache:      make(map[string]*cachedSchema),
	}
}

// Text returns the template text for filename as the tenant sees it.
func (s *Store) Text(ctx context.Context, tenantID, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid template filename %q", filename)
	}

	if tenantID != "" {
		if tmpl, err := s.db.GetTemplate(ctx, tenantID, filename); err == nil && tmpl.TenantID == tenantID {
			return tmpl.Content, nil
		}
	}

	if s.dir != "" {
		content, err := os.ReadFile(filepath.Join(s.dir, filename))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read template %q: %w", filename, err)
		}
	}

	tmpl, err := s.db.GetTemplate(ctx, tenantID, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, filename)
		}
		return "", err
	}
	return tmpl.Content, nil
}

// Schema returns the inferred schema for the template, from cache when the
// template text has not changed since it was inferred.
func (s *Store) Schema(ctx context.Context, tenantID, filename string) (*models.TemplateSchema, error) {
	text, err := s.Text(ctx, tenantID, filename)
	if err != nil {
		return nil, err
	}
	fingerprint := Fingerprint(text)
	cacheKey := tenantID + "|" + filename

	s.mu.RLock()
	entry, ok := s.cache[cacheKey]
	s.mu.RUnlock()
	if ok && entry.fingerprint == fingerprint {
		return entry.schema, nil
	}

	if cached, err := s.db.GetCachedSchema(ctx, tenantID, filename, fingerprint); err == nil {
		s.remember(cacheKey, fingerprint, cached)
		return cached, nil
	}

	inferred := s.engine.Infer(text, filename)
	if err := s.db.PutCachedSchema(ctx, tenantID, filename, fingerprint, inferred); err != nil {
		// Cache persistence is best effort; the schema itself is good.
		s.logger.Warn("persisting schema cache failed",
			zap.String("template", filename), zap.Error(err))
	}
	s.remember(cacheKey, fingerprint, inferred)
	return inferred, nil
}

// RenderSchema returns a schema guaranteed to carry the template source text
// and raw field values, which rendering needs but the persisted cache strips.
// A memory-cached schema inferred in this process already carries them; a
// schema revived from the database does not and is re-inferred.
func (s *Store) RenderSchema(ctx context.Context, tenantID, filename string) (*models.TemplateSchema, error) {
	text, err := s.Text(ctx, tenantID, filename)
	if err != nil {
		return nil, err
	}
	fingerprint := Fingerprint(text)
	cacheKey := tenantID + "|" + filename

	s.mu.RLock()
	entry, ok := s.cache[cacheKey]
	s.mu.RUnlock()
	if ok && entry.fingerprint == fingerprint && entry.schema.SourceText != "" {
		return entry.schema, nil
	}

	inferred := s.engine.Infer(text, filename)
	s.remember(cacheKey, fingerprint, inferred)
	return inferred, nil
}

func (s *Store) remember(cacheKey, fingerprint string, schema *models.TemplateSchema) {
	s.mu.Lock()
	s.cache[cacheKey] = &cachedSchema{fingerprint: fingerprint, schema: schema}
	s.mu.Unlock()
}

// SaveUpload stores a tenant-uploaded template and invalidates its cache entry.
func (s *Store) SaveUpload(ctx context.Context, tmpl *models.Template) error {
	if tmpl.Filename == "" || tmpl.Filename != filepath.Base(tmpl.Filename) {
		return fmt.Errorf("invalid template filename %q", tmpl.Filename)
	}
	if err := s.db.SaveTemplate(ctx, tmpl); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, tmpl.TenantID+"|"+tmpl.Filename)
	s.mu.Unlock()
	return nil
}

// Invalidate drops every tenant's cached schema for filename. Called when
// the file changes on disk: the disk copy is shared, so all tenants that
// resolved to it are stale.
func (s *Store) Invalidate(filename string) {
	suffix := "|" + filename
	s.mu.Lock()
	for key := range s.cache {
		if strings.HasSuffix(key, suffix) {
			delete(s.cache, key)
		}
	}
	s.mu.Unlock()
	s.logger.Debug("template schema cache invalidated", zap.String("template", filename))
}

// List returns the template filenames visible to the tenant, sorted.
func (s *Store) List(ctx context.Context, tenantID string) ([]string, error) {
	seen := make(map[string]struct{})

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read template directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !s.matchExtension(entry.Name()) {
				continue
			}
			seen[entry.Name()] = struct{}{}
		}
	}

	stored, err := s.db.ListTemplates(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, tmpl := range stored {
		seen[tmpl.Filename] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) matchExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// Fingerprint returns the cache fingerprint for template text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
