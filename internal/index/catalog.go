// Package index maintains the search document catalog and the pipeline that
// keeps the lexical and vector indexes in sync with it.
package index

import (
	"sync"

	"github.com/lexfold/lexfold/internal/models"
)

// Catalog is the in-memory authority for search documents, keyed by document
// key. The lexical and vector indexes hold projections of what lives here;
// result hydration always reads the catalog, never the indexes.
type Catalog struct {
	mu   sync.RWMutex
	docs map[string]*models.SearchDocument
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{docs: make(map[string]*models.SearchDocument)}
}

// Get returns the document stored under key.
func (c *Catalog) Get(key string) (*models.SearchDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok
}

// Put stores doc under its key, replacing any previous version whole.
func (c *Catalog) Put(doc *models.SearchDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.Key()] = doc
}

// Delete removes the document under key and reports whether it existed.
func (c *Catalog) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.docs[key]
	delete(c.docs, key)
	return ok
}

// Len returns the number of cataloged documents.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Keys returns all document keys. Order is unspecified.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.docs))
	for k := range c.docs {
		keys = append(keys, k)
	}
	return keys
}
