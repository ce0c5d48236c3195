package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/embedding"
	"github.com/lexfold/lexfold/internal/keyword"
	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/vector"
	"github.com/lexfold/lexfold/pkg/utils"
)

// Indexer writes search documents through to the catalog, the lexical index
// and the vector index. Writes for the same key serialize on a per-key lock,
// so concurrent updates resolve to last write wins with no partial state.
type Indexer struct {
	catalog      *Catalog
	keywordIndex keyword.Index
	vectorIndex  vector.Index
	embedder     embedding.Embedder
	jobs         *JobPool
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithJobPool attaches a job pool whose pending work is cancelled when the
// corresponding document is deleted.
func WithJobPool(p *JobPool) IndexerOption {
	return func(idx *Indexer) { idx.jobs = p }
}

// NewIndexer creates an indexer with the given collaborators.
func NewIndexer(
	catalog *Catalog,
	keywordIndex keyword.Index,
	vectorIndex vector.Index,
	embedder embedding.Embedder,
	logger *zap.Logger,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		catalog:      catalog,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *Indexer) keyLock(key string) *sync.Mutex {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	l, ok := idx.locks[key]
	if !ok {
		l = &sync.Mutex{}
		idx.locks[key] = l
	}
	return l
}

// IndexDocument stores doc in the catalog and both indexes, replacing any
// previous version whole. A missing entity ID gets a generated one. When the
// embedder fails the document is still indexed lexically; it scores zero on
// the semantic component until reindexed.
func (idx *Indexer) IndexDocument(ctx context.Context, doc *models.SearchDocument) error {
	if doc.EntityType == "" {
		return fmt.Errorf("entity type is required")
	}
	if doc.EntityID == "" {
		doc.EntityID = uuid.New().String()
	}
	doc.Content = utils.CollapseWhitespace(doc.Content)

	key := doc.Key()
	l := idx.keyLock(key)
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	if previous, ok := idx.catalog.Get(key); ok {
		doc.CreatedAt = previous.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	emb, err := idx.embedder.Embed(ctx, doc.Title+"\n"+doc.Content)
	if err != nil {
		idx.logger.Warn("embedding failed, indexing without semantic component",
			zap.String("key", key), zap.Error(err))
		doc.Embedding = nil
	} else {
		doc.Embedding = emb
	}

	idx.catalog.Put(doc)
	if err := idx.keywordIndex.Index(ctx, doc); err != nil {
		return fmt.Errorf("lexical index: %w", err)
	}
	if doc.Embedding != nil {
		if err := idx.vectorIndex.Upsert(ctx, []string{key}, [][]float32{doc.Embedding}); err != nil {
			return fmt.Errorf("vector index: %w", err)
		}
	} else {
		// Drop any stale vector from a previous version that did embed.
		if err := idx.vectorIndex.Remove(ctx, []string{key}); err != nil {
			return fmt.Errorf("vector index cleanup: %w", err)
		}
	}
	return nil
}

// Delete removes the document from the catalog and both indexes and cancels
// any pending background work for it. Deleting an unknown document is a no-op.
func (idx *Indexer) Delete(ctx context.Context, tenantID string, entityType models.EntityType, entityID string) error {
	key := models.DocumentKey(tenantID, entityType, entityID)

	if idx.jobs != nil {
		idx.jobs.Cancel(key)
	}

	l := idx.keyLock(key)
	l.Lock()
	defer l.Unlock()

	existed := idx.catalog.Delete(key)
	if err := idx.keywordIndex.Delete(ctx, key); err != nil {
		return fmt.Errorf("lexical delete: %w", err)
	}
	if err := idx.vectorIndex.Remove(ctx, []string{key}); err != nil {
		return fmt.Errorf("vector delete: %w", err)
	}
	if existed {
		idx.logger.Debug("document removed from index", zap.String("key", key))
	}
	return nil
}
