// Package vector provides vector storage and similarity search over
// document embeddings.
package vector

import "context"

// Index stores normalized document embeddings keyed by document key and
// answers top-k similarity queries.
type Index interface {
	// Upsert stores vectors under their keys, replacing any existing
	// vector for the same key.
	Upsert(ctx context.Context, keys []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, keys []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single similarity hit. Key is the document key and Score is
// cosine similarity for unit vectors.
type Result struct {
	Key   string
	Score float64
}
