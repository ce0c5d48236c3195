package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force in-memory index. Contract corpora per tenant
// stay small enough that exact search beats an ANN structure on both
// simplicity and recall.
type MemoryIndex struct {
	dimensions int
	vectors    map[string][]float32
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &MemoryIndex{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
	}, nil
}

// Upsert stores vectors under their keys. An existing vector for a key is
// replaced, which makes reindexing the same document idempotent.
func (m *MemoryIndex) Upsert(ctx context.Context, keys []string, vectors [][]float32) error {
	if len(keys) != len(vectors) {
		return fmt.Errorf("keys and vectors length mismatch: %d vs %d", len(keys), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, key := range keys {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch for %q: got %d, expected %d", key, len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		m.vectors[key] = vec
	}
	return nil
}

// Search returns the top-k keys by inner product. For unit vectors this is
// cosine similarity. Ties break by key so results are deterministic.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.vectors) == 0 {
		return nil, nil
	}
	scored := make([]*Result, 0, len(m.vectors))
	for key, vec := range m.vectors {
		scored = append(scored, &Result{Key: key, Score: InnerProduct(query, vec)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Key < scored[j].Key
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Remove deletes vectors by key. Unknown keys are ignored.
func (m *MemoryIndex) Remove(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.vectors, key)
	}
	return nil
}

// Save persists the index to path. Format: dimensions (4), count (4), then
// per entry: keyLen (4), key bytes, vector (dimensions*4 bytes). Entries are
// written in key order so saves are reproducible.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}

	keys := make([]string, 0, len(m.vectors))
	for key := range m.vectors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := binary.Write(f, binary.LittleEndian, uint32(len(key))); err != nil {
			return fmt.Errorf("write key len: %w", err)
		}
		if _, err := f.Write([]byte(key)); err != nil {
			return fmt.Errorf("write key: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(m.vectors[key])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load replaces the index contents from path. A missing file leaves the
// index unchanged so first startup works without a prior save.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	loaded := make(map[string][]float32, n)
	vecBuf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var keyLen uint32
		if err := binary.Read(f, binary.LittleEndian, &keyLen); err != nil {
			return fmt.Errorf("read key len: %w", err)
		}
		keyBytes := make([]byte, keyLen)
		if _, err := io.ReadFull(f, keyBytes); err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		loaded[string(keyBytes)] = bytesToFloat32Slice(vecBuf)
	}

	m.mu.Lock()
	m.vectors = loaded
	m.mu.Unlock()
	return nil
}

// Size returns the number of stored vectors.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
