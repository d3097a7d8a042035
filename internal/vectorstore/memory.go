package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jonathan/resume-rag/internal/embedding"
)

type memoryEntry struct {
	id       string
	vector   []float32
	document string
}

// MemoryIndex is an ephemeral in-process index. Operations before Ensure, or
// after Drop, report ErrNotInitialized.
type MemoryIndex struct {
	mu      sync.RWMutex
	created bool
	entries []memoryEntry

	// EnsureCalls counts successful Ensure calls.
	EnsureCalls int
}

// NewMemoryIndex creates an empty, uninitialised MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Backend returns "memory".
func (m *MemoryIndex) Backend() string { return "memory" }

// Ensure creates the index if it does not exist.
func (m *MemoryIndex) Ensure(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		m.created = true
		m.entries = nil
	}
	m.EnsureCalls++
	return nil
}

// Drop discards the index as if its backing collection had been deleted.
func (m *MemoryIndex) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = false
	m.entries = nil
}

// Add stores vectors; ids, vectors and documents are parallel slices.
func (m *MemoryIndex) Add(_ context.Context, ids []string, vectors [][]float32, documents []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return ErrNotInitialized
	}
	for i, id := range ids {
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		doc := ""
		if i < len(documents) {
			doc = documents[i]
		}
		m.entries = append(m.entries, memoryEntry{id: id, vector: vec, document: doc})
	}
	return nil
}

// Query returns the k nearest entries by cosine distance. Equal distances keep
// insertion order.
func (m *MemoryIndex) Query(_ context.Context, vector []float32, k int) (Hits, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return Hits{}, ErrNotInitialized
	}
	return nearest(m.entries, vector, k), nil
}

// Count returns the number of entries.
func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return 0, ErrNotInitialized
	}
	return len(m.entries), nil
}

// Clear removes all entries.
func (m *MemoryIndex) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return ErrNotInitialized
	}
	m.entries = nil
	return nil
}

// nearest ranks entries by cosine distance to vector and keeps the first k.
func nearest(entries []memoryEntry, vector []float32, k int) Hits {
	type scored struct {
		entry    memoryEntry
		distance float64
	}

	all := make([]scored, len(entries))
	for i, e := range entries {
		all[i] = scored{entry: e, distance: 1 - embedding.CosineSimilarity(vector, e.vector)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].distance < all[j].distance
	})
	if k < len(all) {
		all = all[:k]
	}

	hits := Hits{
		IDs:       make([]string, len(all)),
		Documents: make([]string, len(all)),
		Distances: make([]float64, len(all)),
	}
	for i, s := range all {
		hits.IDs[i] = s.entry.id
		hits.Documents[i] = s.entry.document
		hits.Distances[i] = s.distance
	}
	return hits
}
