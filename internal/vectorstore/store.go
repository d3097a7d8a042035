// Package vectorstore persists resume point embeddings and answers nearest
// neighbour queries against them. The Store owns id assignment and embedding;
// an Index backend owns storage and distance computation.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "resume_points"

// ErrNotInitialized is returned by an Index when its collection or table does
// not exist. The Store re-creates the index once and retries.
var ErrNotInitialized = errors.New("vector index not initialized")

// Hits is the answer to an Index query, ordered by ascending distance.
type Hits struct {
	IDs       []string
	Documents []string
	Distances []float64
}

// Index is a vector storage backend. Distances are cosine distances.
type Index interface {
	Ensure(ctx context.Context) error
	Add(ctx context.Context, ids []string, vectors [][]float32, documents []string) error
	Query(ctx context.Context, vector []float32, k int) (Hits, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Backend() string
}

// Embedder produces embeddings for the store.
type Embedder interface {
	Embed(ctx context.Context, text string) embedding.Result
	EmbedBatch(ctx context.Context, texts []string) [][]float32
}

// Store is the vector store used by the ranker. It is safe for concurrent
// reads; callers serialise Add and Clear.
type Store struct {
	index      Index
	embedder   Embedder
	collection string
	logger     *zap.Logger
	metrics    *observability.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	ready bool
}

// Option configures a Store.
type Option func(*Store)

// WithCollection sets the collection name reported by Stats.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = observability.OrNop(logger) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store. The index is initialised on first use.
func New(index Index, embedder Embedder, opts ...Option) *Store {
	s := &Store{
		index:      index,
		embedder:   embedder,
		collection: DefaultCollection,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Backend returns the index backend name.
func (s *Store) Backend() string {
	return s.index.Backend()
}

func (s *Store) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *Store) setReady(v bool) {
	s.mu.Lock()
	s.ready = v
	s.mu.Unlock()
}

// ensure initialises the index once; concurrent callers share one attempt.
func (s *Store) ensure(ctx context.Context) error {
	if s.isReady() {
		return nil
	}
	_, err, _ := s.group.Do("ensure", func() (any, error) {
		if s.isReady() {
			return nil, nil
		}
		if err := s.index.Ensure(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize %s index: %w", s.index.Backend(), err)
		}
		s.setReady(true)
		s.logger.Debug("vector index ready",
			zap.String("backend", s.index.Backend()),
			zap.String("collection", s.collection))
		return nil, nil
	})
	return err
}

// do runs op against an initialised index, re-creating the index and retrying
// once if op reports it missing.
func (s *Store) do(ctx context.Context, op func() error) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	err := op()
	if !errors.Is(err, ErrNotInitialized) {
		return err
	}

	s.logger.Warn("vector index missing, re-creating", zap.String("collection", s.collection))
	s.setReady(false)
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return op()
}

// Add embeds texts and stores them under ids resume_point_{i}, where i
// continues from the current count.
func (s *Store) Add(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}

	vectors := s.embedder.EmbedBatch(ctx, texts)
	ids := make([]string, len(texts))
	for i := range texts {
		ids[i] = fmt.Sprintf("resume_point_%d", count+i)
	}

	err = s.do(ctx, func() error {
		return s.index.Add(ctx, ids, vectors, texts)
	})
	if err != nil {
		return fmt.Errorf("failed to add %d points: %w", len(texts), err)
	}

	s.metrics.SetVectorStoreSize(count + len(texts))
	s.logger.Info("indexed resume points", zap.Int("added", len(texts)), zap.Int("total", count+len(texts)))
	return nil
}

// Query returns up to topK stored texts nearest to text, scored 1 - distance.
// A failed query embedding yields an empty result and no error.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]types.ScoredText, error) {
	if topK <= 0 {
		return []types.ScoredText{}, nil
	}

	res := s.embedder.Embed(ctx, text)
	if !res.OK {
		s.metrics.RecordEmbeddingFallback("vectorstore", "query_embedding_failed")
		s.logger.Warn("query embedding failed, returning no results", zap.Error(res.Err))
		return []types.ScoredText{}, nil
	}

	var hits Hits
	err := s.do(ctx, func() error {
		var qerr error
		hits, qerr = s.index.Query(ctx, res.Vector, topK)
		return qerr
	})
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	results := make([]types.ScoredText, 0, len(hits.Documents))
	for i, doc := range hits.Documents {
		d := 1.0
		if i < len(hits.Distances) {
			d = hits.Distances[i]
		}
		results = append(results, types.ScoredText{Text: doc, Score: 1 - d})
	}
	return results, nil
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func() error {
		var cerr error
		n, cerr = s.index.Count(ctx)
		return cerr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return n, nil
}

// Clear removes every stored point.
func (s *Store) Clear(ctx context.Context) error {
	err := s.do(ctx, func() error {
		return s.index.Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to clear collection %s: %w", s.collection, err)
	}
	s.metrics.SetVectorStoreSize(0)
	s.logger.Info("cleared vector store", zap.String("collection", s.collection))
	return nil
}
