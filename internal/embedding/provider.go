// Package embedding converts text to fixed-length vectors through an external
// embedding API. Batches are issued chunk by chunk and a failed chunk degrades
// to zero vectors so callers always receive one vector per input.
package embedding

import (
	"context"
	"time"

	"github.com/jonathan/resume-rag/internal/observability"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of texts sent per embedding call.
const DefaultBatchSize = 64

// Backend is the external embedding API.
type Backend interface {
	// CreateEmbeddings returns one vector per input text, in input order.
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// Model returns the embedding model identifier.
	Model() string
}

// Result is the outcome of embedding a single text. OK is false when the
// provider failed; an all-zero Vector with OK true is a real embedding.
type Result struct {
	Vector []float32
	OK     bool
	Err    error
}

// Provider embeds texts with a Backend.
type Provider struct {
	backend   Backend
	batchSize int
	dimension int
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// Option configures a Provider.
type Option func(*Provider)

// WithBatchSize sets the chunk size for EmbedBatch. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithDimension overrides the zero-vector dimension derived from the model name.
func WithDimension(d int) Option {
	return func(p *Provider) {
		if d > 0 {
			p.dimension = d
		}
	}
}

// WithLogger sets the logger used to report degraded calls.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = observability.OrNop(logger)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// NewProvider creates a Provider around backend.
func NewProvider(backend Backend, opts ...Option) *Provider {
	p := &Provider{
		backend:   backend,
		batchSize: DefaultBatchSize,
		dimension: DimensionForModel(backend.Model()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Model returns the backend model identifier.
func (p *Provider) Model() string {
	return p.backend.Model()
}

// Dimension returns the vector length used for zero-vector fallbacks.
func (p *Provider) Dimension() int {
	return p.dimension
}

// Embed embeds a single text with one external call.
func (p *Provider) Embed(ctx context.Context, text string) Result {
	vectors, err := p.call(ctx, []string{text})
	if err != nil {
		p.logger.Warn("embedding failed",
			zap.String("model", p.Model()),
			zap.String("text", observability.TruncateForLog(text, 60)),
			zap.Error(err))
		return Result{Err: err}
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		p.logger.Warn("embedding response was empty", zap.String("model", p.Model()))
		return Result{Err: errEmptyResponse}
	}
	return Result{Vector: vectors[0], OK: true}
}

// EmbedBatch embeds texts in chunks of the configured batch size, one call
// per chunk, sequentially. The result always has len(texts) entries; a failed
// chunk contributes zero vectors and other chunks are unaffected.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		chunk := texts[start:end]

		vectors, err := p.call(ctx, chunk)
		if err != nil {
			p.logger.Warn("embedding chunk failed, using zero vectors",
				zap.String("model", p.Model()),
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err))
			p.metrics.RecordEmbeddingFallback("provider", "chunk_failed")
			vectors = nil
		}
		out = append(out, p.fit(vectors, len(chunk))...)
	}

	return out
}

func (p *Provider) call(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := p.backend.CreateEmbeddings(ctx, texts)
	p.metrics.RecordEmbeddingCall(p.Model(), time.Since(start), err)
	return vectors, err
}

// fit pads vectors with zero vectors or truncates them to exactly n entries.
func (p *Provider) fit(vectors [][]float32, n int) [][]float32 {
	if len(vectors) > n {
		return vectors[:n]
	}
	for len(vectors) < n {
		vectors = append(vectors, make([]float32, p.dimension))
	}
	return vectors
}
