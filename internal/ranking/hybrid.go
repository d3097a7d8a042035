// Package ranking ranks indexed resume points against a job description by
// blending vector similarity with keyword coverage.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/resume-rag/internal/keywords"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
)

const (
	// SemanticWeight is the share of the hybrid score taken from vector similarity.
	SemanticWeight = 0.7
	// KeywordWeight is the share of the hybrid score taken from keyword coverage.
	KeywordWeight = 0.3
)

// Retriever is the vector store as seen by the ranker.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]types.ScoredText, error)
	Count(ctx context.Context) (int, error)
}

// Ranker ranks stored points for a query.
type Ranker struct {
	store  Retriever
	logger *zap.Logger
}

// NewRanker creates a Ranker over store.
func NewRanker(store Retriever, logger *zap.Logger) *Ranker {
	return &Ranker{store: store, logger: observability.OrNop(logger)}
}

// Rank returns at most topK points ordered by score, highest first.
//
// With useHybrid false the vector store order and scores are returned as is.
// Otherwise twice topK candidates are fetched and rescored as
// 0.7*semantic + 0.3*keyword, where keyword is the fraction of query keywords
// found in the candidate.
func (r *Ranker) Rank(ctx context.Context, query string, topK int, useHybrid bool) ([]types.ScoredText, error) {
	if !useHybrid {
		return r.store.Query(ctx, query, topK)
	}
	if topK <= 0 {
		return []types.ScoredText{}, nil
	}

	kw := keywords.Extract(query).Slice()

	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed points: %w", err)
	}
	candidateK := min(2*topK, count)
	if candidateK == 0 {
		return []types.ScoredText{}, nil
	}

	candidates, err := r.store.Query(ctx, query, candidateK)
	if err != nil {
		return nil, err
	}

	ranked := make([]types.ScoredText, len(candidates))
	for i, c := range candidates {
		ranked[i] = types.ScoredText{
			Text:  c.Text,
			Score: HybridScore(c.Score, keywords.Score(c.Text, kw)),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	r.logger.Debug("hybrid ranking complete",
		zap.Int("keywords", len(kw)),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}

// HybridScore blends a semantic and a keyword score, each clamped to [0,1].
func HybridScore(semantic, keyword float64) float64 {
	return SemanticWeight*clamp01(semantic) + KeywordWeight*clamp01(keyword)
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
