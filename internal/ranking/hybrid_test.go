package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-rag/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRetriever returns its docs in order, truncated to topK.
type fakeRetriever struct {
	docs     []types.ScoredText
	queryErr error
	countErr error
	lastK    int
}

func (f *fakeRetriever) Query(_ context.Context, _ string, topK int) ([]types.ScoredText, error) {
	f.lastK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if topK > len(f.docs) {
		topK = len(f.docs)
	}
	return append([]types.ScoredText(nil), f.docs[:topK]...), nil
}

func (f *fakeRetriever) Count(context.Context) (int, error) {
	return len(f.docs), f.countErr
}

func TestRank_HybridPrefersKeywordAndSemanticMatch(t *testing.T) {
	// distances 0.1, 0.3, 0.15 → similarities 0.9, 0.7, 0.85
	store := &fakeRetriever{docs: []types.ScoredText{
		{Text: "Built Python microservices on AWS as a backend developer", Score: 0.9},
		{Text: "Python developer deploying AWS microservices", Score: 0.7},
		{Text: "Organised the office holiday party", Score: 0.85},
	}}
	r := NewRanker(store, nil)

	ranked, err := r.Rank(context.Background(), "Python AWS microservices developer", 3, true)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "Built Python microservices on AWS as a backend developer", ranked[0].Text)
	assert.Equal(t, "Organised the office holiday party", ranked[2].Text)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_CandidatePoolIsTwiceTopK(t *testing.T) {
	docs := make([]types.ScoredText, 10)
	for i := range docs {
		docs[i] = types.ScoredText{Text: "doc", Score: 0.5}
	}
	store := &fakeRetriever{docs: docs}

	ranked, err := NewRanker(store, nil).Rank(context.Background(), "query", 3, true)
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
	assert.Equal(t, 6, store.lastK)
}

func TestRank_CandidatePoolCappedByCount(t *testing.T) {
	store := &fakeRetriever{docs: []types.ScoredText{{Text: "a", Score: 0.5}, {Text: "b", Score: 0.4}}}

	ranked, err := NewRanker(store, nil).Rank(context.Background(), "query", 5, true)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, 2, store.lastK)
}

func TestRank_EmptyStore(t *testing.T) {
	store := &fakeRetriever{}
	ranked, err := NewRanker(store, nil).Rank(context.Background(), "query", 5, true)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Zero(t, store.lastK)
}

func TestRank_SemanticOnlyPassesThrough(t *testing.T) {
	store := &fakeRetriever{docs: []types.ScoredText{
		{Text: "a", Score: 0.3},
		{Text: "b", Score: 0.9},
	}}
	ranked, err := NewRanker(store, nil).Rank(context.Background(), "query", 2, false)
	require.NoError(t, err)
	assert.Equal(t, store.docs, ranked)
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	store := &fakeRetriever{docs: []types.ScoredText{
		{Text: "first", Score: 0.5},
		{Text: "second", Score: 0.5},
		{Text: "third", Score: 0.5},
	}}
	ranked, err := NewRanker(store, nil).Rank(context.Background(), "nothing matches", 3, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, types.Texts(ranked))
}

func TestRank_Errors(t *testing.T) {
	_, err := NewRanker(&fakeRetriever{countErr: errors.New("down")}, nil).
		Rank(context.Background(), "q", 3, true)
	assert.Error(t, err)

	_, err = NewRanker(&fakeRetriever{docs: []types.ScoredText{{Text: "a"}}, queryErr: errors.New("down")}, nil).
		Rank(context.Background(), "q", 3, true)
	assert.Error(t, err)
}

func TestHybridScore(t *testing.T) {
	tests := []struct {
		name          string
		sem, kw, want float64
	}{
		{"both full", 1, 1, 1},
		{"semantic only", 1, 0, 0.7},
		{"keyword only", 0, 1, 0.3},
		{"negative semantic clamped", -0.5, 1, 0.3},
		{"overflow clamped", 1.4, 2, 1},
		{"mixed", 0.5, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HybridScore(tt.sem, tt.kw)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
