package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/jonathan/resume-rag/internal/results"
	"github.com/jonathan/resume-rag/internal/rewriting"
	"github.com/jonathan/resume-rag/internal/selection"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/jonathan/resume-rag/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rewriteCall struct {
	items []string
	mode  types.Mode
}

type fakeRewriter struct {
	mu       sync.Mutex
	calls    []rewriteCall
	err      error
	extra    []rewriting.Ranking
	gaps     []string
	newItems []string
	skip     map[string]bool
}

func (f *fakeRewriter) Optimize(_ context.Context, items []string, _ string, mode types.Mode, _ map[string]float64, _ ...rewriting.CallOption) (*rewriting.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rewriteCall{items: append([]string(nil), items...), mode: mode})
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := &rewriting.Outcome{Gaps: []string{}, NewItems: []string{}}
	for _, item := range items {
		if f.skip[item] {
			continue
		}
		out.Rankings = append(out.Rankings, rewriting.Ranking{
			Original:       item,
			Rewritten:      "Improved: " + item,
			RelevanceScore: 0.5,
			Reasoning:      "stronger verb",
		})
	}
	out.Rankings = append(out.Rankings, f.extra...)
	if f.gaps != nil {
		out.Gaps = f.gaps
	}
	if f.newItems != nil {
		out.NewItems = f.newItems
	}
	return out, nil
}

func (f *fakeRewriter) Model() string { return "fake-model" }

type memorySink struct {
	mu    sync.Mutex
	kinds []string
	docs  []map[string]any
}

func (s *memorySink) Save(_ context.Context, kind string, payload map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, kind)
	s.docs = append(s.docs, payload)
	return kind, nil
}

func (s *memorySink) List(_ context.Context) ([]results.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]results.Entry, 0, len(s.kinds))
	for _, k := range s.kinds {
		out = append(out, results.Entry{Name: k, Kind: k})
	}
	return out, nil
}

type failingStore struct{ Store }

func (failingStore) Count(context.Context) (int, error) { return 0, errors.New("connection refused") }

var testPoints = []string{
	"Built Python microservices on AWS",
	"Led a team of five engineers",
	"Designed PostgreSQL schemas for billing",
}

func newTestService(t *testing.T, rw Rewriter) (*Service, *memorySink) {
	t.Helper()
	provider := embedding.NewProvider(embedding.NewHashBackend(64))
	store := vectorstore.New(vectorstore.NewMemoryIndex(), provider)
	sink := &memorySink{}
	svc := NewService(Deps{
		Store:          store,
		Selector:       selection.NewSelector(provider),
		Rewriter:       rw,
		Recorder:       results.NewRecorder(sink, nil),
		EmbeddingModel: provider.Model(),
	})
	return svc, sink
}

func TestOptimizeFlat(t *testing.T) {
	ctx := context.Background()
	rw := &fakeRewriter{
		extra:    []rewriting.Ranking{{Original: "Unlisted point", Rewritten: "Unlisted", RelevanceScore: 0.4567}},
		gaps:     []string{"Kubernetes"},
		newItems: []string{"Deployed services to Kubernetes"},
	}
	svc, sink := newTestService(t, rw)
	_, err := svc.Index(ctx, testPoints)
	require.NoError(t, err)

	job := "Python engineer with AWS experience"
	ranked, err := svc.Rank(ctx, job, 2, true)
	require.NoError(t, err)
	scores := types.ScoreMap(ranked)

	resp, err := svc.OptimizeFlat(ctx, types.RAGRequest{JobDescription: job, TopK: 2})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, types.Texts(ranked), resp.RetrievedPoints)
	require.Len(t, resp.RewrittenPoints, 3)
	for _, p := range resp.RewrittenPoints[:2] {
		assert.Equal(t, "Improved: "+p.Original, p.Rewritten)
		assert.Equal(t, round3(scores[p.Original]), p.SimilarityScore)
		assert.Equal(t, "stronger verb", p.Reasoning)
	}
	assert.Equal(t, 0.457, resp.RewrittenPoints[2].SimilarityScore)
	assert.Equal(t, []string{"Kubernetes"}, resp.Gaps)
	assert.Empty(t, resp.NewBulletSuggestions, "strict mode never suggests new bullets")
	assert.False(t, resp.CreatedAt.IsZero())

	require.Len(t, rw.calls, 1)
	assert.Equal(t, types.ModeStrict, rw.calls[0].mode)
	assert.Equal(t, []string{results.KindRAG}, sink.kinds)
	assert.Equal(t, job, sink.docs[0]["job_description"])
}

func TestOptimizeFlat_Creative(t *testing.T) {
	ctx := context.Background()
	rw := &fakeRewriter{newItems: []string{"Deployed services to Kubernetes"}}
	svc, _ := newTestService(t, rw)
	_, err := svc.Index(ctx, testPoints)
	require.NoError(t, err)

	resp, err := svc.OptimizeFlat(ctx, types.RAGRequest{
		JobDescription:   "Python engineer",
		OptimizationMode: types.ModeCreative,
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Len(t, resp.RetrievedPoints, 3, "top_k is capped by the collection size")
	assert.Equal(t, []string{"Deployed services to Kubernetes"}, resp.NewBulletSuggestions)
	assert.Equal(t, types.ModeCreative, rw.calls[0].mode)
}

func TestOptimizeFlat_EmptyStore(t *testing.T) {
	rw := &fakeRewriter{}
	svc, sink := newTestService(t, rw)

	resp, err := svc.OptimizeFlat(context.Background(), types.RAGRequest{JobDescription: "Go developer"})
	require.NoError(t, err)
	svc.Wait()

	assert.Empty(t, resp.RetrievedPoints)
	assert.NotNil(t, resp.RewrittenPoints)
	assert.NotNil(t, resp.Gaps)
	assert.NotNil(t, resp.NewBulletSuggestions)
	assert.Empty(t, rw.calls)
	assert.Empty(t, sink.kinds)
}

func TestOptimizeFlat_ProviderError(t *testing.T) {
	ctx := context.Background()
	rw := &fakeRewriter{err: &rewriting.Error{Message: "provider call failed", Cause: errors.New("timeout")}}
	svc, _ := newTestService(t, rw)
	_, err := svc.Index(ctx, testPoints)
	require.NoError(t, err)

	resp, err := svc.OptimizeFlat(ctx, types.RAGRequest{JobDescription: "Python", TopK: 2})
	require.NoError(t, err)

	assert.Len(t, resp.RetrievedPoints, 2)
	assert.Empty(t, resp.RewrittenPoints)
	assert.Empty(t, resp.Gaps)
}

func TestOptimizeFlat_InvalidRequest(t *testing.T) {
	svc, _ := newTestService(t, &fakeRewriter{})

	tests := []struct {
		name string
		req  types.RAGRequest
	}{
		{name: "missing job", req: types.RAGRequest{}},
		{name: "top_k too large", req: types.RAGRequest{JobDescription: "Go", TopK: 21}},
		{name: "unknown mode", req: types.RAGRequest{JobDescription: "Go", OptimizationMode: "wild"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OptimizeFlat(context.Background(), tt.req)
			require.Error(t, err)
		})
	}
}

func sampleResume() types.StructuredResume {
	return types.StructuredResume{
		Experiences: []types.Experience{{
			ID:      "exp1",
			Company: "Acme",
			Role:    "Engineer",
			Bullets: []types.Bullet{
				{ID: "b1", Text: "Built Python microservices on AWS"},
				{ID: "b2", Text: "Organised the office party"},
				{ID: "b3", Text: "Migrated Python jobs to AWS Lambda"},
				{ID: "b4", Text: "Wrote onboarding docs"},
			},
		}},
		Projects: []types.Project{{
			ID:      "p1",
			Name:    "Side project",
			Bullets: []types.Bullet{{ID: "p1b1", Text: "Python CLI for AWS cost reports"}},
		}},
	}
}

func TestSelect(t *testing.T) {
	svc, sink := newTestService(t, &fakeRewriter{})

	resp, err := svc.Select(context.Background(), types.SelectionRequest{
		Resume:               sampleResume(),
		JobDescription:       "Python developer with AWS and Kubernetes",
		BulletsPerExperience: 2,
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "select", resp.Mode)
	require.NotNil(t, resp.SelectedResume)
	assert.Nil(t, resp.OptimizedResume)
	require.Len(t, resp.SelectedResume.Experiences, 1)
	assert.Len(t, resp.SelectedResume.Experiences[0].SelectedBullets, 2)
	assert.Equal(t, selection.DefaultMaxLines, resp.MaxLines)
	assert.Equal(t, selection.TotalLines(resp.SelectedResume), resp.TotalLineCount)
	assert.True(t, resp.FitsOnePage)
	assert.Contains(t, resp.Gaps, "Kubernetes")
	assert.Empty(t, sink.kinds, "selection results are not archived")
}

func TestOptimize(t *testing.T) {
	rw := &fakeRewriter{skip: map[string]bool{"Python CLI for AWS cost reports": true}}
	svc, sink := newTestService(t, rw)

	resp, err := svc.Optimize(context.Background(), types.OptimizationRequest{
		SelectionRequest: types.SelectionRequest{
			Resume:               sampleResume(),
			JobDescription:       "Python developer with AWS",
			BulletsPerExperience: 2,
		},
		OptimizationMode: types.ModeCreative,
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "optimize", resp.Mode)
	assert.Nil(t, resp.SelectedResume)
	require.NotNil(t, resp.OptimizedResume)

	for _, b := range resp.OptimizedResume.Experiences[0].SelectedBullets {
		assert.Equal(t, "Improved: "+b.Original, b.Text)
		assert.Equal(t, b.Text, b.Rewritten)
		assert.Equal(t, "stronger verb", b.Reasoning)
		assert.Positive(t, b.LineCount)
	}

	skipped := resp.OptimizedResume.Projects[0].SelectedBullets[0]
	assert.Equal(t, "Python CLI for AWS cost reports", skipped.Text)
	assert.Equal(t, skipped.Original, skipped.Rewritten)
	assert.Empty(t, skipped.Reasoning)

	require.Len(t, rw.calls, 2, "one call per non-empty section")
	for _, c := range rw.calls {
		assert.Equal(t, types.ModeStrict, c.mode)
	}
	assert.Equal(t, []string{results.KindOptimization}, sink.kinds)
	assert.Equal(t, "optimize", sink.docs[0]["mode"])
	assert.Contains(t, sink.docs[0], "optimized_resume")
}

func TestOptimize_RewriteFailureKeepsSelection(t *testing.T) {
	rw := &fakeRewriter{err: errors.New("provider down")}
	svc, _ := newTestService(t, rw)

	resp, err := svc.Optimize(context.Background(), types.OptimizationRequest{
		SelectionRequest: types.SelectionRequest{
			Resume:         sampleResume(),
			JobDescription: "Python developer with AWS",
		},
	})
	require.NoError(t, err)
	svc.Wait()

	for _, b := range resp.OptimizedResume.Experiences[0].SelectedBullets {
		assert.Empty(t, b.Original)
		assert.Empty(t, b.Rewritten)
		assert.NotContains(t, b.Text, "Improved")
	}
}

func TestStatsAndHealth(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeRewriter{})
	_, err := svc.Index(ctx, testPoints)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, VectorStoreStats{
		TotalPoints:    3,
		CollectionName: vectorstore.DefaultCollection,
		EmbeddingModel: embedding.HashModel,
		Backend:        "memory",
	}, stats.VectorStore)
	assert.Equal(t, "fake-model", stats.OptimizerModel)
	assert.Equal(t, Version, stats.PipelineVersion)
	assert.Equal(t, "unified", stats.OptimizationType)

	health := svc.Health(ctx)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, serviceName, health.Service)
	require.NotNil(t, health.Stats)
	assert.Empty(t, health.Error)
}

func TestHealth_Unhealthy(t *testing.T) {
	svc, _ := newTestService(t, &fakeRewriter{})
	svc.store = failingStore{Store: svc.store}

	health := svc.Health(context.Background())
	assert.Equal(t, "unhealthy", health.Status)
	assert.Nil(t, health.Stats)
	assert.Contains(t, health.Error, "connection refused")
}

func TestIndexAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeRewriter{})

	n, err := svc.Index(ctx, []string{"  first  ", "", "   ", "second"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Index(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, svc.Clear(ctx))
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.VectorStore.TotalPoints)
}

func TestResults(t *testing.T) {
	svc := NewService(Deps{Store: vectorstore.New(vectorstore.NewMemoryIndex(), nil)})

	entries, err := svc.Results(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "lines", input: "first\n\n  second  \n", want: []string{"first", "second"}},
		{name: "json array", input: ` ["first", " ", "second"]`, want: []string{"first", "second"}},
		{name: "empty", input: "\n\n", want: []string{}},
		{name: "bad json", input: `["first",`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePoints([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	points, err := LoadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, points)

	_, err = LoadPoints(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestProgressEvents(t *testing.T) {
	ctx := context.Background()
	var global, scoped []string
	provider := embedding.NewProvider(embedding.NewHashBackend(64))
	svc := NewService(Deps{
		Store:      vectorstore.New(vectorstore.NewMemoryIndex(), provider),
		Rewriter:   &fakeRewriter{},
		OnProgress: func(e ProgressEvent) { global = append(global, e.Flow+"/"+e.Step) },
	})
	_, err := svc.Index(ctx, testPoints)
	require.NoError(t, err)

	ctx = WithProgress(ctx, func(e ProgressEvent) { scoped = append(scoped, e.Step) })
	_, err = svc.OptimizeFlat(ctx, types.RAGRequest{JobDescription: "Python"})
	require.NoError(t, err)

	assert.Equal(t, []string{"flat/retrieve", "flat/retrieve", "flat/rewrite", "flat/done"}, global)
	assert.Equal(t, []string{"retrieve", "retrieve", "rewrite", "done"}, scoped)
}
