package selection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known texts to fixed vectors; unknown texts get zero vectors.
type fakeEmbedder struct {
	vectors    map[string][]float32
	failEmbed  bool
	embedCalls int
	batchCalls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) embedding.Result {
	f.embedCalls++
	if f.failEmbed {
		return embedding.Result{Err: errors.New("down")}
	}
	v, ok := f.vectors[text]
	if !ok {
		v = []float32{0, 0}
	}
	return embedding.Result{Vector: v, OK: true}
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) [][]float32 {
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0}
		}
	}
	return out
}

func bullets(texts ...string) []types.Bullet {
	out := make([]types.Bullet, len(texts))
	for i, t := range texts {
		out[i] = types.Bullet{ID: string(rune('a' + i)), Text: t}
	}
	return out
}

func TestSelect_TopNByCosine(t *testing.T) {
	job := "job"
	emb := &fakeEmbedder{vectors: map[string][]float32{
		job:  {1, 0},
		"b1": {0.1, 1},
		"b2": {1, 0},
		"b3": {1, 1},
		"b4": {0, 1},
		"b5": {1, 0.2},
	}}
	s := NewSelector(emb)

	jobVec := s.JobEmbedding(context.Background(), job)
	require.NotNil(t, jobVec)

	got := s.Select(context.Background(), bullets("b1", "b2", "b3", "b4", "b5"), job, 2, jobVec)
	require.Len(t, got, 2)
	assert.Equal(t, "b2", got[0].Text)
	assert.Equal(t, "b5", got[1].Text)
	assert.Equal(t, 1.0, got[0].RelevanceScore)
	assert.Equal(t, 0.981, got[1].RelevanceScore)
	assert.Equal(t, 1, emb.batchCalls)
}

func TestSelect_EmptyMakesNoCalls(t *testing.T) {
	emb := &fakeEmbedder{}
	s := NewSelector(emb)
	got := s.Select(context.Background(), nil, "job", 3, []float32{1, 0})
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, emb.batchCalls)
	assert.Zero(t, emb.embedCalls)
}

func TestSelect_FallsBackToWordOverlapPerBullet(t *testing.T) {
	job := "python aws"
	emb := &fakeEmbedder{vectors: map[string][]float32{
		job:            {1, 0},
		"unrelated":    {0, 1},
		"python aws":   {0, 0}, // zero vector, so word overlap decides
		"nothing here": {0, 0},
	}}
	s := NewSelector(emb)
	got := s.Select(context.Background(), bullets("unrelated", "python aws", "nothing here"), job, 3, []float32{1, 0})

	require.Len(t, got, 3)
	assert.Equal(t, "python aws", got[0].Text)
	assert.Equal(t, 1.0, got[0].RelevanceScore)
}

func TestSelect_NoJobEmbeddingUsesWordOverlap(t *testing.T) {
	emb := &fakeEmbedder{failEmbed: true}
	s := NewSelector(emb)

	jobVec := s.JobEmbedding(context.Background(), "go developer")
	assert.Nil(t, jobVec)

	got := s.Select(context.Background(), bullets("wrote java", "go developer at acme"), "go developer", 1, jobVec)
	require.Len(t, got, 1)
	assert.Equal(t, "go developer at acme", got[0].Text)
	assert.Zero(t, emb.batchCalls)
}

func TestJobEmbedding_ZeroNormIsUnavailable(t *testing.T) {
	s := NewSelector(&fakeEmbedder{})
	assert.Nil(t, s.JobEmbedding(context.Background(), "anything"))
}

func TestSelect_NilEmbedder(t *testing.T) {
	s := NewSelector(nil)
	assert.Nil(t, s.JobEmbedding(context.Background(), "job"))
	got := s.Select(context.Background(), bullets("job text", "other"), "job text", 5, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "job text", got[0].Text)
}

func TestSelect_LineCounts(t *testing.T) {
	s := NewSelector(nil)
	long := strings.Repeat("x", 140)
	got := s.Select(context.Background(), bullets("short", long), "", 2, nil)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].LineCount)
	assert.Equal(t, 3, got[1].LineCount)
}

func TestSelectResume_SharesJobEmbedding(t *testing.T) {
	job := "job"
	emb := &fakeEmbedder{vectors: map[string][]float32{job: {1, 0}, "e1": {1, 0}, "e2": {0, 1}}}
	s := NewSelector(emb)

	resume := types.StructuredResume{
		Experiences: []types.Experience{
			{ID: "exp1", Company: "Acme", Role: "Engineer", Bullets: bullets("e1", "e2")},
			{ID: "exp2", Company: "Other", Role: "Intern"},
		},
		Education:      []types.Education{{ID: "edu1", School: "State", Bullets: bullets("e2")}},
		Projects:       []types.Project{{ID: "p1", Name: "Tool", Bullets: bullets("e1", "e2", "e1")}},
		CustomSections: []types.CustomSection{{ID: "c1", Title: "Awards", Bullets: bullets("e2")}},
	}
	limits := types.SectionLimits{Experience: 1, Education: 2, Project: 2, Custom: 5}

	out := s.SelectResume(context.Background(), resume, job, limits)
	require.NotNil(t, out)
	assert.Equal(t, 1, emb.embedCalls)

	require.Len(t, out.Experiences, 2)
	assert.Equal(t, "Acme", out.Experiences[0].Company)
	require.Len(t, out.Experiences[0].SelectedBullets, 1)
	assert.Equal(t, "e1", out.Experiences[0].SelectedBullets[0].Text)
	assert.Empty(t, out.Experiences[1].SelectedBullets)

	assert.Len(t, out.Education[0].SelectedBullets, 1)
	assert.Len(t, out.Projects[0].SelectedBullets, 2)
	assert.Len(t, out.CustomSections[0].SelectedBullets, 1)
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Go Python", "go python", 1.0},
		{"half", "go python", "go java", 1.0 / 3.0},
		{"disjoint", "a b", "c d", 0.0},
		{"both empty", "", "", 0.0},
		{"one empty", "go", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WordOverlap(tt.a, tt.b), 1e-9)
		})
	}
}
