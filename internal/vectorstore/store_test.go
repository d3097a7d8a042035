package vectorstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend fails every call.
type failingBackend struct{}

func (failingBackend) Model() string { return "m" }
func (failingBackend) CreateEmbeddings(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}

func newHashProvider() *embedding.Provider {
	return embedding.NewProvider(embedding.NewHashBackend(128))
}

func TestStore_AddAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	store := New(idx, newHashProvider())

	require.NoError(t, store.Add(ctx, []string{"a", "b"}))
	require.NoError(t, store.Add(ctx, []string{"c"}))

	hits, err := idx.Query(ctx, make([]float32, 128), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"resume_point_0", "resume_point_1", "resume_point_2"}, hits.IDs)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_AddEmptyIsNoop(t *testing.T) {
	idx := NewMemoryIndex()
	store := New(idx, newHashProvider())
	require.NoError(t, store.Add(context.Background(), nil))
	assert.Zero(t, idx.EnsureCalls)
}

func TestStore_QueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryIndex(), newHashProvider())
	require.NoError(t, store.Add(ctx, []string{
		"Painted watercolor landscapes for a gallery",
		"Built Python microservices on AWS",
		"Led a Python data team",
	}))

	results, err := store.Query(ctx, "Built Python microservices on AWS", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Built Python microservices on AWS", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestStore_QueryEmbeddingFailureReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Ensure(ctx))
	require.NoError(t, idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}}, []string{"doc"}))

	store := New(idx, embedding.NewProvider(failingBackend{}))
	results, err := store.Query(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_AddWithFailedEmbeddingsStoresZeroVectors(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryIndex(), embedding.NewProvider(failingBackend{}))
	require.NoError(t, store.Add(ctx, []string{"a", "b"}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_QueryZeroTopK(t *testing.T) {
	store := New(NewMemoryIndex(), newHashProvider())
	results, err := store.Query(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_RecreatesMissingIndexOnce(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	store := New(idx, newHashProvider())

	require.NoError(t, store.Add(ctx, []string{"a"}))
	assert.Equal(t, 1, idx.EnsureCalls)

	idx.Drop()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, idx.EnsureCalls)
}

func TestStore_ConcurrentFirstUseInitialisesOnce(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	store := New(idx, newHashProvider())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Count(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, idx.EnsureCalls, 16)
	assert.GreaterOrEqual(t, idx.EnsureCalls, 1)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryIndex(), newHashProvider())
	require.NoError(t, store.Add(ctx, []string{"a", "b"}))
	require.NoError(t, store.Clear(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Add(ctx, []string{"c"}))
	results, err := store.Query(ctx, "c", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].Text)
}

func TestStore_Metadata(t *testing.T) {
	store := New(NewMemoryIndex(), newHashProvider(), WithCollection("custom"))
	assert.Equal(t, "custom", store.Collection())
	assert.Equal(t, "memory", store.Backend())
}

func TestSQLiteIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "points.db"), "points")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	_, err = idx.Count(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	store := New(idx, newHashProvider())
	require.NoError(t, store.Add(ctx, []string{
		"Designed Kubernetes deployments",
		"Wrote React components",
	}))

	results, err := store.Query(ctx, "Wrote React components", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Wrote React components", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	require.NoError(t, store.Clear(ctx))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenSQLite_RejectsBadCollection(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"), "drop table;")
	assert.Error(t, err)
}

func TestVectorCodecRoundTrip(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	assert.Equal(t, v, decodeVector(encodeVector(v)))
}

func TestOpenIndex(t *testing.T) {
	idx, closeFn, err := OpenIndex(context.Background(), IndexConfig{Backend: "memory"})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "memory", idx.Backend())

	_, _, err = OpenIndex(context.Background(), IndexConfig{Backend: "postgres"})
	assert.Error(t, err)

	_, _, err = OpenIndex(context.Background(), IndexConfig{Backend: "redis"})
	assert.Error(t, err)
}
