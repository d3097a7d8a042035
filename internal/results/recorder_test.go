package results

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WritesFile(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)
	sink.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	rec := NewRecorder(sink, nil)
	rec.Record(KindRAG, map[string]any{"gaps": []string{"Go"}})
	rec.Wait()

	path := filepath.Join(dir, "rag_result_20250304_050607.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []any{"Go"}, doc["gaps"])
	assert.NotEmpty(t, doc["saved_at"])
	assert.Contains(t, string(data), "\n  \"gaps\"")
}

func TestRecorder_DoesNotMutatePayload(t *testing.T) {
	rec := NewRecorder(NewFileSink(t.TempDir()), nil)
	payload := map[string]any{"a": 1}
	rec.Record(KindOptimization, payload)
	rec.Wait()
	_, ok := payload["saved_at"]
	assert.False(t, ok)
}

func TestFileSink_SameSecondDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)
	sink.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	first, err := sink.Save(context.Background(), KindOptimization, map[string]any{"n": 1})
	require.NoError(t, err)
	second, err := sink.Save(context.Background(), KindOptimization, map[string]any{"n": 2})
	require.NoError(t, err)

	assert.Equal(t, "optimization_result_20250101_000000.json", first)
	assert.Equal(t, "optimization_result_20250101_000000_1.json", second)
}

func TestFileSink_ListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	older := filepath.Join(dir, "rag_result_20240101_000000.json")
	newer := filepath.Join(dir, "optimization_result_20240102_000000.json")
	require.NoError(t, os.WriteFile(older, []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(older, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	list, err := sink.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "optimization_result_20240102_000000.json", list[0].Name)
	assert.Equal(t, KindOptimization, list[0].Kind)
	assert.Equal(t, int64(7), list[0].Size)
	assert.Equal(t, KindRAG, list[1].Kind)
}

func TestFileSink_ListMissingDir(t *testing.T) {
	list, err := NewFileSink(filepath.Join(t.TempDir(), "missing")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingSink struct {
	mu    sync.Mutex
	saves int
}

func (f *failingSink) Save(context.Context, string, map[string]any) (string, error) {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	return "", errors.New("disk full")
}

func (f *failingSink) List(context.Context) ([]Entry, error) { return nil, errors.New("disk full") }

func TestRecorder_ErrorsAreSwallowed(t *testing.T) {
	sink := &failingSink{}
	rec := NewRecorder(sink, nil)
	rec.Record(KindRAG, nil)
	rec.Wait()
	assert.Equal(t, 1, sink.saves)

	_, err := rec.List(context.Background())
	assert.Error(t, err)
}

func TestRecorder_Nil(t *testing.T) {
	var rec *Recorder
	rec.Record(KindRAG, map[string]any{})
	rec.Wait()
	list, err := rec.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
