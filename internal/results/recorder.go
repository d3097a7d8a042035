// Package results archives pipeline responses in the background so callers
// never wait on persistence.
package results

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-rag/internal/observability"
	"go.uber.org/zap"
)

// Result kinds. File sinks use them as filename prefixes.
const (
	KindRAG          = "rag_result"
	KindOptimization = "optimization_result"
)

// saveTimeout bounds a single background write.
const saveTimeout = 30 * time.Second

// Entry describes one archived result.
type Entry struct {
	Name     string    `json:"filename"`
	Kind     string    `json:"kind,omitempty"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Sink stores results.
type Sink interface {
	Save(ctx context.Context, kind string, payload map[string]any) (string, error)
	List(ctx context.Context) ([]Entry, error)
}

// Recorder writes results to a Sink without blocking the caller.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewRecorder creates a Recorder over sink.
func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{sink: sink, logger: observability.OrNop(logger), now: time.Now}
}

// Record stores payload in the background with a saved_at timestamp added.
// Failures are logged, never returned. A nil Recorder does nothing.
func (r *Recorder) Record(kind string, payload map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	doc := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		doc[k] = v
	}
	doc["saved_at"] = r.now().Format(time.RFC3339)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		name, err := r.sink.Save(ctx, kind, doc)
		if err != nil {
			r.logger.Error("failed to save result", zap.String("kind", kind), zap.Error(err))
			return
		}
		r.logger.Info("result saved", zap.String("kind", kind), zap.String("name", name))
	}()
}

// List returns archived results, newest first.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	if r == nil || r.sink == nil {
		return []Entry{}, nil
	}
	return r.sink.List(ctx)
}

// Wait blocks until every pending write has finished.
func (r *Recorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}
