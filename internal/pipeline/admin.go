package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/resume-rag/internal/results"
	"go.uber.org/zap"
)

// VectorStoreStats describes the indexed collection.
type VectorStoreStats struct {
	TotalPoints    int    `json:"total_points"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	Backend        string `json:"backend"`
}

// Stats summarises the pipeline configuration and index size.
type Stats struct {
	VectorStore      VectorStoreStats `json:"vector_store"`
	OptimizerModel   string           `json:"optimizer_model"`
	EmbeddingModel   string           `json:"embedding_model"`
	PipelineVersion  string           `json:"pipeline_version"`
	OptimizationType string           `json:"optimization_type"`
}

// Health is the result of a health check.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Stats     *Stats `json:"stats,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Stats reports the vector store size and the models in use.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count points: %w", err)
	}
	optimizerModel := ""
	if s.rewriter != nil {
		optimizerModel = s.rewriter.Model()
	}
	return &Stats{
		VectorStore: VectorStoreStats{
			TotalPoints:    count,
			CollectionName: s.store.Collection(),
			EmbeddingModel: s.embeddingModel,
			Backend:        s.store.Backend(),
		},
		OptimizerModel:   optimizerModel,
		EmbeddingModel:   s.embeddingModel,
		PipelineVersion:  Version,
		OptimizationType: "unified",
	}, nil
}

// Health reports whether the vector store answers. It never returns an error;
// failures are described in the result.
func (s *Service) Health(ctx context.Context) *Health {
	h := &Health{
		Service:   serviceName,
		Version:   Version,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
		return h
	}
	h.Status = "healthy"
	h.Stats = stats
	return h
}

// Index adds points to the vector store. Blank points are skipped. It
// returns the number of points added.
func (s *Service) Index(ctx context.Context, points []string) (int, error) {
	clean := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		return 0, nil
	}
	if err := s.store.Add(ctx, clean); err != nil {
		return 0, fmt.Errorf("failed to index points: %w", err)
	}
	s.logger.Info("indexed points", zap.Int("count", len(clean)))
	return len(clean), nil
}

// Clear removes every indexed point.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	s.logger.Info("cleared index", zap.String("collection", s.store.Collection()))
	return nil
}

// Results lists archived results, newest first.
func (s *Service) Results(ctx context.Context) ([]results.Entry, error) {
	entries, err := s.recorder.List(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []results.Entry{}
	}
	return entries, nil
}

// Wait blocks until background result writes have finished.
func (s *Service) Wait() {
	s.recorder.Wait()
}

// LoadPoints reads resume points from path. A file whose first non-blank
// character is '[' is parsed as a JSON array of strings; anything else is
// read one point per line with blank lines skipped.
func LoadPoints(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points file: %w", err)
	}
	return ParsePoints(data)
}

// ParsePoints parses the contents of a points file. See LoadPoints.
func ParsePoints(data []byte) ([]string, error) {
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "[") {
		var raw []string
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse points JSON: %w", err)
		}
		points := make([]string, 0, len(raw))
		for _, p := range raw {
			if p = strings.TrimSpace(p); p != "" {
				points = append(points, p)
			}
		}
		return points, nil
	}

	points := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			points = append(points, line)
		}
	}
	return points, nil
}

// toPayload converts v into the generic map form stored by the recorder.
func toPayload(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
