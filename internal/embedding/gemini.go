package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the Gemini embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// GeminiBackend calls the Gemini batch embedding endpoint.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini embedding backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding backend requires an API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Model returns the embedding model name.
func (b *GeminiBackend) Model() string {
	return b.model
}

// CreateEmbeddings embeds texts with one BatchEmbedContents call.
func (b *GeminiBackend) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := b.client.EmbeddingModel(b.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed failed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, errEmptyResponse
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

// Close releases the underlying client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}
