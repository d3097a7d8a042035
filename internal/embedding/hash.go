package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// HashModel is the model name reported by HashBackend.
const HashModel = "hash-embedding"

// HashBackend is a deterministic offline embedder. Each lower-cased token is
// hashed into one of Dim buckets and the result is L2-normalised, so texts
// that share words have positive cosine similarity. It needs no network access
// and is used for local runs and tests.
type HashBackend struct {
	Dim int
}

// NewHashBackend creates a HashBackend with the given dimension.
func NewHashBackend(dim int) *HashBackend {
	if dim <= 0 {
		dim = 256
	}
	return &HashBackend{Dim: dim}
}

// Model returns HashModel.
func (b *HashBackend) Model() string {
	return HashModel
}

// CreateEmbeddings hashes every text.
func (b *HashBackend) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = b.vector(text)
	}
	return out, nil
}

func (b *HashBackend) vector(text string) []float32 {
	v := make([]float32, b.Dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?()[]{}\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[int(h.Sum32()%uint32(b.Dim))] += 1
	}

	n := Norm(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return v
}

var _ Backend = (*HashBackend)(nil)
var _ Backend = (*OpenAIBackend)(nil)
var _ Backend = (*GeminiBackend)(nil)
