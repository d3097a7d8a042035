package embedding

import (
	"errors"
	"math"
)

var errEmptyResponse = errors.New("empty embedding response")

// CosineSimilarity returns dot(a,b)/(|a||b|). It returns 0 when either vector
// has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// DimensionForModel returns the vector length produced by a known model.
// Unknown models default to 1536.
func DimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-004", "embedding-001":
		return 768
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}
