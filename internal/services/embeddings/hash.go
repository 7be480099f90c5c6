package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// HashDimension is the vector size of the deterministic embedder. The
// local chunk store is seeded with the same embedder, so the dimensions
// always agree in offline mode.
const HashDimension = 256

// HashEmbedder is a deterministic, dependency-free embedder for offline
// mode and tests. It hashes word tokens into a fixed-size bag-of-words
// vector and L2-normalizes it, so cosine similarity reflects token
// overlap. Not a semantic model; it only needs to be stable and cheap.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a deterministic token-hash embedder
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{dimension: HashDimension}
}

// Embed generates a normalized token-frequency vector for the text
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vector := make([]float32, e.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[int(h.Sum32())%e.dimension]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, fmt.Errorf("text produced no tokens")
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}

	return vector, nil
}

// ModelName returns the embedding model identifier
func (e *HashEmbedder) ModelName() string {
	return fmt.Sprintf("hash-%d", e.dimension)
}

// tokenize lowercases and splits on non-alphanumeric runs
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}
