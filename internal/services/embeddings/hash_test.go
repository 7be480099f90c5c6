package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	embedder := NewHashEmbedder()
	ctx := context.Background()

	first, err := embedder.Embed(ctx, "Summarize guidance changes for Tesla")
	require.NoError(t, err)
	second, err := embedder.Embed(ctx, "Summarize guidance changes for Tesla")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, HashDimension)
}

func TestHashEmbedder_Normalized(t *testing.T) {
	embedder := NewHashEmbedder()

	vector, err := embedder.Embed(context.Background(), "delivery guidance raised for the full year")
	require.NoError(t, err)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashEmbedder_CaseAndPunctuationInsensitive(t *testing.T) {
	embedder := NewHashEmbedder()
	ctx := context.Background()

	plain, err := embedder.Embed(ctx, "tesla guidance q2")
	require.NoError(t, err)
	noisy, err := embedder.Embed(ctx, "Tesla, guidance... Q2!")
	require.NoError(t, err)

	assert.Equal(t, plain, noisy)
}

func TestHashEmbedder_RejectsEmptyText(t *testing.T) {
	embedder := NewHashEmbedder()
	ctx := context.Background()

	_, err := embedder.Embed(ctx, "   ")
	assert.Error(t, err)

	_, err = embedder.Embed(ctx, "!!! ???")
	assert.Error(t, err)
}

func TestHashEmbedder_ModelName(t *testing.T) {
	assert.Equal(t, "hash-256", NewHashEmbedder().ModelName())
}
