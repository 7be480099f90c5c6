package retrieval

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/services/embeddings"
)

func newTestStore(t *testing.T) *LocalSearch {
	t.Helper()
	store, err := NewLocalSearch(&common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "chunks"),
	}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalSearch_InsertAndSearch(t *testing.T) {
	store := newTestStore(t)
	embedder := embeddings.NewHashEmbedder()
	ctx := context.Background()

	texts := map[string]string{
		"chunk-1": "delivery guidance raised for the full year",
		"chunk-2": "cloud services revenue grew ahead of expectations",
	}
	for id, text := range texts {
		embedding, err := embedder.Embed(ctx, text)
		require.NoError(t, err)
		require.NoError(t, store.Insert(&StoredChunk{
			ID:        id,
			Text:      text,
			Metadata:  map[string]string{"company": "tesla"},
			Embedding: embedding,
		}))
	}

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	queryEmbedding, err := embedder.Embed(ctx, "what changed in delivery guidance")
	require.NoError(t, err)

	matches, err := store.Search(ctx, &interfaces.SearchRequest{
		Embedding: queryEmbedding,
		TopK:      2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The guidance chunk shares tokens with the query and must rank first
	assert.Equal(t, "chunk-1", matches[0].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestLocalSearch_MetadataFilters(t *testing.T) {
	store := newTestStore(t)
	embedder := embeddings.NewHashEmbedder()
	ctx := context.Background()

	chunks := []struct {
		id      string
		company string
		section string
	}{
		{"tsla-1", "tesla", "guidance"},
		{"tsla-2", "tesla", "qa"},
		{"aapl-1", "apple", "guidance"},
	}
	for _, c := range chunks {
		embedding, err := embedder.Embed(ctx, "quarterly results discussion")
		require.NoError(t, err)
		require.NoError(t, store.Insert(&StoredChunk{
			ID:        c.id,
			Text:      "quarterly results discussion",
			Metadata:  map[string]string{"company": c.company, "section": c.section},
			Embedding: embedding,
		}))
	}

	queryEmbedding, err := embedder.Embed(ctx, "quarterly results")
	require.NoError(t, err)

	matches, err := store.Search(ctx, &interfaces.SearchRequest{
		Embedding: queryEmbedding,
		TopK:      10,
		Filters:   map[string]string{"company": "tesla", "section": "guidance"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tsla-1", matches[0].ID)
}

func TestLocalSearch_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(&StoredChunk{
		ID:        "chunk-1",
		Text:      "some text",
		Embedding: []float32{0.1, 0.2, 0.3},
	}))

	_, err := store.Search(context.Background(), &interfaces.SearchRequest{
		Embedding: make([]float32, embeddings.HashDimension),
		TopK:      5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrSearchUnavailable)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestSeedDefaultCorpus(t *testing.T) {
	store := newTestStore(t)
	embedder := embeddings.NewHashEmbedder()
	ctx := context.Background()

	require.NoError(t, SeedDefaultCorpus(ctx, store, embedder))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, len(defaultCorpus), count)

	// Re-seeding a populated store is a no-op
	require.NoError(t, SeedDefaultCorpus(ctx, store, embedder))
	count, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, len(defaultCorpus), count)
}

func TestSeededCorpus_GuidanceQueryRetrieves(t *testing.T) {
	store := newTestStore(t)
	embedder := embeddings.NewHashEmbedder()
	ctx := context.Background()
	require.NoError(t, SeedDefaultCorpus(ctx, store, embedder))

	queryEmbedding, err := embedder.Embed(ctx, "summarize guidance changes for tesla")
	require.NoError(t, err)

	matches, err := store.Search(ctx, &interfaces.SearchRequest{
		Embedding: queryEmbedding,
		TopK:      3,
		Filters:   map[string]string{"company": "tesla"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, "tesla", m.Metadata["company"])
	}
}
