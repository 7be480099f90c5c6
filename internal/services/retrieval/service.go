package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// Retriever fetches evidence for a query: embed the query text, run the
// vector search, drop duplicates and low-relevance matches, then assign
// stable citation labels S1..Sk strictly by rank. Labels are reused when
// rendering context and when validating citations, so they must not
// change for the lifetime of one request.
type Retriever struct {
	embedder interfaces.EmbeddingService
	search   interfaces.VectorSearchService
	topK     int
	minScore float64
	logger   arbor.ILogger
}

// NewRetriever creates a retriever adapter over an embedder and a
// vector search backend
func NewRetriever(
	embedder interfaces.EmbeddingService,
	search interfaces.VectorSearchService,
	topK int,
	minScore float64,
	logger arbor.ILogger,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		search:   search,
		topK:     topK,
		minScore: minScore,
		logger:   logger,
	}
}

// Retrieve returns labeled evidence chunks for the query, highest
// relevance first. A well-formed query that clears no chunk above the
// minimum score returns an empty slice, not an error; an unreachable or
// misconfigured backend propagates interfaces.ErrSearchUnavailable so
// the caller surfaces a clear terminal failure instead of an empty
// grounded answer.
func (r *Retriever) Retrieve(ctx context.Context, query *models.Query) ([]models.RetrievedChunk, error) {
	embedding, err := r.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding failed: %v", interfaces.ErrSearchUnavailable, err)
	}

	matches, err := r.search.Search(ctx, &interfaces.SearchRequest{
		Embedding: embedding,
		TopK:      r.topK,
		Filters:   query.Filters,
	})
	if err != nil {
		return nil, err
	}

	chunks := r.labelMatches(matches)

	r.logger.Info().
		Int("matches", len(matches)).
		Int("chunks", len(chunks)).
		Str("min_score", fmt.Sprintf("%.2f", r.minScore)).
		Msg("Retriever returned chunks")

	return chunks, nil
}

// labelMatches deduplicates by chunk identity, applies the relevance
// threshold, and assigns citation labels by rank
func (r *Retriever) labelMatches(matches []interfaces.SearchMatch) []models.RetrievedChunk {
	seen := make(map[string]bool, len(matches))
	chunks := make([]models.RetrievedChunk, 0, len(matches))

	for _, match := range matches {
		if match.ID != "" && seen[match.ID] {
			continue
		}
		if match.Score < r.minScore {
			continue
		}
		if match.ID != "" {
			seen[match.ID] = true
		}

		metadata := make(map[string]string, len(match.Metadata)+1)
		for k, v := range match.Metadata {
			metadata[k] = v
		}
		if match.ID != "" {
			metadata["doc_id"] = match.ID
		}

		chunks = append(chunks, models.RetrievedChunk{
			CitationID: models.CitationLabel(len(chunks) + 1),
			Text:       match.Text,
			Score:      match.Score,
			Metadata:   metadata,
		})

		if len(chunks) == r.topK {
			break
		}
	}

	return chunks
}
