package models

import "fmt"

// RetrievedChunk is one unit of evidence returned by the retriever.
// Chunks are ordered by descending relevance and labeled S1..Sk by rank;
// the label stays stable for the lifetime of one request so context
// rendering and citation validation agree on what each label means.
type RetrievedChunk struct {
	// CitationID is the per-request-stable source label, e.g. "S1"
	CitationID string `json:"citation_id"`

	// Text is the retrievable span of transcript content
	Text string `json:"text"`

	// Score is the similarity score from the vector search, higher is
	// more relevant
	Score float64 `json:"score"`

	// Metadata carries scalar source attributes (doc_id, company,
	// source, section, speaker)
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MetadataValue returns the named metadata attribute or a default when
// the attribute is missing or empty
func (c *RetrievedChunk) MetadataValue(key, fallback string) string {
	if v, ok := c.Metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}

// CitationLabel formats the sequential citation label for a 1-based rank
func CitationLabel(rank int) string {
	return fmt.Sprintf("S%d", rank)
}
