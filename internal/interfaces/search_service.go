package interfaces

import (
	"context"
	"errors"
)

// ErrSearchUnavailable marks the vector search capability as unreachable
// or misconfigured (for example an embedding/index dimension mismatch).
// It is fatal for the query that hit it and is never downgraded to an
// empty result.
var ErrSearchUnavailable = errors.New("vector search unavailable")

// SearchRequest is one nearest-neighbor lookup against the chunk index
type SearchRequest struct {
	// Embedding is the query vector
	Embedding []float32

	// TopK is the number of matches requested
	TopK int

	// Filters constrain matches by scalar metadata attributes
	// (company, section). Empty values are ignored.
	Filters map[string]string
}

// SearchMatch is one raw match from the vector index, before citation
// labeling or threshold filtering
type SearchMatch struct {
	// ID identifies the underlying chunk; used for deduplication
	ID string

	// Text is the stored chunk content
	Text string

	// Score is the similarity score, higher is more relevant
	Score float64

	// Metadata carries the chunk's scalar attributes
	Metadata map[string]string
}

// VectorSearchService defines the interface for the external vector
// search capability. Implementations return matches ordered by
// descending score. A well-formed query that matches nothing returns an
// empty slice, not an error; ErrSearchUnavailable (possibly wrapped) is
// reserved for unreachable or misconfigured backends.
type VectorSearchService interface {
	// Search runs one nearest-neighbor query
	Search(ctx context.Context, req *SearchRequest) ([]SearchMatch, error)

	// HealthCheck verifies the backend is reachable and compatible
	HealthCheck(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}
