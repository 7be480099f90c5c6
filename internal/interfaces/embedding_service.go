package interfaces

import "context"

// EmbeddingService defines the interface for query embedding. The
// pipeline only ever embeds query text; corpus embedding and index
// provisioning happen outside this system.
type EmbeddingService interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the embedding model identifier
	ModelName() string
}
