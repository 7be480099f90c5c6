package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/citare/internal/common"
)

// GeminiEmbedder generates query embeddings through the Gemini API.
// Corpus-side embedding and index provisioning happen outside this
// system; the pipeline only embeds query text.
type GeminiEmbedder struct {
	config *common.GeminiConfig
	client *genai.Client
	logger arbor.ILogger
}

// NewGeminiEmbedder creates a Gemini-backed query embedder
func NewGeminiEmbedder(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing required setting gemini.api_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEmbedder{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// Embed generates an embedding vector for the given text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.config.EmbeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("Gemini API returned empty embedding")
	}

	embedding := resp.Embeddings[0].Values

	e.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Str("duration", time.Since(start).String()).
		Msg("Generated query embedding")

	return embedding, nil
}

// ModelName returns the embedding model identifier
func (e *GeminiEmbedder) ModelName() string {
	return e.config.EmbeddingModel
}
