package retrieval

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
)

// StoredChunk is one transcript chunk persisted in the local store
type StoredChunk struct {
	ID        string `badgerhold:"key"`
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// LocalSearch is the offline vector search backend: a Badger-backed
// chunk store scanned with brute-force cosine similarity. It keeps the
// retrieve path fully runnable without network access and gives tests a
// real backend instead of a stub.
type LocalSearch struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewLocalSearch opens (creating if needed) the local chunk store
func NewLocalSearch(config *common.BadgerConfig, logger arbor.ILogger) (*LocalSearch, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing chunk store (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete chunk store directory")
			}
		}
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create store directory: %v", interfaces.ErrSearchUnavailable, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open chunk store: %v", interfaces.ErrSearchUnavailable, err)
	}

	logger.Debug().Str("path", config.Path).Msg("Local chunk store initialized")

	return &LocalSearch{
		store:  store,
		logger: logger,
	}, nil
}

// Insert stores one chunk, replacing any existing chunk with the same ID
func (s *LocalSearch) Insert(chunk *StoredChunk) error {
	if err := s.store.Upsert(chunk.ID, chunk); err != nil {
		return fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Count returns the number of stored chunks
func (s *LocalSearch) Count() (int, error) {
	n, err := s.store.Count(&StoredChunk{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(n), nil
}

// Search scans all stored chunks and returns the top-k by cosine
// similarity, filtered by metadata. The corpus is small enough in
// offline mode that a full scan stays well under query latency budgets.
func (s *LocalSearch) Search(ctx context.Context, req *interfaces.SearchRequest) ([]interfaces.SearchMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored []StoredChunk
	if err := s.store.Find(&stored, nil); err != nil {
		return nil, fmt.Errorf("%w: chunk scan failed: %v", interfaces.ErrSearchUnavailable, err)
	}

	matches := make([]interfaces.SearchMatch, 0, len(stored))
	for i := range stored {
		chunk := &stored[i]
		if !matchesFilters(chunk.Metadata, req.Filters) {
			continue
		}
		if len(chunk.Embedding) != len(req.Embedding) {
			return nil, fmt.Errorf(
				"%w: index dimension mismatch: index=%d, embedder=%d",
				interfaces.ErrSearchUnavailable, len(chunk.Embedding), len(req.Embedding),
			)
		}
		matches = append(matches, interfaces.SearchMatch{
			ID:       chunk.ID,
			Text:     chunk.Text,
			Score:    cosineSimilarity(req.Embedding, chunk.Embedding),
			Metadata: chunk.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if req.TopK > 0 && len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}

	s.logger.Debug().
		Int("scanned", len(stored)).
		Int("matches", len(matches)).
		Msg("Local search completed")

	return matches, nil
}

// HealthCheck verifies the store is open
func (s *LocalSearch) HealthCheck(ctx context.Context) error {
	if _, err := s.Count(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrSearchUnavailable, err)
	}
	return nil
}

// Close closes the store
func (s *LocalSearch) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// matchesFilters applies exact-match metadata filters, ignoring empty
// filter values
func matchesFilters(metadata, filters map[string]string) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// cosineSimilarity computes cosine similarity between two equal-length
// vectors
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
