package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/interfaces"
)

// searchTimeout bounds one nearest-neighbor query
const searchTimeout = 15 * time.Second

// PgVectorSearch is the live vector search backend over Postgres with
// the pgvector extension. The chunk table and its embeddings are
// provisioned by the indexing pipeline outside this system; this
// backend only queries it.
type PgVectorSearch struct {
	db     *sql.DB
	table  string
	logger arbor.ILogger
}

// NewPgVectorSearch opens a connection to the chunk index. The
// connection is verified eagerly: an unreachable database surfaces as
// ErrSearchUnavailable here rather than as an empty result later.
func NewPgVectorSearch(ctx context.Context, url, table string, logger arbor.ILogger) (*PgVectorSearch, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSearchUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: postgres unreachable: %v", interfaces.ErrSearchUnavailable, err)
	}

	logger.Debug().Str("table", table).Msg("Connected to pgvector chunk index")

	return &PgVectorSearch{
		db:     db,
		table:  table,
		logger: logger,
	}, nil
}

// Search runs one cosine nearest-neighbor query with optional metadata
// filters. Matches come back ordered by descending similarity.
func (s *PgVectorSearch) Search(ctx context.Context, req *interfaces.SearchRequest) ([]interfaces.SearchMatch, error) {
	if err := s.checkDimension(ctx, len(req.Embedding)); err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT chunk_id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE ($2 = '' OR metadata->>'company' = $2)
		  AND ($3 = '' OR metadata->>'section' = $3)
		ORDER BY embedding <=> $1
		LIMIT $4`, s.table)

	rows, err := s.db.QueryContext(
		queryCtx,
		query,
		pgvector.NewVector(req.Embedding),
		req.Filters["company"],
		req.Filters["section"],
		req.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query failed: %v", interfaces.ErrSearchUnavailable, err)
	}
	defer rows.Close()

	var matches []interfaces.SearchMatch
	for rows.Next() {
		var (
			match   interfaces.SearchMatch
			rawMeta []byte
		)
		if err := rows.Scan(&match.ID, &match.Text, &rawMeta, &match.Score); err != nil {
			return nil, fmt.Errorf("%w: failed to scan match: %v", interfaces.ErrSearchUnavailable, err)
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &match.Metadata); err != nil {
				s.logger.Warn().Err(err).Str("chunk_id", match.ID).Msg("Skipping unreadable chunk metadata")
				match.Metadata = nil
			}
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSearchUnavailable, err)
	}

	s.logger.Debug().
		Int("matches", len(matches)).
		Int("top_k", req.TopK).
		Msg("pgvector search completed")

	return matches, nil
}

// checkDimension compares the query embedding dimension with the stored
// index dimension. A mismatch means the configured embedding model does
// not match the index, which is a misconfiguration, not an empty result.
func (s *PgVectorSearch) checkDimension(ctx context.Context, queryDim int) error {
	var indexDim sql.NullInt64
	query := fmt.Sprintf(`SELECT vector_dims(embedding) FROM %s LIMIT 1`, s.table)

	err := s.db.QueryRowContext(ctx, query).Scan(&indexDim)
	if err == sql.ErrNoRows {
		// Empty index is a valid (if useless) state; searches return nothing
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to probe index dimension: %v", interfaces.ErrSearchUnavailable, err)
	}

	if indexDim.Valid && int(indexDim.Int64) != queryDim {
		return fmt.Errorf(
			"%w: index dimension mismatch: index=%d, embedder=%d; use a matching embedding model or rebuild the index",
			interfaces.ErrSearchUnavailable, indexDim.Int64, queryDim,
		)
	}

	return nil
}

// HealthCheck verifies the database is reachable
func (s *PgVectorSearch) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrSearchUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (s *PgVectorSearch) Close() error {
	return s.db.Close()
}
