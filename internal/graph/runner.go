// Package graph executes the query pipeline as a forward-only state
// machine: start -> routed -> one of {clarifying, retrieving,
// answering-direct} -> (retrieve only) context-built -> synthesizing ->
// done. There are no cycles, no backtracking, and no re-routing within
// a single query; retries, where they exist, live inside the retriever
// and generation adapters.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/services/evidence"
	"github.com/ternarybob/citare/internal/services/retrieval"
	"github.com/ternarybob/citare/internal/services/router"
	"github.com/ternarybob/citare/internal/services/synthesis"
)

// Runner sequences the pipeline nodes for one query at a time. A Runner
// is safe for concurrent use: each Run owns its PipelineState
// exclusively and the underlying services share only read-only
// configuration.
type Runner struct {
	router      *router.Router
	retriever   *retrieval.Retriever
	synthesizer *synthesis.Service
	logger      arbor.ILogger
}

// NewRunner creates a pipeline runner over the four core services
func NewRunner(
	rt *router.Router,
	retriever *retrieval.Retriever,
	synthesizer *synthesis.Service,
	logger arbor.ILogger,
) *Runner {
	return &Runner{
		router:      rt,
		retriever:   retriever,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Run executes the full pipeline for one query and returns the terminal
// state. A non-nil error always corresponds to a populated Error field
// on the returned state; clarify and direct branches never fail.
func (r *Runner) Run(ctx context.Context, query *models.Query) (*models.PipelineState, error) {
	state := models.NewPipelineState(query)

	r.logger.Debug().
		Str("request_id", state.RequestID).
		Str("query", query.Text).
		Msg("Pipeline started")

	// Cancellation propagates before a node starts, never mid-call
	if err := ctx.Err(); err != nil {
		return r.fail(state, err)
	}

	start := time.Now()
	state.Decision = r.router.Route(ctx, query)
	state.RecordTiming(models.NodeRouted, time.Since(start))

	var err error
	switch state.Decision.Route {
	case models.RouteClarify:
		r.runClarify(state)
	case models.RouteDirect:
		r.runDirect(ctx, state)
	default:
		err = r.runRetrieve(ctx, state)
	}

	if err != nil {
		return r.fail(state, err)
	}

	state.RecordTiming(models.NodeDone, 0)
	r.logger.Info().
		Str("request_id", state.RequestID).
		Str("route", string(state.Decision.Route)).
		Int("citations", len(state.Answer.CitationIDs)).
		Msg("Pipeline completed")

	return state, nil
}

// runClarify terminates with a deterministic follow-up question
func (r *Runner) runClarify(state *models.PipelineState) {
	start := time.Now()

	questions := []string{
		fmt.Sprintf("Can you specify the company and quarter for: '%s'?", state.Query.Text),
		"Do you want risks, guidance, or financial-performance details?",
	}
	state.Answer = &models.Answer{
		Text:        "I need a bit more detail before retrieving evidence.\n- " + questions[0] + "\n- " + questions[1],
		CitationIDs: []string{},
		Citations:   []models.Citation{},
	}

	state.RecordTiming(models.NodeClarifying, time.Since(start))
}

// runDirect terminates with an unsupported conceptual answer
func (r *Runner) runDirect(ctx context.Context, state *models.PipelineState) {
	start := time.Now()
	state.Answer = r.synthesizer.DirectAnswer(ctx, state.Query)
	state.RecordTiming(models.NodeAnsweringDirect, time.Since(start))
}

// runRetrieve walks the evidence branch: retrieving -> context-built ->
// synthesizing. Retrieval or generation transport failure is fatal for
// the request and is never downgraded to an empty grounded answer.
func (r *Runner) runRetrieve(ctx context.Context, state *models.PipelineState) error {
	filtered := models.NewQuery(state.Query.Text, state.Decision.Filters)

	start := time.Now()
	chunks, err := r.retriever.Retrieve(ctx, filtered)
	state.RecordTiming(models.NodeRetrieving, time.Since(start))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	state.Chunks = chunks

	if len(chunks) == 0 {
		// Nothing cleared the threshold; the synthesizer answers
		// deterministically without a generation call
		start = time.Now()
		state.Answer, err = r.synthesizer.Synthesize(ctx, state.Query, nil)
		state.RecordTiming(models.NodeSynthesizing, time.Since(start))
		return err
	}

	start = time.Now()
	contextBlock, err := evidence.BuildContext(chunks)
	state.RecordTiming(models.NodeContextBuilt, time.Since(start))
	if err != nil {
		return fmt.Errorf("context build failed: %w", err)
	}
	state.Context = contextBlock

	if err := ctx.Err(); err != nil {
		return err
	}

	start = time.Now()
	answer, err := r.synthesizer.SynthesizeFromContext(ctx, state.Query, contextBlock, chunks)
	state.RecordTiming(models.NodeSynthesizing, time.Since(start))
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	state.Answer = answer

	return nil
}

// fail marks the state as fatally failed and returns both the state and
// the error so callers can inspect either
func (r *Runner) fail(state *models.PipelineState, err error) (*models.PipelineState, error) {
	state.Error = err.Error()
	state.RecordTiming(models.NodeDone, 0)

	r.logger.Error().
		Str("request_id", state.RequestID).
		Err(err).
		Msg("Pipeline failed")

	return state, err
}
