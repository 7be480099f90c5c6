package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/services/evidence"
	"github.com/ternarybob/citare/internal/services/router"
)

// Service produces citation-grounded answers under a strict output
// contract: the generator must return a single JSON object with an
// answer string and citation labels drawn only from the supplied
// context. Malformed output is a generation defect and is recovered
// locally (one repair re-prompt, then a deterministic fallback);
// transport failure of the generation capability is fatal for the query.
type Service struct {
	gen         interfaces.GenerationService
	maxTokens   int
	temperature float32
	logger      arbor.ILogger
}

// NewService creates a synthesizer over a generation capability
func NewService(gen interfaces.GenerationService, config *common.SynthesisConfig, logger arbor.ILogger) *Service {
	return &Service{
		gen:         gen,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// rawAnswer is the strict JSON shape the generator must return
type rawAnswer struct {
	Answer      string   `json:"answer"`
	CitationIDs []string `json:"citation_ids"`
}

// Synthesize produces a grounded answer from labeled evidence. Empty
// evidence skips the generation call entirely and returns the
// deterministic insufficient-evidence answer: a call that cannot be
// grounded is not worth paying for or risking.
func (s *Service) Synthesize(ctx context.Context, query *models.Query, chunks []models.RetrievedChunk) (*models.Answer, error) {
	if len(chunks) == 0 {
		s.logger.Info().Msg("No evidence above threshold; skipping generation")
		return &models.Answer{
			Text:        insufficientEvidenceAnswer,
			CitationIDs: []string{},
			Citations:   []models.Citation{},
		}, nil
	}

	contextBlock, err := evidence.BuildContext(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to build evidence context: %w", err)
	}

	return s.SynthesizeFromContext(ctx, query, contextBlock, chunks)
}

// SynthesizeFromContext runs the generation call against an already
// rendered context block
func (s *Service) SynthesizeFromContext(ctx context.Context, query *models.Query, contextBlock string, chunks []models.RetrievedChunk) (*models.Answer, error) {
	raw, err := s.gen.Generate(ctx, &interfaces.GenerationRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(userPromptTemplate, query.Text, contextBlock),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generation capability failed: %w", err)
	}

	parsed, ok := s.parseRaw(raw)
	if !ok {
		parsed, ok = s.repair(ctx, raw)
	}
	if !ok {
		s.logger.Warn().Msg("Generation output unparseable after repair; returning fallback answer")
		return &models.Answer{
			Text:        unparseableAnswer,
			CitationIDs: []string{},
			Citations:   []models.Citation{},
		}, nil
	}

	return s.resolveCitations(parsed, chunks), nil
}

// DirectAnswer handles the no-retrieval conceptual branch. Generation
// failure here degrades to a canned offer rather than failing the
// query; the direct branch always succeeds.
func (s *Service) DirectAnswer(ctx context.Context, query *models.Query) *models.Answer {
	raw, err := s.gen.Generate(ctx, &interfaces.GenerationRequest{
		System:      directSystemPrompt,
		Prompt:      query.Text,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Direct generation failed; returning conceptual offer")
		raw = "This is a general question. I can answer conceptually, or retrieve transcript evidence if you specify a company and quarter."
	}

	return &models.Answer{
		Text:        strings.TrimSpace(raw),
		CitationIDs: []string{},
		Citations:   []models.Citation{},
	}
}

// parseRaw attempts to decode generation output as the strict object
func (s *Service) parseRaw(raw string) (*rawAnswer, bool) {
	var parsed rawAnswer
	if err := json.Unmarshal([]byte(router.StripCodeFence(raw)), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}

// repair re-prompts once for a reformatted response. Bounded to one
// attempt to keep latency and cost predictable.
func (s *Service) repair(ctx context.Context, raw string) (*rawAnswer, bool) {
	s.logger.Warn().Msg("Generation output was not valid JSON; attempting one repair re-prompt")

	repaired, err := s.gen.Generate(ctx, &interfaces.GenerationRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(repairPromptTemplate, raw),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Repair re-prompt failed")
		return nil, false
	}

	return s.parseRaw(repaired)
}

// resolveCitations intersects claimed citation ids with the labels that
// actually exist in the evidence. Invalid ids are dropped, not fatal:
// a hallucinated label is a generation defect, and discarding the whole
// answer over it would throw away grounded content.
func (s *Service) resolveCitations(parsed *rawAnswer, chunks []models.RetrievedChunk) *models.Answer {
	byLabel := make(map[string]*models.RetrievedChunk, len(chunks))
	for i := range chunks {
		byLabel[chunks[i].CitationID] = &chunks[i]
	}

	citationIDs := make([]string, 0, len(parsed.CitationIDs))
	citations := make([]models.Citation, 0, len(parsed.CitationIDs))
	seen := make(map[string]bool, len(parsed.CitationIDs))
	dropped := 0

	for _, id := range parsed.CitationIDs {
		chunk, ok := byLabel[id]
		if !ok {
			dropped++
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		citationIDs = append(citationIDs, id)
		citations = append(citations, models.NewCitation(chunk))
	}

	if dropped > 0 {
		s.logger.Warn().
			Int("dropped", dropped).
			Msg("Dropped citation ids not present in evidence context")
	}

	text := strings.TrimSpace(parsed.Answer)
	if text == "" {
		text = unparseableAnswer
	}

	s.logger.Info().
		Int("citations", len(citationIDs)).
		Msg("Synthesis completed")

	return &models.Answer{
		Text:        text,
		CitationIDs: citationIDs,
		Citations:   citations,
	}
}
