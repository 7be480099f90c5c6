package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/interfaces"
)

// OfflineService is a deterministic GenerationService used in offline
// mode and in tests. It never performs I/O: synthesis prompts are
// answered by echoing the highest-ranked evidence with its labels, and
// classification prompts fall through to the heuristic layer upstream,
// so the output here only needs to honor the strict JSON contract.
type OfflineService struct {
	logger arbor.ILogger
}

// NewOfflineService creates a deterministic offline generator
func NewOfflineService(logger arbor.ILogger) *OfflineService {
	return &OfflineService{logger: logger}
}

// labelRegex matches rendered source labels like [S1]
var labelRegex = regexp.MustCompile(`\[(S\d+)\]`)

// Generate produces deterministic output for the request. Prompts that
// carry labeled sources yield strict JSON grounded in the first two
// labels; anything else yields a short conceptual reply.
func (s *OfflineService) Generate(ctx context.Context, req *interfaces.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	labels := labelRegex.FindAllStringSubmatch(req.Prompt, -1)
	if len(labels) == 0 {
		return s.conceptualAnswer(req.Prompt), nil
	}

	seen := make(map[string]bool)
	var cited []string
	for _, m := range labels {
		if !seen[m[1]] {
			seen[m[1]] = true
			cited = append(cited, m[1])
		}
		if len(cited) == 2 {
			break
		}
	}

	payload := map[string]interface{}{
		"answer":       fmt.Sprintf("Based on the indexed transcripts, the most relevant evidence is %s.", strings.Join(cited, " and ")),
		"citation_ids": cited,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode offline answer: %w", err)
	}

	s.logger.Debug().
		Int("cited", len(cited)).
		Msg("Offline generator produced grounded answer")

	return string(data), nil
}

// conceptualAnswer handles direct-route prompts with no sources
func (s *OfflineService) conceptualAnswer(prompt string) string {
	question := strings.TrimSpace(prompt)
	if idx := strings.Index(question, "\n"); idx > 0 {
		question = question[:idx]
	}
	return fmt.Sprintf(
		"This is a general question (%s). I can answer conceptually, or retrieve transcript evidence if you specify a company and quarter.",
		question,
	)
}

// GetMode returns the operational mode of the service
func (s *OfflineService) GetMode() interfaces.GenerationMode {
	return interfaces.GenerationModeOffline
}

// Close releases resources (none for the offline service)
func (s *OfflineService) Close() error {
	return nil
}
