package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// classifierSystemPrompt constrains the model to the three route labels
const classifierSystemPrompt = `Classify a user query for an earnings-call assistant.
Return strict JSON with keys route, reason, filters.
route must be one of retrieve, clarify, direct.
filters is an object of optional metadata constraints with keys company and section; omit keys you cannot infer.`

// LLMClassifier classifies routes through the generation capability.
// It is only consulted when the heuristic pass is inconclusive; any
// failure here is reported as an error and the router applies the
// conservative retrieve default.
type LLMClassifier struct {
	gen    interfaces.GenerationService
	logger arbor.ILogger
}

// NewLLMClassifier creates a generation-backed route classifier
func NewLLMClassifier(gen interfaces.GenerationService, logger arbor.ILogger) *LLMClassifier {
	return &LLMClassifier{
		gen:    gen,
		logger: logger,
	}
}

// classifierPayload is the strict JSON shape the classifier must return
type classifierPayload struct {
	Route   string            `json:"route"`
	Reason  string            `json:"reason"`
	Filters map[string]string `json:"filters"`
}

// Classify assigns a route to the query text
func (c *LLMClassifier) Classify(ctx context.Context, query string) (*models.RouteDecision, error) {
	raw, err := c.gen.Generate(ctx, &interfaces.GenerationRequest{
		System: classifierSystemPrompt,
		Prompt: fmt.Sprintf("Query: %s", query),
	})
	if err != nil {
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("classifier returned non-JSON output: %w", err)
	}

	route := models.Route(strings.ToLower(payload.Route))
	if !route.IsValid() {
		return nil, fmt.Errorf("classifier returned invalid route %q", payload.Route)
	}

	reason := payload.Reason
	if reason == "" {
		reason = "No reason provided."
	}

	c.logger.Debug().
		Str("route", string(route)).
		Str("reason", reason).
		Msg("Classifier decision")

	return &models.RouteDecision{
		Route:   route,
		Reason:  reason,
		Source:  models.DecisionSourceClassifier,
		Filters: payload.Filters,
	}, nil
}

// StripCodeFence removes a markdown code fence wrapper that some models
// insist on adding around JSON output
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if strings.HasPrefix(strings.ToLower(trimmed), "json") {
		trimmed = trimmed[4:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
