package router

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// Router chooses the handling strategy for a query. The heuristic pass
// always wins when a rule fires, which keeps routing deterministic and
// testable; the classifier is consulted only on heuristic ambiguity,
// and any classifier failure resolves to the conservative retrieve
// default. Routing itself never fails a query.
type Router struct {
	classifier interfaces.ClassifierService
	logger     arbor.ILogger
}

// NewRouter creates a router. A nil classifier disables the fallback
// layer entirely: inconclusive queries go straight to retrieve.
func NewRouter(classifier interfaces.ClassifierService, logger arbor.ILogger) *Router {
	return &Router{
		classifier: classifier,
		logger:     logger,
	}
}

// Route produces the routing decision for one query. User-supplied
// filters always survive; classifier-proposed filters fill in the gaps.
func (r *Router) Route(ctx context.Context, query *models.Query) *models.RouteDecision {
	if route, reason, matched := HeuristicRoute(query.Text); matched {
		decision := &models.RouteDecision{
			Route:   route,
			Reason:  reason,
			Source:  models.DecisionSourceHeuristic,
			Filters: query.Filters,
		}
		r.logDecision(decision)
		return decision
	}

	if r.classifier == nil {
		decision := &models.RouteDecision{
			Route:   models.RouteRetrieve,
			Reason:  "Heuristics inconclusive and no classifier configured; defaulting to evidence-grounded retrieval.",
			Source:  models.DecisionSourceFallback,
			Filters: query.Filters,
		}
		r.logDecision(decision)
		return decision
	}

	decision, err := r.classifier.Classify(ctx, query.Text)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("fallback_route", string(models.RouteRetrieve)).
			Msg("Classifier failed; falling back to retrieve")
		decision = &models.RouteDecision{
			Route:  models.RouteRetrieve,
			Reason: "Classifier unavailable; defaulting to evidence-grounded retrieval.",
			Source: models.DecisionSourceFallback,
		}
	}

	decision.Filters = mergeFilters(decision.Filters, query.Filters)
	r.logDecision(decision)
	return decision
}

// mergeFilters overlays user filters on classifier proposals; user
// values win on conflict
func mergeFilters(proposed, user map[string]string) map[string]string {
	merged := make(map[string]string, len(proposed)+len(user))
	for k, v := range proposed {
		if v != "" {
			merged[k] = v
		}
	}
	for k, v := range user {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

func (r *Router) logDecision(decision *models.RouteDecision) {
	r.logger.Info().
		Str("route", string(decision.Route)).
		Str("source", string(decision.Source)).
		Str("reason", decision.Reason).
		Msg("Router decision")
}
