package models

// Route represents the handling strategy chosen for a query
type Route string

const (
	// RouteClarify asks a follow-up question before any retrieval
	RouteClarify Route = "clarify"
	// RouteRetrieve runs evidence retrieval and grounded synthesis
	RouteRetrieve Route = "retrieve"
	// RouteDirect answers conceptually without transcript evidence
	RouteDirect Route = "direct"
)

// IsValid reports whether the route is one of the three known strategies
func (r Route) IsValid() bool {
	switch r {
	case RouteClarify, RouteRetrieve, RouteDirect:
		return true
	}
	return false
}

// DecisionSource identifies which layer produced a routing decision
type DecisionSource string

const (
	// DecisionSourceHeuristic means a deterministic pattern rule matched
	DecisionSourceHeuristic DecisionSource = "heuristic"
	// DecisionSourceClassifier means the LLM classifier was consulted
	DecisionSourceClassifier DecisionSource = "classifier"
	// DecisionSourceFallback means classification failed and the
	// conservative retrieve default was applied
	DecisionSourceFallback DecisionSource = "fallback"
)

// RouteDecision is the routing outcome for one query. It is produced
// exactly once per pipeline run and never mutated afterward.
type RouteDecision struct {
	Route  Route          `json:"route"`
	Reason string         `json:"reason"`
	Source DecisionSource `json:"source"`

	// Filters are classifier-proposed metadata filters merged under any
	// user-supplied filters (user values win on conflict)
	Filters map[string]string `json:"filters,omitempty"`
}
