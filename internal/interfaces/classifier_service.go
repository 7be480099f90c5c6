package interfaces

import (
	"context"

	"github.com/ternarybob/citare/internal/models"
)

// ClassifierService defines the interface for the routing classifier
// consulted when heuristics are inconclusive. Implementations return a
// decision with one of the three valid routes; any failure or invalid
// label is reported as an error and the caller applies the conservative
// retrieve default.
type ClassifierService interface {
	// Classify assigns a route to the query text
	Classify(ctx context.Context, query string) (*models.RouteDecision, error)
}
