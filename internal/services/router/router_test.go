package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/models"
)

// fakeClassifier returns a fixed decision or error and records whether
// it was consulted
type fakeClassifier struct {
	decision *models.RouteDecision
	err      error
	called   bool
}

func (f *fakeClassifier) Classify(ctx context.Context, query string) (*models.RouteDecision, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

func TestRouter_HeuristicWins(t *testing.T) {
	classifier := &fakeClassifier{
		decision: &models.RouteDecision{Route: models.RouteDirect, Source: models.DecisionSourceClassifier},
	}
	router := NewRouter(classifier, arbor.NewLogger())

	decision := router.Route(context.Background(), models.NewQuery("Summarize guidance changes for Tesla in Q2", nil))

	assert.Equal(t, models.RouteRetrieve, decision.Route)
	assert.Equal(t, models.DecisionSourceHeuristic, decision.Source)
	assert.False(t, classifier.called, "classifier must not run when a heuristic rule fires")
}

func TestRouter_ClassifierOnInconclusive(t *testing.T) {
	classifier := &fakeClassifier{
		decision: &models.RouteDecision{
			Route:   models.RouteRetrieve,
			Reason:  "Sector comparison needs transcript evidence.",
			Source:  models.DecisionSourceClassifier,
			Filters: map[string]string{"section": "qa"},
		},
	}
	router := NewRouter(classifier, arbor.NewLogger())

	query := models.NewQuery("Compare supplier concentration across the industrials sector", map[string]string{"company": "tesla"})
	decision := router.Route(context.Background(), query)

	require.True(t, classifier.called)
	assert.Equal(t, models.RouteRetrieve, decision.Route)
	assert.Equal(t, models.DecisionSourceClassifier, decision.Source)
	// User filters merge with classifier proposals
	assert.Equal(t, "tesla", decision.Filters["company"])
	assert.Equal(t, "qa", decision.Filters["section"])
}

func TestRouter_ClassifierFailureFallsBackToRetrieve(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("rate limited")}
	router := NewRouter(classifier, arbor.NewLogger())

	decision := router.Route(context.Background(), models.NewQuery("Compare supplier concentration across the industrials sector", nil))

	assert.Equal(t, models.RouteRetrieve, decision.Route)
	assert.Equal(t, models.DecisionSourceFallback, decision.Source)
}

func TestRouter_NilClassifierDefaultsToRetrieve(t *testing.T) {
	router := NewRouter(nil, arbor.NewLogger())

	decision := router.Route(context.Background(), models.NewQuery("Compare supplier concentration across the industrials sector", nil))

	assert.Equal(t, models.RouteRetrieve, decision.Route)
	assert.Equal(t, models.DecisionSourceFallback, decision.Source)
}

func TestMergeFilters_UserWins(t *testing.T) {
	merged := mergeFilters(
		map[string]string{"company": "apple", "section": "guidance"},
		map[string]string{"company": "tesla"},
	)

	assert.Equal(t, "tesla", merged["company"])
	assert.Equal(t, "guidance", merged["section"])
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain json", input: `{"route":"retrieve"}`, want: `{"route":"retrieve"}`},
		{name: "fenced json", input: "```json\n{\"route\":\"retrieve\"}\n```", want: `{"route":"retrieve"}`},
		{name: "fence without language", input: "```\n{\"route\":\"direct\"}\n```", want: `{"route":"direct"}`},
		{name: "surrounding whitespace", input: "  {\"route\":\"clarify\"}  ", want: `{"route":"clarify"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}
