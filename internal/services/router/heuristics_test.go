package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/citare/internal/models"
)

func TestHeuristicRoute(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantRoute   models.Route
		wantMatched bool
	}{
		{
			name:        "vague referent routes to clarify",
			query:       "Can you explain this?",
			wantRoute:   models.RouteClarify,
			wantMatched: true,
		},
		{
			name:        "more about with no anchor routes to clarify",
			query:       "Tell me more about margins",
			wantRoute:   models.RouteClarify,
			wantMatched: true,
		},
		{
			name:        "named company and quarter routes to retrieve",
			query:       "Summarize guidance changes for Tesla in Q2",
			wantRoute:   models.RouteRetrieve,
			wantMatched: true,
		},
		{
			name:        "earnings call ask routes to retrieve",
			query:       "What were the main risks discussed on the earnings call?",
			wantRoute:   models.RouteRetrieve,
			wantMatched: true,
		},
		{
			name:        "anchor beats vague referent",
			query:       "What did they say about Tesla guidance?",
			wantRoute:   models.RouteRetrieve,
			wantMatched: true,
		},
		{
			name:        "definitional question routes to direct",
			query:       "What is operating margin?",
			wantRoute:   models.RouteDirect,
			wantMatched: true,
		},
		{
			name:        "explain prefix without anchor routes to direct",
			query:       "explain free cash flow conversion",
			wantRoute:   models.RouteDirect,
			wantMatched: true,
		},
		{
			name:        "very short query routes to clarify",
			query:       "revenue?",
			wantRoute:   models.RouteClarify,
			wantMatched: true,
		},
		{
			name:        "no rule fires on an unanchored specific query",
			query:       "Compare supplier concentration across the industrials sector",
			wantMatched: false,
		},
		{
			name:        "empty query routes to clarify",
			query:       "",
			wantRoute:   models.RouteClarify,
			wantMatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, reason, matched := HeuristicRoute(tt.query)
			assert.Equal(t, tt.wantMatched, matched)
			if tt.wantMatched {
				assert.Equal(t, tt.wantRoute, route)
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestHasAmbiguousHint_WordBoundaries(t *testing.T) {
	// Hint words must match whole words only
	assert.True(t, hasAmbiguousHint("is it accurate"))
	assert.False(t, hasAmbiguousHint("profitability outlook"))
	assert.False(t, hasAmbiguousHint("fitness segment details"))
}
