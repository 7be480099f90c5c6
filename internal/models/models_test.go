package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery_CopiesFilters(t *testing.T) {
	original := map[string]string{"company": "tesla", "section": ""}
	query := NewQuery("guidance changes", original)

	// Empty values are dropped and later mutation of the source map
	// does not leak into the query
	assert.Equal(t, map[string]string{"company": "tesla"}, query.Filters)
	original["company"] = "apple"
	assert.Equal(t, "tesla", query.Filters["company"])
}

func TestRoute_IsValid(t *testing.T) {
	assert.True(t, RouteClarify.IsValid())
	assert.True(t, RouteRetrieve.IsValid())
	assert.True(t, RouteDirect.IsValid())
	assert.False(t, Route("rerank").IsValid())
	assert.False(t, Route("").IsValid())
}

func TestCitationLabel(t *testing.T) {
	assert.Equal(t, "S1", CitationLabel(1))
	assert.Equal(t, "S12", CitationLabel(12))
}

func TestNewCitation(t *testing.T) {
	chunk := &RetrievedChunk{
		CitationID: "S1",
		Text:       "Delivery guidance was raised for the full year.",
		Score:      0.9,
		Metadata:   map[string]string{"company": "tesla", "source": "tsla-2025-q2"},
	}

	citation := NewCitation(chunk)
	assert.Equal(t, "S1", citation.CitationID)
	assert.Equal(t, "tesla", citation.Company)
	assert.Equal(t, "tsla-2025-q2", citation.Source)
	assert.Equal(t, "transcript", citation.Section)
	assert.Equal(t, chunk.Text, citation.Snippet)
}

func TestNewCitation_TrimsLongSnippet(t *testing.T) {
	chunk := &RetrievedChunk{
		CitationID: "S1",
		Text:       strings.Repeat("margin ", 100),
	}

	citation := NewCitation(chunk)
	assert.Len(t, citation.Snippet, snippetLimit)
}

func TestNewCitation_TrimsAtRuneBoundary(t *testing.T) {
	// Three-byte runes; the byte limit lands mid-rune and the cut must
	// back up instead of emitting a broken character
	chunk := &RetrievedChunk{
		CitationID: "S1",
		Text:       strings.Repeat("収益", 200),
	}

	citation := NewCitation(chunk)
	assert.True(t, utf8.ValidString(citation.Snippet))
	assert.LessOrEqual(t, len(citation.Snippet), snippetLimit)
	assert.Equal(t, snippetLimit-1, len(citation.Snippet))
}

func TestPipelineState(t *testing.T) {
	state := NewPipelineState(NewQuery("guidance changes", nil))
	require.NotEmpty(t, state.RequestID)
	assert.False(t, state.Failed())

	state.RecordTiming(NodeRouted, 0)
	state.RecordTiming(NodeDone, 0)
	require.Len(t, state.Timings, 2)
	assert.Equal(t, NodeRouted, state.Timings[0].Node)

	state.Error = "vector search unavailable"
	assert.True(t, state.Failed())
}
