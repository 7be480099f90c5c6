package router

import (
	"regexp"
	"strings"

	"github.com/ternarybob/citare/internal/models"
)

// minSpecificLength is the query length below which a query is treated
// as too short to retrieve against
const minSpecificLength = 12

// ambiguousHints are vague referents that signal the user is pointing at
// unstated context
var ambiguousHints = []string{"this", "that", "it", "they", "those", "these", "more about"}

// directHints are definitional prefixes for conceptual questions
var directHints = []string{"what is", "explain", "how does", "difference between", "define"}

// retrieveHints anchor a query to transcript evidence: named companies,
// quarters, and explicit evidence asks
var retrieveHints = []string{
	"guidance",
	"quarter",
	"q1",
	"q2",
	"q3",
	"q4",
	"earnings call",
	"transcript",
	"summarize",
	"what were",
	"tesla",
	"apple",
	"microsoft",
	"meta",
	"amazon",
	"nvidia",
}

// HeuristicRoute runs the deterministic first-pass routing rules.
// Returns matched=false when no rule fires, in which case the caller
// consults the classifier. Rule order matters:
//  1. vague referent with no evidence anchor -> clarify
//  2. evidence anchor present -> retrieve
//  3. definitional phrasing with no anchor -> direct
//  4. very short query -> clarify
func HeuristicRoute(query string) (route models.Route, reason string, matched bool) {
	q := strings.ToLower(strings.TrimSpace(query))

	anchored := hasRetrieveHint(q)

	if hasAmbiguousHint(q) && !anchored {
		return models.RouteClarify, "Query is referential with no named entity; clarification improves precision.", true
	}

	if anchored {
		return models.RouteRetrieve, "Query names an entity, metric, or quarter; evidence-grounded retrieval applies.", true
	}

	if hasDirectPrefix(q) {
		return models.RouteDirect, "Query asks for a general explanation, not transcript evidence.", true
	}

	if len(q) < minSpecificLength {
		return models.RouteClarify, "Query is too short to retrieve against; clarification improves precision.", true
	}

	return "", "", false
}

// hasAmbiguousHint checks for vague referents; single-word hints match
// on word boundaries so "fit" does not match "it"
func hasAmbiguousHint(q string) bool {
	for _, hint := range ambiguousHints {
		if strings.Contains(hint, " ") {
			if strings.Contains(q, hint) {
				return true
			}
			continue
		}
		if ambiguousWordRegexes[hint].MatchString(q) {
			return true
		}
	}
	return false
}

// ambiguousWordRegexes holds word-boundary matchers for the single-word
// hints, built once so concurrent queries share them read-only
var ambiguousWordRegexes = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, hint := range ambiguousHints {
		if !strings.Contains(hint, " ") {
			out[hint] = regexp.MustCompile(`\b` + regexp.QuoteMeta(hint) + `\b`)
		}
	}
	return out
}()

func hasDirectPrefix(q string) bool {
	for _, prefix := range directHints {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

func hasRetrieveHint(q string) bool {
	for _, hint := range retrieveHints {
		if strings.Contains(q, hint) {
			return true
		}
	}
	return false
}
