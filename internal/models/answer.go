package models

import "unicode/utf8"

// snippetLimit bounds the citation snippet length in bytes
const snippetLimit = 280

// Citation ties one cited label back to the retrieved chunk it resolves to
type Citation struct {
	CitationID string  `json:"citation_id"`
	Company    string  `json:"company"`
	Source     string  `json:"source"`
	Section    string  `json:"section"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// NewCitation builds a citation from a retrieved chunk, trimming the
// snippet to a bounded preview of the evidence text
func NewCitation(chunk *RetrievedChunk) Citation {
	snippet := chunk.Text
	if len(snippet) > snippetLimit {
		// Back up to a rune boundary so the cut never splits a
		// multibyte character
		cut := snippetLimit
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}
	return Citation{
		CitationID: chunk.CitationID,
		Company:    chunk.MetadataValue("company", "unknown"),
		Source:     chunk.MetadataValue("source", "unknown"),
		Section:    chunk.MetadataValue("section", "transcript"),
		Snippet:    snippet,
		Score:      chunk.Score,
	}
}

// Answer is the final response object for one query. CitationIDs only
// ever contains labels present in the evidence context that produced the
// answer; the synthesizer enforces this before an Answer surfaces.
type Answer struct {
	Text        string     `json:"answer"`
	CitationIDs []string   `json:"citation_ids"`
	Citations   []Citation `json:"citations"`
}
