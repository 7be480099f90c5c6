// Package evidence renders retrieved chunks into the labeled context
// block the synthesizer grounds its answers in.
package evidence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/citare/internal/models"
)

// entrySeparator joins rendered evidence entries. Entry boundaries are
// the only blank lines in the block; normalizeText enforces that.
const entrySeparator = "\n\n"

// blankLineRegex matches one or more blank (or whitespace-only) lines
// inside chunk text
var blankLineRegex = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)

// normalizeText makes chunk text safe to embed in the rendered block:
// surrounding whitespace is trimmed and interior blank lines collapse
// to single newlines, so the blank-line entry separator and the
// label-at-entry-head parse rule stay unambiguous regardless of how the
// transcript span was paragraphed.
func normalizeText(text string) string {
	return blankLineRegex.ReplaceAllString(strings.TrimSpace(text), "\n")
}

// BuildContext renders labeled evidence in rank order, one entry per
// chunk: the citation label and key metadata on the first line, the
// normalized chunk text beneath it. Pure function; the only failure
// mode is a duplicate label, which indicates a labeling bug upstream
// and is rejected rather than silently rendered.
func BuildContext(chunks []models.RetrievedChunk) (string, error) {
	seen := make(map[string]bool, len(chunks))
	entries := make([]string, 0, len(chunks))

	for i := range chunks {
		chunk := &chunks[i]
		if chunk.CitationID == "" {
			return "", fmt.Errorf("chunk at rank %d has no citation label", i+1)
		}
		if seen[chunk.CitationID] {
			return "", fmt.Errorf("duplicate citation label %s", chunk.CitationID)
		}
		seen[chunk.CitationID] = true

		entries = append(entries, fmt.Sprintf(
			"[%s] company=%s source=%s section=%s\n%s",
			chunk.CitationID,
			chunk.MetadataValue("company", "unknown"),
			chunk.MetadataValue("source", "unknown"),
			chunk.MetadataValue("section", "transcript"),
			normalizeText(chunk.Text),
		))
	}

	return strings.Join(entries, entrySeparator), nil
}

// entryLabelRegex matches the label at the head of a rendered entry
var entryLabelRegex = regexp.MustCompile(`^\[(S\d+)\] `)

// ParseLabels extracts the citation labels from a rendered context
// block, in rendering order. Used for citation validation and by tests
// to confirm rendering round-trips.
func ParseLabels(context string) []string {
	if context == "" {
		return nil
	}

	var labels []string
	for _, entry := range strings.Split(context, entrySeparator) {
		if m := entryLabelRegex.FindStringSubmatch(entry); m != nil {
			labels = append(labels, m[1])
		}
	}
	return labels
}

// ParseEntries maps each citation label in a rendered context block back
// to its chunk text
func ParseEntries(context string) map[string]string {
	entries := make(map[string]string)
	if context == "" {
		return entries
	}

	for _, entry := range strings.Split(context, entrySeparator) {
		m := entryLabelRegex.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		// Text starts after the metadata line
		if idx := strings.Index(entry, "\n"); idx >= 0 {
			entries[m[1]] = entry[idx+1:]
		}
	}
	return entries
}
