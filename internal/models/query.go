package models

// Query represents a single natural-language question submitted to the
// pipeline. A Query is immutable once constructed; nodes read it but
// never modify it.
type Query struct {
	// Text is the free-text question
	Text string `json:"text"`

	// Filters are optional metadata constraints applied during retrieval
	// (e.g., {"company": "tesla", "section": "guidance"})
	Filters map[string]string `json:"filters,omitempty"`
}

// NewQuery creates a query with its own copy of the supplied filters,
// dropping empty values
func NewQuery(text string, filters map[string]string) *Query {
	copied := make(map[string]string, len(filters))
	for k, v := range filters {
		if v != "" {
			copied[k] = v
		}
	}
	return &Query{
		Text:    text,
		Filters: copied,
	}
}
