package assist

import "context"

// Classifier turns a natural-language question into a structured
// classification. Implementations are expected to be remote and fallible;
// the parser treats any error as a signal to use the keyword fallback.
type Classifier interface {
	Classify(ctx context.Context, question string, knownVendors []string) (Classification, error)
}

// Classification is the wire shape returned by a classifier.
type Classification struct {
	Action     string         `json:"action"`
	Filters    []FilterClause `json:"filters"`
	Confidence *float64       `json:"confidence"`
}

// FilterClause is one conjunctive filter condition. Value is either a
// string or a JSON number depending on the field.
type FilterClause struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}
