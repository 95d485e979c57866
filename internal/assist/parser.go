package assist

import (
	"context"

	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/parser"
)

// defaultConfidence applies when the classifier omits the field.
const defaultConfidence = 0.5

// Parser interprets questions with a remote classifier and degrades to
// the keyword cascade whenever the classifier cannot produce a usable
// answer. A nil classifier is a valid configuration: every question then
// goes straight to the fallback.
type Parser struct {
	classifier Classifier
	logger     *zap.Logger
}

// New creates an assisted parser. classifier may be nil.
func New(classifier Classifier, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{classifier: classifier, logger: logger}
}

// Parse returns the intent for question. knownVendors grounds both the
// classifier prompt and the fallback's vendor detection.
func (p *Parser) Parse(ctx context.Context, question string, knownVendors []string) domain.Intent {
	if p.classifier == nil {
		p.logger.Debug("classifier not configured, using keyword fallback")
		return parser.Fallback(question, knownVendors)
	}

	classification, err := p.classifier.Classify(ctx, question, knownVendors)
	if err != nil {
		p.logger.Warn("classification failed, using keyword fallback", zap.Error(err))
		return parser.Fallback(question, knownVendors)
	}

	intent, ok := p.toIntent(classification)
	if !ok {
		p.logger.Warn("classifier returned unusable action, using keyword fallback",
			zap.String("action", classification.Action))
		return parser.Fallback(question, knownVendors)
	}
	return intent
}

// toIntent converts a classification into a domain intent. It fails only
// on an action outside the assisted set; filters the executor cannot
// apply are carried as-is and ignored downstream.
func (p *Parser) toIntent(c Classification) (domain.Intent, bool) {
	confidence := defaultConfidence
	if c.Confidence != nil {
		confidence = *c.Confidence
	}

	filters := make([]domain.Filter, 0, len(c.Filters))
	for _, clause := range c.Filters {
		filters = append(filters, toFilter(clause))
	}

	return domain.NewFiltered(domain.Action(c.Action), filters, confidence)
}

func toFilter(clause FilterClause) domain.Filter {
	op := domain.Operator(clause.Operator)
	switch v := clause.Value.(type) {
	case float64:
		return domain.NewNumberFilter(clause.Field, op, v)
	case int:
		return domain.NewNumberFilter(clause.Field, op, float64(v))
	case string:
		return domain.NewTextFilter(clause.Field, op, v)
	default:
		return domain.NewTextFilter(clause.Field, op, "")
	}
}
