package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/metrics"
)

// Answer is the service's response to one question.
type Answer struct {
	Question      string        `json:"question"`
	Text          string        `json:"answer"`
	Action        domain.Action `json:"action"`
	Parser        string        `json:"parser"`
	Confidence    float64       `json:"confidence"`
	Clarification bool          `json:"clarification,omitempty"`
}

// Parser labels for metrics and response metadata.
const (
	parserPattern  = "pattern"
	parserAssisted = "assisted"
)

// Service resolves questions in two stages. The deterministic pattern
// parser runs first; when its confidence falls below the execution
// threshold the assisted parser gets a chance, and whichever intent is
// more confident wins.
type Service struct {
	patterns PatternParser
	assisted AssistedParser
	exec     Executor
	vendors  VendorLister
	logger   *zap.Logger
}

// New creates an ask service.
func New(patterns PatternParser, assisted AssistedParser, exec Executor, vendors VendorLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		patterns: patterns,
		assisted: assisted,
		exec:     exec,
		vendors:  vendors,
		logger:   logger,
	}
}

// Ask answers one natural-language question.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("question must not be empty: %w", domain.ErrInvalidArgument)
	}

	start := time.Now()

	intent := s.patterns.Parse(question)
	parserUsed := parserPattern

	if intent.Confidence() < domain.ConfidenceThreshold {
		if alt := s.assisted.Parse(ctx, question, s.vendors.KnownVendors()); alt.Confidence() > intent.Confidence() {
			intent = alt
			parserUsed = parserAssisted
		}
	}

	result := s.exec.Execute(question, intent)

	status := "ok"
	if result.Clarification {
		status = "clarification"
	}
	metrics.QuestionsTotal.WithLabelValues(parserUsed, string(result.Action), status).Inc()
	metrics.QuestionDuration.WithLabelValues(parserUsed).Observe(time.Since(start).Seconds())

	s.logger.Info("question answered",
		zap.String("parser", parserUsed),
		zap.String("action", string(result.Action)),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("clarification", result.Clarification),
		zap.Duration("duration", time.Since(start)),
	)

	return Answer{
		Question:      question,
		Text:          result.Answer,
		Action:        result.Action,
		Parser:        parserUsed,
		Confidence:    result.Confidence,
		Clarification: result.Clarification,
	}, nil
}
