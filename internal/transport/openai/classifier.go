package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/assist"
	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/metrics"
)

const (
	// promptVendorCap bounds how many known vendors the prompt enumerates.
	promptVendorCap = 10

	classifyTemperature = 0.1
	classifyMaxTokens   = 300
)

// Classifier turns questions into structured classifications using an
// OpenAI-compatible chat completion API.
type Classifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retries int
	logger  *zap.Logger
}

// Config holds the classifier provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// NewClassifier creates an OpenAI-compatible classifier.
func NewClassifier(cfg *Config) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retries: cfg.MaxRetries,
		logger:  logger,
	}
}

// Classify implements assist.Classifier. Each attempt gets its own
// timeout; transient API errors are retried up to MaxRetries times.
func (c *Classifier) Classify(ctx context.Context, question string, knownVendors []string) (assist.Classification, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(knownVendors)},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Parse this query: %q", question)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		classification, err := c.classifyOnce(ctx, req)
		if err == nil {
			return classification, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.logger.Debug("classification attempt failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return assist.Classification{}, lastErr
}

func (c *Classifier) classifyOnce(ctx context.Context, req openai.ChatCompletionRequest) (assist.Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ClassifyRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return assist.Classification{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ClassifyRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return assist.Classification{}, fmt.Errorf("empty classification response: %w", domain.ErrClassifierFailure)
	}

	var classification assist.Classification
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &classification); err != nil {
		metrics.ClassifyRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return assist.Classification{}, fmt.Errorf("decode classification: %v: %w", err, domain.ErrClassifierFailure)
	}

	metrics.ClassifyRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.ClassifyRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return classification, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Classifier) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// systemPrompt enumerates the action and operator vocabulary, plus up to
// promptVendorCap known vendors for disambiguation.
func systemPrompt(knownVendors []string) string {
	vendorContext := ""
	if len(knownVendors) > 0 {
		shown := knownVendors
		if len(shown) > promptVendorCap {
			shown = shown[:promptVendorCap]
		}
		vendorContext = "\nKnown vendors in the dataset: " + strings.Join(shown, ", ")
	}

	return `You are an expert at parsing invoice-related queries. Parse the user's question and return structured JSON.

Available actions:
- count_invoices: Count invoices matching criteria
- sum_total: Calculate total amount
- list_invoices: Show specific invoices
- get_summary: Get overview statistics
- find_overdue: Find past-due invoices

Filter fields: vendor, total, invoice_date, due_date, invoice_number.
Filter operators: equals, greater_than, less_than, between, contains.
` + vendorContext + `

Return JSON shaped like:
{
  "action": "count_invoices",
  "filters": [
    {"field": "vendor", "operator": "equals", "value": "Microsoft"},
    {"field": "total", "operator": "greater_than", "value": 500}
  ],
  "confidence": 0.8
}

Be smart about disambiguation and keep confidence honest.`
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrClassifierFailure so callers can
// recognize provider trouble without inspecting strings.
func parseAPIError(err error) error {
	wrap := domain.ErrClassifierFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("classifier API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("classifier API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("classifier API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("classification request failed: %w", wrap)
}

// extractDetail pulls the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
