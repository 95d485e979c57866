package assist

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/domain"
)

type mockClassifier struct {
	classification Classification
	err            error
	gotQuestion    string
	gotVendors     []string
}

func (m *mockClassifier) Classify(_ context.Context, question string, knownVendors []string) (Classification, error) {
	m.gotQuestion = question
	m.gotVendors = knownVendors
	return m.classification, m.err
}

func floatPtr(v float64) *float64 { return &v }

func TestParse_ClassifierSuccess(t *testing.T) {
	mock := &mockClassifier{
		classification: Classification{
			Action: "count_invoices",
			Filters: []FilterClause{
				{Field: "vendor", Operator: "equals", Value: "Microsoft"},
				{Field: "total", Operator: "greater_than", Value: 500.0},
			},
			Confidence: floatPtr(0.85),
		},
	}
	p := New(mock, zap.NewNop())

	intent := p.Parse(context.Background(), "invoices from Microsoft over $500?", []string{"Microsoft"})

	if intent.Action() != domain.ActionCountInvoices {
		t.Fatalf("action = %s, want count_invoices", intent.Action())
	}
	if intent.Confidence() != 0.85 {
		t.Errorf("confidence = %v, want 0.85", intent.Confidence())
	}
	filters := intent.Filters()
	if len(filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(filters))
	}
	if filters[0].Field != "vendor" || filters[0].Text != "Microsoft" || filters[0].IsNumber {
		t.Errorf("filters[0] = %+v, want text vendor equals Microsoft", filters[0])
	}
	if filters[1].Field != "total" || filters[1].Number != 500 || !filters[1].IsNumber {
		t.Errorf("filters[1] = %+v, want numeric total greater_than 500", filters[1])
	}
	if mock.gotQuestion != "invoices from Microsoft over $500?" {
		t.Errorf("classifier saw question %q", mock.gotQuestion)
	}
}

func TestParse_MissingConfidenceDefaults(t *testing.T) {
	mock := &mockClassifier{classification: Classification{Action: "get_summary"}}
	p := New(mock, zap.NewNop())

	intent := p.Parse(context.Background(), "give me the rundown", nil)
	if intent.Confidence() != defaultConfidence {
		t.Errorf("confidence = %v, want %v", intent.Confidence(), defaultConfidence)
	}
}

func TestParse_ClassifierErrorFallsBack(t *testing.T) {
	mock := &mockClassifier{err: errors.New("boom")}
	p := New(mock, zap.NewNop())

	intent := p.Parse(context.Background(), "how many invoices are overdue summary", nil)

	// Keyword cascade takes over: "summary" wins there.
	if intent.Action() != domain.ActionGetSummary {
		t.Fatalf("action = %s, want get_summary from fallback", intent.Action())
	}
	if intent.Confidence() != 0.8 {
		t.Errorf("confidence = %v, want 0.8", intent.Confidence())
	}
}

func TestParse_UnrecognizedActionFallsBack(t *testing.T) {
	mock := &mockClassifier{classification: Classification{
		Action:     "delete_everything",
		Confidence: floatPtr(0.99),
	}}
	p := New(mock, zap.NewNop())

	intent := p.Parse(context.Background(), "how many invoices from Globex", []string{"Globex"})

	if intent.Action() != domain.ActionCountInvoices {
		t.Fatalf("action = %s, want count_invoices from fallback", intent.Action())
	}
	if intent.Confidence() != 0.7 {
		t.Errorf("confidence = %v, want vendor-scoped 0.7", intent.Confidence())
	}
}

func TestParse_NilClassifierUsesFallback(t *testing.T) {
	p := New(nil, zap.NewNop())

	intent := p.Parse(context.Background(), "list all invoices", nil)
	if intent.Action() != domain.ActionListInvoices {
		t.Fatalf("action = %s, want list_invoices", intent.Action())
	}
}

func TestParse_NonActionableClassification(t *testing.T) {
	mock := &mockClassifier{classification: Classification{
		Action:     "sum_total",
		Confidence: floatPtr(0.3),
	}}
	p := New(mock, zap.NewNop())

	intent := p.Parse(context.Background(), "hmm totals maybe", nil)
	if intent.Actionable() {
		t.Fatalf("intent with confidence 0.3 must not be actionable")
	}
	if intent.Action() != domain.ActionSumTotal {
		t.Errorf("action = %s, want sum_total preserved", intent.Action())
	}
}
