package parser

import (
	"testing"

	"github.com/askledger/askledger/internal/domain"
)

var knownVendors = []string{"Microsoft", "Amazon Web Services", "Globex"}

func TestFallback_SummaryBeatsEverything(t *testing.T) {
	// "summary" sits first in the cascade even when count words appear.
	intent := Fallback("how many invoices, give me a summary", knownVendors)
	if intent.Action() != domain.ActionGetSummary {
		t.Fatalf("action = %s, want get_summary", intent.Action())
	}
	if intent.Confidence() != 0.8 {
		t.Errorf("confidence = %v, want 0.8", intent.Confidence())
	}
}

func TestFallback_Overdue(t *testing.T) {
	for _, q := range []string{"anything past due?", "which ones are late", "overdue stuff"} {
		intent := Fallback(q, knownVendors)
		if intent.Action() != domain.ActionFindOverdue {
			t.Errorf("Fallback(%q) action = %s, want find_overdue", q, intent.Action())
		}
	}
}

func TestFallback_CountWithAmountFilter(t *testing.T) {
	intent := Fallback("how many invoices over $2,000?", knownVendors)
	if intent.Action() != domain.ActionCountInvoices {
		t.Fatalf("action = %s, want count_invoices", intent.Action())
	}
	if intent.Confidence() != 0.8 {
		t.Errorf("confidence = %v, want 0.8", intent.Confidence())
	}
	filters := intent.Filters()
	if len(filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(filters))
	}
	f := filters[0]
	if f.Field != "total" || f.Operator != domain.OpGreaterThan || f.Number != 2000 {
		t.Errorf("filter = %+v, want total greater_than 2000", f)
	}
}

func TestFallback_CountWithVendorFilter(t *testing.T) {
	intent := Fallback("how many invoices did microsoft send", knownVendors)
	if intent.Action() != domain.ActionCountInvoices {
		t.Fatalf("action = %s, want count_invoices", intent.Action())
	}
	if intent.Confidence() != 0.7 {
		t.Errorf("confidence = %v, want 0.7", intent.Confidence())
	}
	filters := intent.Filters()
	if len(filters) != 1 || filters[0].Field != "vendor" || filters[0].Text != "Microsoft" {
		t.Errorf("filters = %+v, want vendor equals Microsoft", filters)
	}
}

func TestFallback_BareCount(t *testing.T) {
	intent := Fallback("how many invoices do we have", nil)
	if intent.Action() != domain.ActionCountInvoices {
		t.Fatalf("action = %s, want count_invoices", intent.Action())
	}
	if intent.Confidence() != 0.6 {
		t.Errorf("confidence = %v, want 0.6", intent.Confidence())
	}
	if len(intent.Filters()) != 0 {
		t.Errorf("bare count should carry no filters, got %+v", intent.Filters())
	}
}

func TestFallback_SumAndList(t *testing.T) {
	intent := Fallback("total spend with globex", knownVendors)
	if intent.Action() != domain.ActionSumTotal || intent.Confidence() != 0.7 {
		t.Fatalf("got (%s, %v), want (sum_total, 0.7)", intent.Action(), intent.Confidence())
	}

	intent = Fallback("show everything please", knownVendors)
	if intent.Action() != domain.ActionListInvoices || intent.Confidence() != 0.6 {
		t.Fatalf("got (%s, %v), want (list_invoices, 0.6)", intent.Action(), intent.Confidence())
	}
}

func TestFallback_Unknown(t *testing.T) {
	intent := Fallback("asdkjhasd random gibberish", knownVendors)
	if intent.Action() != domain.ActionUnknown || intent.Confidence() != 0 {
		t.Fatalf("got (%s, %v), want (unknown, 0)", intent.Action(), intent.Confidence())
	}
}
