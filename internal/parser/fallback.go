package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/askledger/askledger/internal/domain"
)

// Fallback cascade confidences: bare keyword hits are least specific,
// keyword+vendor more so, keyword+amount most.
const (
	fallbackStrong = 0.8
	fallbackVendor = 0.7
	fallbackWeak   = 0.6
)

var (
	summaryKeywords = []string{"summary", "overview", "stats", "statistics"}
	overdueKeywords = []string{"overdue", "past due", "late"}
	sumKeywords     = []string{"total", "sum", "amount"}
	listKeywords    = []string{"show", "list", "display"}

	valuePatterns = []struct {
		re *regexp.Regexp
		op domain.Operator
	}{
		{regexp.MustCompile(`(?:less than|under|below)\s*\$?` + amount), domain.OpLessThan},
		{regexp.MustCompile(`(?:more than|over|above|greater than)\s*\$?` + amount), domain.OpGreaterThan},
		{regexp.MustCompile(`(?:equal to|equals?|exactly)\s*\$?` + amount), domain.OpEqualTo},
	}
)

// Fallback is the enhanced keyword cascade used when the classifier is
// unavailable or failed. Priority order is fixed; the first hit wins.
func Fallback(question string, knownVendors []string) domain.Intent {
	q := strings.ToLower(strings.TrimSpace(question))

	if containsAny(q, summaryKeywords) {
		intent, _ := domain.NewFiltered(domain.ActionGetSummary, nil, fallbackStrong)
		return intent
	}

	if containsAny(q, overdueKeywords) {
		intent, _ := domain.NewFiltered(domain.ActionFindOverdue, nil, fallbackStrong)
		return intent
	}

	if containsAny(q, countKeywords) {
		if f, ok := amountFilter(q); ok {
			intent, _ := domain.NewFiltered(domain.ActionCountInvoices, []domain.Filter{f}, fallbackStrong)
			return intent
		}
		return vendorScoped(domain.ActionCountInvoices, q, knownVendors)
	}

	if containsAny(q, sumKeywords) {
		return vendorScoped(domain.ActionSumTotal, q, knownVendors)
	}

	if containsAny(q, listKeywords) {
		return vendorScoped(domain.ActionListInvoices, q, knownVendors)
	}

	return domain.UnknownIntent()
}

// vendorScoped emits the action with a vendor filter when a known vendor
// appears in the question, bare otherwise.
func vendorScoped(action domain.Action, q string, knownVendors []string) domain.Intent {
	if vendor, ok := detectKnownVendor(q, knownVendors); ok {
		intent, _ := domain.NewFiltered(action, []domain.Filter{vendorFilter(vendor)}, fallbackVendor)
		return intent
	}
	intent, _ := domain.NewFiltered(action, nil, fallbackWeak)
	return intent
}

// amountFilter matches a dollar-amount comparison in the question.
func amountFilter(q string) (domain.Filter, bool) {
	for _, vp := range valuePatterns {
		m := vp.re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return domain.NewNumberFilter("total", vp.op, value), true
	}
	return domain.Filter{}, false
}
