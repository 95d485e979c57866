// Package parser turns natural-language invoice questions into typed
// intents. The pattern parser recognizes a fixed catalogue of phrasings;
// Fallback is the keyword cascade shared with the assisted path.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/askledger/askledger/internal/domain"
)

// patternConfidence is the fixed confidence of any regex match.
const patternConfidence = 0.9

// fuzzyConfidence is the confidence of a keyword+vendor heuristic match.
const fuzzyConfidence = 0.7

const amount = `(\d+(?:,\d{3})*(?:\.\d{2})?)`

// rule binds an action to its ordered pattern list. Rule declaration
// order decides ties: the first pattern to match across the whole
// catalogue wins, regardless of specificity.
type rule struct {
	action   domain.Action
	patterns []*regexp.Regexp
}

var catalogue = []rule{
	{domain.ActionCountDue, compile(
		`how many invoices? (?:are )?due (?:in (?:the )?)?next (\d+) days?`,
		`count invoices? due (?:in (?:the )?)?next (\d+) days?`,
		`invoices? due (?:in (?:the )?)?next (\d+) days?`,
		`how many invoices? (?:are )?due in (\d+) days?`,
		`count invoices? due in (\d+) days?`,
		`invoices? due in (\d+) days?`,
	)},
	{domain.ActionCountByValue, compile(
		`how many invoices? (?:have (?:value|total|amount) )?(?:are )?(?:less than|under|below) \$?`+amount,
		`count invoices? (?:with (?:value|total|amount) )?(?:less than|under|below) \$?`+amount,
		`invoices? (?:with (?:value|total|amount) )?(?:less than|under|below) \$?`+amount,
		`how many invoices? (?:have (?:value|total|amount) )?(?:are )?(?:greater than|over|above) \$?`+amount,
		`count invoices? (?:with (?:value|total|amount) )?(?:greater than|over|above) \$?`+amount,
		`invoices? (?:with (?:value|total|amount) )?(?:greater than|over|above) \$?`+amount,
	)},
	// Declared before total_by_vendor: its "total ... from X to Y" shape
	// is a strict subset of the vendor patterns and would otherwise
	// never win the ordered traversal.
	{domain.ActionTotalByDateRange, compile(
		`total (?:value|amount) (?:of invoices? )?(?:from|between) (.+?) to (.+?)(?:\?|$)`,
		`sum invoices? (?:from|between) (.+?) to (.+?)(?:\?|$)`,
	)},
	{domain.ActionTotalByVendor, compile(
		`what.s the total (?:value|amount)?\s*(?:of invoices?)?\s*from (.+?)(?:\?|$)`,
		`what is the total (?:value|amount)?\s*(?:of invoices?)?\s*from (.+?)(?:\?|$)`,
		`total (?:value|amount)?\s*(?:of invoices?)?\s*from (.+?)(?:\?|$)`,
		`sum (?:invoices?)?\s*from (.+?)(?:\?|$)`,
		`how much (?:do we owe|is owed) to (.+?)(?:\?|$)`,
		`(?:what.s|whats) the total from (.+?)(?:\?|$)`,
	)},
	{domain.ActionInvoicesByVendor, compile(
		`show invoices? from (.+?)(?:\?|$)`,
		`list invoices? from (.+?)(?:\?|$)`,
		`invoices? from (.+?)(?:\?|$)`,
		`how many invoices? (?:are )?(?:due )?from (.+?)(?:\?|$)`,
		`count invoices? from (.+?)(?:\?|$)`,
	)},
	{domain.ActionOverdue, compile(
		`overdue invoices?`,
		`invoices? that are overdue`,
		`past due invoices?`,
	)},
	{domain.ActionSummary, compile(
		`summary`,
		`overview`,
		`total invoices?`,
		`how many invoices? (?:do we have|are there)`,
	)},
}

var (
	countKeywords = []string{"how many", "count", "number of"}
	totalKeywords = []string{"total", "sum", "amount", "value"}

	lessKeywords    = []string{"less than", "under", "below"}
	greaterKeywords = []string{"greater than", "over", "above"}
)

// Parser recognizes the fixed question catalogue with a keyword fuzzy
// stage behind it.
type Parser struct{}

// New creates a pattern parser.
func New() *Parser { return &Parser{} }

// Parse resolves a question. A catalogue match yields confidence 0.9
// exactly; the fuzzy stage yields 0.7; anything else is unknown at 0.
func (p *Parser) Parse(question string) domain.Intent {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, r := range catalogue {
		for _, re := range r.patterns {
			m := re.FindStringSubmatch(q)
			if m == nil {
				continue
			}
			return buildIntent(r.action, m, q)
		}
	}

	return fuzzyParse(question, q)
}

// buildIntent extracts positional capture groups per action.
func buildIntent(action domain.Action, m []string, q string) domain.Intent {
	switch action {
	case domain.ActionCountDue:
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return domain.UnknownIntent()
		}
		return domain.NewCountDue(days, patternConfidence)

	case domain.ActionCountByValue:
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return domain.UnknownIntent()
		}
		return domain.NewCountByValue(value, comparisonOf(q), patternConfidence)

	case domain.ActionTotalByVendor:
		return domain.NewTotalByVendor(cleanVendor(m[1]), patternConfidence)

	case domain.ActionTotalByDateRange:
		return domain.NewTotalByDateRange(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), patternConfidence)

	case domain.ActionInvoicesByVendor:
		return domain.NewInvoicesByVendor(cleanVendor(m[1]), patternConfidence)

	case domain.ActionOverdue:
		return domain.NewOverdue(patternConfidence)

	case domain.ActionSummary:
		return domain.NewSummary(patternConfidence)

	default:
		return domain.UnknownIntent()
	}
}

// comparisonOf scans the full question, not just the captured group.
// A matched amount with no comparison keyword defaults to less_than.
func comparisonOf(q string) domain.Comparison {
	if containsAny(q, lessKeywords) {
		return domain.LessThan
	}
	if containsAny(q, greaterKeywords) {
		return domain.GreaterThan
	}
	return domain.LessThan
}

// fuzzyParse is the keyword heuristic stage behind the catalogue.
// question keeps its original casing for vendor-token extraction.
func fuzzyParse(question, q string) domain.Intent {
	if containsAny(q, countKeywords) {
		if vendors := vendorCandidates(question); len(vendors) > 0 {
			return domain.NewInvoicesByVendor(vendors[0], fuzzyConfidence)
		}
	}

	if containsAny(q, totalKeywords) {
		if vendors := vendorCandidates(question); len(vendors) > 0 {
			return domain.NewTotalByVendor(vendors[0], fuzzyConfidence)
		}
	}

	return domain.UnknownIntent()
}

func cleanVendor(captured string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(captured), "?"))
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}
