package executor

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/askledger/askledger/internal/domain"
)

// DisplayCap bounds how many rows a list-type answer renders before
// collapsing the rest into a "+N more" suffix.
const DisplayCap = 10

var titler = cases.Title(language.English)

// Result is a fully formatted answer. It is flat and serializable so the
// answer cache can store it verbatim.
type Result struct {
	Answer        string        `json:"answer"`
	Action        domain.Action `json:"action"`
	Confidence    float64       `json:"confidence"`
	Clarification bool          `json:"clarification,omitempty"`
}

// Executor dispatches resolved intents against the store and renders
// the outcome as text.
type Executor struct {
	store  Store
	logger *zap.Logger
}

// New creates an executor over store.
func New(store Store, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{store: store, logger: logger}
}

// Execute answers question according to intent. Intents below the
// confidence threshold get a clarification answer; store failures are
// folded into the answer text rather than surfaced as errors, since a
// malformed parameter is the asker's problem to rephrase.
func (e *Executor) Execute(question string, intent domain.Intent) Result {
	if !intent.Actionable() {
		return e.clarify(question, intent)
	}

	answer, err := e.dispatch(intent)
	if err != nil {
		e.logger.Warn("query execution failed",
			zap.String("action", string(intent.Action())), zap.Error(err))
		return Result{
			Answer:     fmt.Sprintf("I understood your question but couldn't execute it: %v", err),
			Action:     intent.Action(),
			Confidence: intent.Confidence(),
		}
	}

	return Result{Answer: answer, Action: intent.Action(), Confidence: intent.Confidence()}
}

func (e *Executor) dispatch(intent domain.Intent) (string, error) {
	switch intent.Action() {
	case domain.ActionCountDue:
		count, err := e.store.CountDueInDays(intent.Days())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d invoices are due in the next %d days.", count, intent.Days()), nil

	case domain.ActionCountByValue:
		count, err := e.store.CountByValue(intent.Threshold(), intent.Comparison())
		if err != nil {
			return "", err
		}
		direction := "less"
		if intent.Comparison() == domain.GreaterThan {
			direction = "greater"
		}
		return fmt.Sprintf("Found %d invoices with total %s than $%.2f.", count, direction, intent.Threshold()), nil

	case domain.ActionTotalByVendor:
		total, err := e.store.TotalByVendor(intent.Vendor())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("The total value of invoices from %s is %.2f.", titler.String(intent.Vendor()), total), nil

	case domain.ActionTotalByDateRange:
		start, end := intent.DateRange()
		total, err := e.store.TotalByDateRange(start, end)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("The total value of invoices from %s to %s is %.2f.", start, end, total), nil

	case domain.ActionInvoicesByVendor:
		views, err := e.store.InvoicesByVendor(intent.Vendor())
		if err != nil {
			return "", err
		}
		if len(views) == 0 {
			return fmt.Sprintf("No invoices found from %s.", titler.String(intent.Vendor())), nil
		}
		header := fmt.Sprintf("Found %d invoices from %s:", len(views), titler.String(intent.Vendor()))
		return renderList(header, views), nil

	case domain.ActionOverdue, domain.ActionFindOverdue:
		views := e.store.OverdueInvoices()
		if len(views) == 0 {
			return "No invoices are overdue.", nil
		}
		header := fmt.Sprintf("Found %d overdue invoices:", len(views))
		return renderList(header, views), nil

	case domain.ActionSummary, domain.ActionGetSummary:
		return renderSummary(e.store.SummaryStats()), nil

	case domain.ActionCountInvoices:
		count := e.store.CountWhere(intent.Filters())
		return fmt.Sprintf("Found %d invoices%s.", count, describeFilters(intent.Filters())), nil

	case domain.ActionSumTotal:
		total := e.store.SumWhere(intent.Filters())
		return fmt.Sprintf("The total amount is $%.2f%s.", total, describeFilters(intent.Filters())), nil

	case domain.ActionListInvoices:
		views := e.store.ListWhere(intent.Filters())
		if len(views) == 0 {
			return fmt.Sprintf("No invoices found%s.", describeFilters(intent.Filters())), nil
		}
		header := fmt.Sprintf("Found %d invoices%s:", len(views), describeFilters(intent.Filters()))
		return renderList(header, views), nil

	default:
		return "", fmt.Errorf("action %q: %w", intent.Action(), domain.ErrUnknownAction)
	}
}

// clarify renders the low-confidence non-answer with rephrasing examples.
func (e *Executor) clarify(question string, intent domain.Intent) Result {
	answer := fmt.Sprintf(`I'm not quite sure what you're asking. Here's what I understood:

Your question: %q
My interpretation: %s
Confidence: %.1f%%

Could you rephrase your question? For example:
- "How many invoices from Microsoft?"
- "What's the total amount from Amazon?"
- "Show me overdue invoices"
- "Summary of all invoices"`,
		question, intent.Action(), intent.Confidence()*100)

	return Result{
		Answer:        answer,
		Action:        intent.Action(),
		Confidence:    intent.Confidence(),
		Clarification: true,
	}
}

// renderList prints at most DisplayCap rows under header, then a count
// of what was held back.
func renderList(header string, views []domain.InvoiceView) string {
	var b strings.Builder
	b.WriteString(header)

	shown := views
	if len(shown) > DisplayCap {
		shown = shown[:DisplayCap]
	}
	for _, v := range shown {
		b.WriteString(fmt.Sprintf("\n- %s: $%.2f (due %s)", v.Vendor, v.Total, v.DueDate))
	}
	if rest := len(views) - len(shown); rest > 0 {
		b.WriteString(fmt.Sprintf("\n... +%d more", rest))
	}
	return b.String()
}

func renderSummary(stats domain.SummaryStats) string {
	return fmt.Sprintf(`Invoice summary:
- Total invoices: %d
- Total value: $%.2f
- Unique vendors: %d
- Overdue: %d
- Average invoice value: $%.2f`,
		stats.TotalInvoices, stats.TotalValue, stats.UniqueVendors,
		stats.OverdueCount, stats.AverageInvoiceValue)
}

// describeFilters builds the human-readable filter suffix. Only the
// clauses the store can actually apply are described.
func describeFilters(filters []domain.Filter) string {
	var b strings.Builder
	for _, f := range filters {
		switch {
		case f.Field == "vendor" && f.Operator == domain.OpEquals:
			b.WriteString(" from " + f.Text)
		case f.Field == "total" && f.Operator == domain.OpLessThan:
			b.WriteString(fmt.Sprintf(" with amount less than $%v", f.Number))
		case f.Field == "total" && f.Operator == domain.OpGreaterThan:
			b.WriteString(fmt.Sprintf(" with amount greater than $%v", f.Number))
		}
	}
	return b.String()
}
