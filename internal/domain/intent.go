package domain

// ConfidenceThreshold gates execution: intents below it get a
// clarification response instead of a store query.
const ConfidenceThreshold = 0.5

// Action is the closed set of query intents.
type Action string

// Pattern-parser actions.
const (
	ActionCountDue         Action = "count_due"
	ActionCountByValue     Action = "count_by_value"
	ActionTotalByVendor    Action = "total_by_vendor"
	ActionTotalByDateRange Action = "total_by_date"
	ActionInvoicesByVendor Action = "invoices_by_vendor"
	ActionOverdue          Action = "overdue"
	ActionSummary          Action = "summary"
	ActionUnknown          Action = "unknown"
)

// Assisted-parser actions. These execute against a filter sequence
// rather than positional parameters.
const (
	ActionCountInvoices Action = "count_invoices"
	ActionSumTotal      Action = "sum_total"
	ActionListInvoices  Action = "list_invoices"
	ActionGetSummary    Action = "get_summary"
	ActionFindOverdue   Action = "find_overdue"
)

// Comparison selects the inequality direction for value thresholds.
// Both comparisons are strict.
type Comparison string

const (
	LessThan    Comparison = "less_than"
	GreaterThan Comparison = "greater_than"
)

// IsValid reports whether the comparison is one of the two enumerated values.
func (c Comparison) IsValid() bool {
	return c == LessThan || c == GreaterThan
}

// Operator is a filter clause operator. Unsupported (field, operator)
// combinations pass through the executor without narrowing.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpEqualTo     Operator = "equal_to"
	OpBetween     Operator = "between"
	OpContains    Operator = "contains"
)

// Filter is a single clause of a conjunctive filter sequence.
// Exactly one of Text/Number is meaningful depending on the field.
type Filter struct {
	Field    string
	Operator Operator
	Text     string
	Number   float64
	IsNumber bool
}

// NewTextFilter creates a string-valued filter clause.
func NewTextFilter(field string, op Operator, value string) Filter {
	return Filter{Field: field, Operator: op, Text: value}
}

// NewNumberFilter creates a numeric filter clause.
func NewNumberFilter(field string, op Operator, value float64) Filter {
	return Filter{Field: field, Operator: op, Number: value, IsNumber: true}
}

// Intent is the structured interpretation of a question. It is a tagged
// variant: the per-action constructors are the only way to build one, so
// an intent never carries parameters foreign to its action.
type Intent struct {
	action     Action
	days       int
	vendor     string
	threshold  float64
	comparison Comparison
	startDate  string
	endDate    string
	filters    []Filter
	confidence float64
}

// UnknownIntent is the zero-confidence non-answer. The unknown action
// always carries confidence 0.
func UnknownIntent() Intent {
	return Intent{action: ActionUnknown}
}

// NewCountDue asks how many invoices are due within the next days.
func NewCountDue(days int, confidence float64) Intent {
	return Intent{action: ActionCountDue, days: days, confidence: clamp(confidence)}
}

// NewCountByValue asks how many invoices fall on one side of a threshold.
func NewCountByValue(threshold float64, cmp Comparison, confidence float64) Intent {
	return Intent{action: ActionCountByValue, threshold: threshold, comparison: cmp, confidence: clamp(confidence)}
}

// NewTotalByVendor asks for the summed total of one vendor's invoices.
func NewTotalByVendor(vendor string, confidence float64) Intent {
	return Intent{action: ActionTotalByVendor, vendor: vendor, confidence: clamp(confidence)}
}

// NewTotalByDateRange asks for the summed total over an inclusive date range.
func NewTotalByDateRange(start, end string, confidence float64) Intent {
	return Intent{action: ActionTotalByDateRange, startDate: start, endDate: end, confidence: clamp(confidence)}
}

// NewInvoicesByVendor asks for the invoices of one vendor.
func NewInvoicesByVendor(vendor string, confidence float64) Intent {
	return Intent{action: ActionInvoicesByVendor, vendor: vendor, confidence: clamp(confidence)}
}

// NewOverdue asks for invoices past their due date.
func NewOverdue(confidence float64) Intent {
	return Intent{action: ActionOverdue, confidence: clamp(confidence)}
}

// NewSummary asks for the summary statistics.
func NewSummary(confidence float64) Intent {
	return Intent{action: ActionSummary, confidence: clamp(confidence)}
}

// NewFiltered creates an assisted-path intent carrying a filter sequence.
// Only the five assisted actions are accepted.
func NewFiltered(action Action, filters []Filter, confidence float64) (Intent, bool) {
	switch action {
	case ActionCountInvoices, ActionSumTotal, ActionListInvoices, ActionGetSummary, ActionFindOverdue:
		return Intent{action: action, filters: filters, confidence: clamp(confidence)}, true
	default:
		return UnknownIntent(), false
	}
}

// Action returns the intent's action tag.
func (i Intent) Action() Action { return i.action }

// Days returns the look-ahead window for count_due.
func (i Intent) Days() int { return i.days }

// Vendor returns the vendor parameter for vendor-scoped actions.
func (i Intent) Vendor() string { return i.vendor }

// Threshold returns the value threshold for count_by_value.
func (i Intent) Threshold() float64 { return i.threshold }

// Comparison returns the inequality direction for count_by_value.
func (i Intent) Comparison() Comparison { return i.comparison }

// DateRange returns the inclusive bounds for total_by_date.
func (i Intent) DateRange() (start, end string) { return i.startDate, i.endDate }

// Filters returns the ordered filter sequence (assisted path only).
func (i Intent) Filters() []Filter { return i.filters }

// Confidence returns the parser's self-reported certainty in [0,1].
func (i Intent) Confidence() float64 { return i.confidence }

// Actionable reports whether the intent clears the execution threshold.
func (i Intent) Actionable() bool {
	return i.action != ActionUnknown && i.confidence >= ConfidenceThreshold
}

func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
