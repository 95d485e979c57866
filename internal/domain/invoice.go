package domain

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and display format for invoice dates.
const DateLayout = "2006-01-02"

// AbsentDate is the display sentinel for a missing or unparsable date.
const AbsentDate = "N/A"

// Invoice is a normalized invoice row (immutable value object).
// Construct via Normalize; fields degrade to defaults instead of erroring.
type Invoice struct {
	vendor         string
	invoiceNumber  string
	invoiceDate    time.Time
	hasInvoiceDate bool
	dueDate        time.Time
	hasDueDate     bool
	total          float64
}

// Quality reports field-level degradations observed during normalization.
type Quality struct {
	InvalidInvoiceDate bool
	InvalidDueDate     bool
	ZeroTotal          bool
}

// Normalize coerces a raw invoice mapping into an Invoice. Malformed
// individual fields become defaults (empty vendor, absent dates, zero
// total); the returned Quality lets callers log data-quality warnings.
func Normalize(raw map[string]any) (Invoice, Quality) {
	var inv Invoice
	var q Quality

	inv.vendor = strings.ToLower(strings.TrimSpace(coerceString(raw["vendor"])))
	inv.invoiceNumber = strings.TrimSpace(coerceString(raw["invoice_number"]))

	inv.invoiceDate, inv.hasInvoiceDate, q.InvalidInvoiceDate = coerceDate(raw["invoice_date"])
	inv.dueDate, inv.hasDueDate, q.InvalidDueDate = coerceDate(raw["due_date"])

	inv.total = coerceTotal(raw["total"])
	q.ZeroTotal = inv.total == 0

	return inv, q
}

// Reconstruct creates an Invoice from already-normalized parts (tests, fixtures).
// Zero time values are treated as absent dates.
func Reconstruct(vendor, invoiceNumber string, invoiceDate, dueDate time.Time, total float64) Invoice {
	return Invoice{
		vendor:         strings.ToLower(strings.TrimSpace(vendor)),
		invoiceNumber:  invoiceNumber,
		invoiceDate:    invoiceDate,
		hasInvoiceDate: !invoiceDate.IsZero(),
		dueDate:        dueDate,
		hasDueDate:     !dueDate.IsZero(),
		total:          total,
	}
}

// Vendor returns the normalized (lowercased, trimmed) vendor name.
func (i Invoice) Vendor() string { return i.vendor }

// InvoiceNumber returns the invoice identifier, empty if absent.
func (i Invoice) InvoiceNumber() string { return i.invoiceNumber }

// InvoiceDate returns the invoice date and whether it is present.
func (i Invoice) InvoiceDate() (time.Time, bool) { return i.invoiceDate, i.hasInvoiceDate }

// DueDate returns the due date and whether it is present.
func (i Invoice) DueDate() (time.Time, bool) { return i.dueDate, i.hasDueDate }

// Total returns the invoice total. Negative values pass through unmodified.
func (i Invoice) Total() float64 { return i.total }

// View renders the invoice for display: dates as YYYY-MM-DD strings with
// "N/A" for absent values, never null.
func (i Invoice) View() InvoiceView {
	return InvoiceView{
		Vendor:        i.vendor,
		InvoiceNumber: i.invoiceNumber,
		InvoiceDate:   formatDate(i.invoiceDate, i.hasInvoiceDate),
		DueDate:       formatDate(i.dueDate, i.hasDueDate),
		Total:         i.total,
	}
}

// InvoiceView is a display-ready invoice row.
type InvoiceView struct {
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	InvoiceDate   string  `json:"invoice_date"`
	DueDate       string  `json:"due_date"`
	Total         float64 `json:"total"`
}

// SummaryStats aggregates the whole store.
type SummaryStats struct {
	TotalInvoices       int     `json:"total_invoices"`
	TotalValue          float64 `json:"total_value"`
	UniqueVendors       int     `json:"unique_vendors"`
	OverdueCount        int     `json:"overdue_count"`
	AverageInvoiceValue float64 `json:"average_invoice_value"`
}

func formatDate(t time.Time, present bool) string {
	if !present {
		return AbsentDate
	}
	return t.Format(DateLayout)
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

// coerceDate parses a date value. invalid is true only when a non-empty
// value was present but could not be parsed.
func coerceDate(v any) (t time.Time, present bool, invalid bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true, false
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false, false
		}
		if parsed, err := time.Parse(DateLayout, s); err == nil {
			return parsed, true, false
		}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			return parsed, true, false
		}
		return time.Time{}, false, true
	case nil:
		return time.Time{}, false, false
	default:
		return time.Time{}, false, true
	}
}

// coerceTotal converts numeric JSON values or currency-ish strings
// ("$1,200.50") to a float. Unparsable or missing becomes 0.
func coerceTotal(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
