// Package store holds normalized invoice records and answers aggregate
// and filter queries over them. A store is immutable after construction;
// every operation is a read-only linear scan.
package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/askledger/askledger/internal/domain"
)

// Store is the in-memory tabular store of invoice rows.
type Store struct {
	rows         []domain.Invoice
	knownVendors []string
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Store at construction.
type Option func(*Store)

// WithClock injects the evaluation-time clock. Due-window and overdue
// queries are deterministic given a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger for data-quality warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New normalizes raw invoice mappings into a Store. Malformed individual
// fields degrade to defaults and are reported as a data-quality warning;
// a bad row never aborts the load. An empty input yields a store whose
// operations all return zero values.
func New(records []map[string]any, opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var invalidInvoiceDates, invalidDueDates, zeroTotals int
	s.rows = make([]domain.Invoice, 0, len(records))
	titler := cases.Title(language.English)
	seen := make(map[string]struct{})

	for _, raw := range records {
		inv, q := domain.Normalize(raw)
		s.rows = append(s.rows, inv)

		if q.InvalidInvoiceDate {
			invalidInvoiceDates++
		}
		if q.InvalidDueDate {
			invalidDueDates++
		}
		if q.ZeroTotal {
			zeroTotals++
		}

		if v := inv.Vendor(); v != "" {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				s.knownVendors = append(s.knownVendors, titler.String(v))
			}
		}
	}

	if invalidInvoiceDates > 0 {
		s.logger.Warn("invoices with invalid invoice dates", zap.Int("count", invalidInvoiceDates))
	}
	if invalidDueDates > 0 {
		s.logger.Warn("invoices with invalid due dates", zap.Int("count", invalidDueDates))
	}
	if zeroTotals > 0 {
		s.logger.Warn("invoices with invalid or zero totals", zap.Int("count", zeroTotals))
	}
	s.logger.Info("invoice store loaded", zap.Int("rows", len(s.rows)))

	return s
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// KnownVendors returns distinct non-empty vendor names in first-seen
// order, title-cased for display and classifier context.
func (s *Store) KnownVendors() []string {
	out := make([]string, len(s.knownVendors))
	copy(out, s.knownVendors)
	return out
}

// CountByValue counts rows whose total is strictly less than or strictly
// greater than the threshold.
func (s *Store) CountByValue(threshold float64, cmp domain.Comparison) (int, error) {
	if threshold < 0 {
		return 0, fmt.Errorf("%w: value must be a non-negative number", domain.ErrInvalidArgument)
	}
	if !cmp.IsValid() {
		return 0, fmt.Errorf("%w: comparison must be %q or %q", domain.ErrInvalidArgument, domain.LessThan, domain.GreaterThan)
	}

	count := 0
	for _, inv := range s.rows {
		if cmp == domain.LessThan && inv.Total() < threshold {
			count++
		}
		if cmp == domain.GreaterThan && inv.Total() > threshold {
			count++
		}
	}
	return count, nil
}

// CountDueInDays counts rows whose due date lies in [today, today+days],
// inclusive on both ends.
func (s *Store) CountDueInDays(days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: days must be a non-negative integer", domain.ErrInvalidArgument)
	}

	today := s.today()
	target := today.AddDate(0, 0, days)

	count := 0
	for _, inv := range s.rows {
		due, ok := inv.DueDate()
		if !ok {
			continue
		}
		d := dayOf(due)
		if !d.Before(today) && !d.After(target) {
			count++
		}
	}
	return count, nil
}

// TotalByVendor sums totals of rows whose vendor contains the given name
// (case-insensitive substring match).
func (s *Store) TotalByVendor(vendor string) (float64, error) {
	needle, err := vendorNeedle(vendor)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, inv := range s.rows {
		if strings.Contains(inv.Vendor(), needle) {
			total += inv.Total()
		}
	}
	return total, nil
}

// TotalByDateRange sums totals of rows whose invoice date lies in the
// inclusive [start, end] range. Dates are YYYY-MM-DD strings.
func (s *Store) TotalByDateRange(start, end string) (float64, error) {
	from, err := time.Parse(domain.DateLayout, strings.TrimSpace(start))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid start date %q, use YYYY-MM-DD", domain.ErrInvalidArgument, start)
	}
	to, err := time.Parse(domain.DateLayout, strings.TrimSpace(end))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid end date %q, use YYYY-MM-DD", domain.ErrInvalidArgument, end)
	}
	if from.After(to) {
		return 0, fmt.Errorf("%w: start date cannot be after end date", domain.ErrInvalidArgument)
	}

	var total float64
	for _, inv := range s.rows {
		d, ok := inv.InvoiceDate()
		if !ok {
			continue
		}
		d = dayOf(d)
		if !d.Before(from) && !d.After(to) {
			total += inv.Total()
		}
	}
	return total, nil
}

// InvoicesByVendor returns display views of rows matching the vendor,
// using the same substring semantics as TotalByVendor.
func (s *Store) InvoicesByVendor(vendor string) ([]domain.InvoiceView, error) {
	needle, err := vendorNeedle(vendor)
	if err != nil {
		return nil, err
	}

	var out []domain.InvoiceView
	for _, inv := range s.rows {
		if strings.Contains(inv.Vendor(), needle) {
			out = append(out, inv.View())
		}
	}
	return out, nil
}

// OverdueInvoices returns display views of rows whose due date is
// strictly before today.
func (s *Store) OverdueInvoices() []domain.InvoiceView {
	today := s.today()

	var out []domain.InvoiceView
	for _, inv := range s.rows {
		due, ok := inv.DueDate()
		if !ok {
			continue
		}
		if dayOf(due).Before(today) {
			out = append(out, inv.View())
		}
	}
	return out
}

// SummaryStats aggregates the whole store. The empty vendor string counts
// as one distinct vendor when present.
func (s *Store) SummaryStats() domain.SummaryStats {
	if len(s.rows) == 0 {
		return domain.SummaryStats{}
	}

	today := s.today()
	vendors := make(map[string]struct{})
	var totalValue float64
	overdue := 0

	for _, inv := range s.rows {
		vendors[inv.Vendor()] = struct{}{}
		totalValue += inv.Total()
		if due, ok := inv.DueDate(); ok && dayOf(due).Before(today) {
			overdue++
		}
	}

	return domain.SummaryStats{
		TotalInvoices:       len(s.rows),
		TotalValue:          totalValue,
		UniqueVendors:       len(vendors),
		OverdueCount:        overdue,
		AverageInvoiceValue: totalValue / float64(len(s.rows)),
	}
}

// CountWhere counts rows matching a conjunctive filter sequence.
func (s *Store) CountWhere(filters []domain.Filter) int {
	count := 0
	for _, inv := range s.rows {
		if matches(inv, filters) {
			count++
		}
	}
	return count
}

// SumWhere sums totals of rows matching a conjunctive filter sequence.
func (s *Store) SumWhere(filters []domain.Filter) float64 {
	var total float64
	for _, inv := range s.rows {
		if matches(inv, filters) {
			total += inv.Total()
		}
	}
	return total
}

// ListWhere returns display views of rows matching a conjunctive filter
// sequence.
func (s *Store) ListWhere(filters []domain.Filter) []domain.InvoiceView {
	var out []domain.InvoiceView
	for _, inv := range s.rows {
		if matches(inv, filters) {
			out = append(out, inv.View())
		}
	}
	return out
}

// matches applies filters conjunctively. Unsupported (field, operator)
// combinations pass through without narrowing.
func matches(inv domain.Invoice, filters []domain.Filter) bool {
	for _, f := range filters {
		switch {
		case f.Field == "vendor" && f.Operator == domain.OpEquals:
			if !strings.Contains(inv.Vendor(), strings.ToLower(strings.TrimSpace(f.Text))) {
				return false
			}
		case f.Field == "total" && f.Operator == domain.OpLessThan && f.IsNumber:
			if !(inv.Total() < f.Number) {
				return false
			}
		case f.Field == "total" && f.Operator == domain.OpGreaterThan && f.IsNumber:
			if !(inv.Total() > f.Number) {
				return false
			}
		}
	}
	return true
}

func vendorNeedle(vendor string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(vendor))
	if needle == "" {
		return "", fmt.Errorf("%w: vendor name cannot be empty", domain.ErrInvalidArgument)
	}
	return needle, nil
}

func (s *Store) today() time.Time {
	return dayOf(s.now())
}

// dayOf reduces a timestamp to its calendar day in UTC so rows parsed
// from YYYY-MM-DD strings compare correctly against any clock location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
