package executor

import "github.com/askledger/askledger/internal/domain"

// Store is the tabular query surface the executor dispatches against.
type Store interface {
	CountByValue(threshold float64, cmp domain.Comparison) (int, error)
	CountDueInDays(days int) (int, error)
	TotalByVendor(vendor string) (float64, error)
	TotalByDateRange(start, end string) (float64, error)
	InvoicesByVendor(vendor string) ([]domain.InvoiceView, error)
	OverdueInvoices() []domain.InvoiceView
	SummaryStats() domain.SummaryStats

	CountWhere(filters []domain.Filter) int
	SumWhere(filters []domain.Filter) float64
	ListWhere(filters []domain.Filter) []domain.InvoiceView
}
