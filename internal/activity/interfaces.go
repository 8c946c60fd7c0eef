package activity

import "context"

// InvoicesRequest asks the node for one page of invoices. Reversed paging
// walks backwards from the newest invoice; IndexOffset carries the
// FirstIndexOffset of the previous page.
type InvoicesRequest struct {
	NumMaxInvoices uint64
	IndexOffset    uint64
	Reversed       bool
}

// InvoicesPage is one page of invoices from the node. FirstIndexOffset is
// the add index of the oldest invoice in the page and seeds the next
// reversed request.
type InvoicesPage struct {
	Items            []Item
	FirstIndexOffset uint64
}

// Source provides the three activity histories from the wallet node.
// Transactions and payments are returned wholesale; invoices are paged.
type Source interface {
	GetTransactions(ctx context.Context) ([]Item, error)
	ListPayments(ctx context.Context) ([]Item, error)
	ListInvoices(ctx context.Context, req InvoicesRequest) (*InvoicesPage, error)
}

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// nopLogger discards all log output. Used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
