package activity

import (
	"context"
	"sort"
)

// paginator merges the three activity histories into a single stream of
// pages ordered newest-first. Transactions and payments arrive wholesale
// from the node, so they are fetched once and buffered. Invoices are paged
// incrementally through the node's reversed index offsets. Leftover items
// stay buffered between calls so no item is skipped or duplicated.
type paginator struct {
	source   Source
	pageSize int

	transactions     []Item
	transactionsDone bool

	payments     []Item
	paymentsDone bool

	invoices      []Item
	invoiceOffset uint64
	invoicesDone  bool
}

func newPaginator(source Source, pageSize int) *paginator {
	return &paginator{source: source, pageSize: pageSize}
}

// advance produces the next page of merged items and reports whether more
// history remains. Buffers are left intact when a fetch fails, so a retry
// resumes from the same position.
func (p *paginator) advance(ctx context.Context) ([]Item, bool, error) {
	if err := p.fill(ctx); err != nil {
		return nil, true, err
	}

	page := make([]Item, 0, p.pageSize)
	for len(page) < p.pageSize {
		next, ok := p.pop()
		if !ok {
			break
		}
		page = append(page, next)
	}
	return page, p.hasMore(), nil
}

// fill tops up the per-source buffers until each can cover a full page or
// is exhausted.
func (p *paginator) fill(ctx context.Context) error {
	if !p.transactionsDone {
		items, err := p.source.GetTransactions(ctx)
		if err != nil {
			return err
		}
		p.transactions = sortedDesc(NormalizeAll(items))
		p.transactionsDone = true
	}

	if !p.paymentsDone {
		items, err := p.source.ListPayments(ctx)
		if err != nil {
			return err
		}
		p.payments = sortedDesc(NormalizeAll(items))
		p.paymentsDone = true
	}

	for !p.invoicesDone && len(p.invoices) < p.pageSize {
		resp, err := p.source.ListInvoices(ctx, InvoicesRequest{
			NumMaxInvoices: uint64(p.pageSize),
			IndexOffset:    p.invoiceOffset,
			Reversed:       true,
		})
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			p.invoicesDone = true
			break
		}
		p.invoices = append(p.invoices, NormalizeAll(resp.Items)...)
		p.invoices = sortedDesc(p.invoices)
		p.invoiceOffset = resp.FirstIndexOffset
		if len(resp.Items) < p.pageSize {
			p.invoicesDone = true
		}
	}
	return nil
}

// pop removes and returns the newest item across the three buffers.
func (p *paginator) pop() (Item, bool) {
	best := -1
	var bestTS int64
	buffers := []*[]Item{&p.transactions, &p.payments, &p.invoices}
	for i, buf := range buffers {
		if len(*buf) == 0 {
			continue
		}
		ts := (*buf)[0].Timestamp
		if best == -1 || ts > bestTS {
			best = i
			bestTS = ts
		}
	}
	if best == -1 {
		return Item{}, false
	}
	buf := buffers[best]
	item := (*buf)[0]
	*buf = (*buf)[1:]
	return item, true
}

func (p *paginator) hasMore() bool {
	return len(p.transactions) > 0 || len(p.payments) > 0 ||
		len(p.invoices) > 0 || !p.invoicesDone
}

func sortedDesc(items []Item) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items
}
