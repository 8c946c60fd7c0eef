package activity

import (
	"sync"

	"github.com/lumenwallet/lumen/internal/metrics"
)

// View composes the visible activity feed: the union of the enabled
// category pools, narrowed by the search query, grouped under date
// separators. Results are memoized and recomputed only when the pools,
// filter, or search text change.
type View struct {
	pools *Pools
	store *Store

	mu      sync.Mutex
	rev     uint64
	filter  Filter
	search  string
	entries []Entry
	valid   bool
}

// NewView returns a view over the given pools and store.
func NewView(pools *Pools, store *Store) *View {
	return &View{pools: pools, store: store}
}

// Entries returns the grouped feed rows for the current filter and search
// state. Repeated calls with unchanged inputs return the memoized result.
func (v *View) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	rev := v.pools.Revision()
	filter := v.store.Filter()
	search := v.store.SearchText()

	if v.valid && rev == v.rev && search == v.search && filter.Equal(v.filter) {
		metrics.Global.RecordCacheHit()
		return v.entries
	}
	metrics.Global.RecordCacheMiss()

	transactions := v.pools.Transactions()
	invoices := v.pools.Invoices()
	payments := v.pools.Payments()

	var visible []Item
	if filter.Enabled(CategorySent) {
		visible = append(visible, Sent(payments, transactions)...)
	}
	if filter.Enabled(CategoryReceived) {
		visible = append(visible, Received(invoices, transactions)...)
	}
	if filter.Enabled(CategoryPending) {
		visible = append(visible, Pending(payments, transactions, invoices)...)
	}
	if filter.Enabled(CategoryExpired) {
		visible = append(visible, Expired(invoices)...)
	}
	if filter.Enabled(CategoryInternal) {
		visible = append(visible, Internal(transactions)...)
	}

	v.entries = Group(Search(visible, search))
	v.rev = rev
	v.filter = filter
	v.search = search
	v.valid = true
	return v.entries
}

// Invalidate forces the next Entries call to recompute.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.valid = false
}
