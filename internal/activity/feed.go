package activity

import (
	"context"
	"sync"
	"time"

	"github.com/lumenwallet/lumen/internal/metrics"
)

const defaultPageSize = 50

// FeedConfig holds dependencies for the activity feed.
type FeedConfig struct {
	Source   Source
	PageSize int
	Logger   LogWriter
}

// Feed owns one wallet session's activity state: the raw per-kind pools,
// the presentation store, the memoized view, and the merge paginator that
// pulls further history from the node. Page loads are serialized; a Reset
// starts a fresh session and any fetch still in flight for the old session
// is discarded when it lands.
type Feed struct {
	source   Source
	pageSize int
	logger   LogWriter

	pools *Pools
	store *Store
	view  *View

	// fetchMu serializes network loads. mu guards the paginator and the
	// session generation; it is never held across a fetch.
	fetchMu sync.Mutex
	mu      sync.Mutex
	pag     *paginator
	gen     uint64
}

// NewFeed creates a feed for one wallet session.
func NewFeed(cfg FeedConfig) *Feed {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	pools := NewPools()
	store := NewStore()
	return &Feed{
		source:   cfg.Source,
		pageSize: pageSize,
		logger:   logger,
		pools:    pools,
		store:    store,
		view:     NewView(pools, store),
	}
}

// Store returns the feed's presentation store.
func (f *Feed) Store() *Store {
	return f.store
}

// Pools returns the feed's raw item pools.
func (f *Feed) Pools() *Pools {
	return f.pools
}

// Entries returns the grouped feed rows for the current filter and search.
func (f *Feed) Entries() []Entry {
	return f.view.Entries()
}

// FindInvoice returns the fetched invoice with the given payment hash.
func (f *Feed) FindInvoice(rHash string) (Item, bool) {
	return f.pools.FindInvoice(rHash)
}

// LoadNextPage fetches the next page of merged history and routes it into
// the pools. Calls are serialized; a call that lands after Reset is
// discarded without touching the new session's state.
func (f *Feed) LoadNextPage(ctx context.Context) error {
	f.fetchMu.Lock()
	defer f.fetchMu.Unlock()

	f.mu.Lock()
	if f.pag == nil {
		f.pag = newPaginator(f.source, f.pageSize)
	}
	pag := f.pag
	gen := f.gen
	f.store.FetchStarted()
	f.mu.Unlock()

	start := time.Now()
	page, hasMore, err := pag.advance(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		f.logger.Debug("discarding stale activity page from previous session")
		return nil
	}
	if err != nil {
		f.store.FetchFailed(err)
		f.logger.Error("activity page load failed: %v", err)
		return err
	}

	f.pools.Accept(page)
	f.store.SetHasNextPage(hasMore)
	f.store.FetchCompleted()
	metrics.Global.RecordPageLoad()
	f.logger.Debug("loaded activity page: %d items in %s (more=%t)",
		len(page), time.Since(start).Round(time.Millisecond), hasMore)
	return nil
}

// Refresh replaces the pools with a wholesale history fetch: all
// transactions, all payments, and the newest page of invoices.
func (f *Feed) Refresh(ctx context.Context) error {
	f.fetchMu.Lock()
	defer f.fetchMu.Unlock()

	f.mu.Lock()
	gen := f.gen
	f.store.FetchStarted()
	f.mu.Unlock()

	transactions, err := f.source.GetTransactions(ctx)
	if err != nil {
		return f.failFetch(gen, err)
	}
	payments, err := f.source.ListPayments(ctx)
	if err != nil {
		return f.failFetch(gen, err)
	}
	invoices, err := f.source.ListInvoices(ctx, InvoicesRequest{
		NumMaxInvoices: uint64(f.pageSize),
		Reversed:       true,
	})
	if err != nil {
		return f.failFetch(gen, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		f.logger.Debug("discarding stale activity refresh from previous session")
		return nil
	}
	f.pools.ReplaceTransactions(transactions)
	f.pools.ReplacePayments(payments)
	f.pools.ReplaceInvoices(invoices.Items)
	f.store.SetHasNextPage(len(invoices.Items) >= f.pageSize)
	f.store.FetchCompleted()
	f.logger.Debug("refreshed activity history: %d transactions, %d payments, %d invoices",
		len(transactions), len(payments), len(invoices.Items))
	return nil
}

// Reset starts a fresh session: pools emptied, store restored to its
// initial state, paginator discarded. In-flight fetches for the old
// session are not canceled; their results are dropped when they land.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.pag = nil
	f.pools.Clear()
	f.store.Reset()
	f.logger.Debug("activity session reset")
}

func (f *Feed) failFetch(gen uint64, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil
	}
	f.store.FetchFailed(err)
	f.logger.Error("activity history fetch failed: %v", err)
	return err
}
