package activity

import "sync"

// Pools holds the raw per-kind activity items fetched from the node. Items
// are kept normalized. A revision counter increments on every change so
// derived views can cheaply detect staleness. All methods are safe for
// concurrent use.
type Pools struct {
	mu           sync.RWMutex
	rev          uint64
	transactions []Item
	invoices     []Item
	payments     []Item
	seen         map[string]struct{}
}

// NewPools returns an empty set of pools at revision zero.
func NewPools() *Pools {
	return &Pools{seen: make(map[string]struct{})}
}

// Accept routes a page of mixed-kind items into the per-kind pools,
// normalizing each and skipping items already present.
func (p *Pools) Accept(items []Item) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := false
	for _, it := range items {
		it = Normalize(it)
		key := dedupeKey(&it)
		if key != "" {
			if _, dup := p.seen[key]; dup {
				continue
			}
			p.seen[key] = struct{}{}
		}
		switch it.Kind {
		case KindTransaction:
			p.transactions = append(p.transactions, it)
		case KindInvoice:
			p.invoices = append(p.invoices, it)
		case KindPayment:
			p.payments = append(p.payments, it)
		default:
			continue
		}
		changed = true
	}
	if changed {
		p.rev++
	}
}

// ReplaceTransactions swaps the transaction pool wholesale.
func (p *Pools) ReplaceTransactions(items []Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transactions = NormalizeAll(items)
	p.reindex()
	p.rev++
}

// ReplaceInvoices swaps the invoice pool wholesale.
func (p *Pools) ReplaceInvoices(items []Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invoices = NormalizeAll(items)
	p.reindex()
	p.rev++
}

// ReplacePayments swaps the payment pool wholesale.
func (p *Pools) ReplacePayments(items []Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payments = NormalizeAll(items)
	p.reindex()
	p.rev++
}

// Transactions returns a copy of the transaction pool.
func (p *Pools) Transactions() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyItems(p.transactions)
}

// Invoices returns a copy of the invoice pool.
func (p *Pools) Invoices() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyItems(p.invoices)
}

// Payments returns a copy of the payment pool.
func (p *Pools) Payments() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyItems(p.payments)
}

// FindInvoice returns the invoice with the given payment hash.
func (p *Pools) FindInvoice(rHash string) (Item, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := range p.invoices {
		if p.invoices[i].RHash == rHash {
			return p.invoices[i], true
		}
	}
	return Item{}, false
}

// Revision returns the pools' change counter.
func (p *Pools) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rev
}

// Len returns the total number of items across all pools.
func (p *Pools) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.transactions) + len(p.invoices) + len(p.payments)
}

// Clear empties all pools.
func (p *Pools) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transactions = nil
	p.invoices = nil
	p.payments = nil
	p.seen = make(map[string]struct{})
	p.rev++
}

// reindex rebuilds the dedupe index from the current pool contents.
// Callers must hold the write lock.
func (p *Pools) reindex() {
	p.seen = make(map[string]struct{}, len(p.transactions)+len(p.invoices)+len(p.payments))
	for _, pool := range [][]Item{p.transactions, p.invoices, p.payments} {
		for i := range pool {
			if key := dedupeKey(&pool[i]); key != "" {
				p.seen[key] = struct{}{}
			}
		}
	}
}

func dedupeKey(it *Item) string {
	id := it.ID()
	if id == "" {
		return ""
	}
	return string(it.Kind) + ":" + id
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
