package activity

import (
	"strings"

	"github.com/agnivade/levenshtein"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// Category is one of the five activity feed categories.
type Category string

// Activity categories.
const (
	CategorySent     Category = "sent"
	CategoryReceived Category = "received"
	CategoryPending  Category = "pending"
	CategoryExpired  Category = "expired"
	CategoryInternal Category = "internal"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategorySent,
		CategoryReceived,
		CategoryPending,
		CategoryExpired,
		CategoryInternal,
	}
}

// maxCategoryTypoDistance is the maximum Levenshtein distance to consider
// a category name suggestion.
const maxCategoryTypoDistance = 2

// ParseCategory parses a user-supplied category name. Unknown names produce
// an invalid-input error carrying the closest valid category as a suggestion
// when one is within typo distance.
func ParseCategory(name string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, cat := range Categories() {
		if normalized == string(cat) {
			return cat, nil
		}
	}

	err := lumenerr.WithDetails(
		lumenerr.Wrap(lumenerr.ErrInvalidInput, "unknown activity category"),
		map[string]string{"category": name},
	)

	minDist := maxCategoryTypoDistance + 1
	var closest Category
	for _, cat := range Categories() {
		dist := levenshtein.ComputeDistance(normalized, string(cat))
		if dist < minDist {
			minDist = dist
			closest = cat
		}
	}
	if minDist <= maxCategoryTypoDistance {
		return "", lumenerr.WithSuggestion(err, "Did you mean '"+string(closest)+"'?")
	}
	return "", lumenerr.WithSuggestion(err, "Valid categories: sent, received, pending, expired, internal")
}

// Classify returns the category a single item falls into. It agrees with
// the pool classifiers below; where an item would land in more than one pool
// (a pending channel funding transaction is both internal and pending),
// channel management wins.
func Classify(it Item) Category {
	switch it.Kind {
	case KindPayment:
		if it.Sending {
			return CategoryPending
		}
		return CategorySent
	case KindInvoice:
		if it.Settled {
			return CategoryReceived
		}
		if it.IsExpired {
			return CategoryExpired
		}
		return CategoryPending
	default:
		if it.IsFunding || (it.IsClosing && !it.IsPending) {
			return CategoryInternal
		}
		if it.Sending || it.IsPending {
			return CategoryPending
		}
		if it.IsReceived {
			return CategoryReceived
		}
		return CategorySent
	}
}

// Sent returns completed outgoing activity: every non-pending payment, plus
// on-chain sends that are not received, not channel funding or closing, and
// not pending.
func Sent(payments, transactions []Item) []Item {
	var out []Item
	for _, p := range payments {
		if !p.Sending {
			out = append(out, Normalize(p))
		}
	}
	for _, tx := range transactions {
		if !tx.IsReceived && !tx.IsFunding && !tx.IsClosing && !tx.IsPending {
			out = append(out, Normalize(tx))
		}
	}
	return out
}

// Received returns completed incoming activity: settled invoices, plus
// on-chain receives that are not channel funding or closing and not pending.
func Received(invoices, transactions []Item) []Item {
	var out []Item
	for _, inv := range invoices {
		if inv.Settled {
			out = append(out, Normalize(inv))
		}
	}
	for _, tx := range transactions {
		if tx.IsReceived && !tx.IsFunding && !tx.IsClosing && !tx.IsPending {
			out = append(out, Normalize(tx))
		}
	}
	return out
}

// Pending returns in-flight activity: payments and transactions still
// sending, transactions flagged pending by the node, and open invoices that
// are neither settled nor expired.
func Pending(payments, transactions, invoices []Item) []Item {
	var out []Item
	for _, p := range payments {
		if p.Sending {
			out = append(out, Normalize(p))
		}
	}
	for _, tx := range transactions {
		if tx.Sending || tx.IsPending {
			out = append(out, Normalize(tx))
		}
	}
	for _, inv := range invoices {
		if !inv.Settled && !inv.IsExpired {
			out = append(out, Normalize(inv))
		}
	}
	return out
}

// Expired returns invoices that lapsed without settling.
func Expired(invoices []Item) []Item {
	var out []Item
	for _, inv := range invoices {
		if !inv.Settled && inv.IsExpired {
			out = append(out, Normalize(inv))
		}
	}
	return out
}

// Internal returns wallet-internal channel management activity: funding
// transactions, and closing transactions once confirmed.
func Internal(transactions []Item) []Item {
	var out []Item
	for _, tx := range transactions {
		if tx.IsFunding || (tx.IsClosing && !tx.IsPending) {
			out = append(out, Normalize(tx))
		}
	}
	return out
}
