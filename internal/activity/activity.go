// Package activity provides the unified wallet activity feed: on-chain
// transactions, Lightning invoices, and Lightning payments normalized into
// a single timeline, classified into categories, searchable, and grouped
// under date separators.
package activity

import (
	"time"
)

// Kind identifies which wallet event an Item represents.
type Kind string

// Item kinds.
const (
	KindTransaction Kind = "transaction"
	KindInvoice     Kind = "invoice"
	KindPayment     Kind = "payment"
)

// DateLayout is the human-readable date format shown on separators and items.
const DateLayout = "Jan 2, 2006"

// Item is a single activity feed entry. It is a tagged union: Kind selects
// which field group is meaningful. Field names mirror the node's REST
// responses so cached items round-trip cleanly.
type Item struct {
	Kind Kind `json:"kind"`

	// Derived by Normalize: the canonical unix timestamp and its
	// human-readable date.
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`

	// On-chain transaction fields.
	TimeStamp        int64    `json:"time_stamp,omitempty"`
	TxHash           string   `json:"tx_hash,omitempty"`
	Amount           int64    `json:"amount,omitempty"`
	TotalFees        int64    `json:"total_fees,omitempty"`
	DestAddresses    []string `json:"dest_addresses,omitempty"`
	BlockHeight      int64    `json:"block_height,omitempty"`
	NumConfirmations int64    `json:"num_confirmations,omitempty"`
	IsReceived       bool     `json:"received,omitempty"`
	IsFunding        bool     `json:"is_funding,omitempty"`
	IsClosing        bool     `json:"is_closing,omitempty"`
	IsPending        bool     `json:"is_pending,omitempty"`
	Sending          bool     `json:"sending,omitempty"`

	// Invoice fields. RHash is the hex payment hash identifying the invoice.
	Memo           string `json:"memo,omitempty"`
	RHash          string `json:"r_hash,omitempty"`
	Value          int64  `json:"value,omitempty"`
	Settled        bool   `json:"settled,omitempty"`
	SettleDate     int64  `json:"settle_date,omitempty"`
	CreationDate   int64  `json:"creation_date,omitempty"`
	Expiry         int64  `json:"expiry,omitempty"`
	IsExpired      bool   `json:"is_expired,omitempty"`
	PaymentRequest string `json:"payment_request,omitempty"`
	AddIndex       uint64 `json:"add_index,omitempty"`

	// Payment fields. Value and CreationDate are shared with invoices.
	PaymentHash     string `json:"payment_hash,omitempty"`
	PaymentPreimage string `json:"payment_preimage,omitempty"`
	Fee             int64  `json:"fee,omitempty"`
	DestNodePubkey  string `json:"dest_node_pubkey,omitempty"`
	DestNodeAlias   string `json:"dest_node_alias,omitempty"`
}

// ID returns the item's natural identity: the transaction hash, the invoice
// payment hash, or the payment hash. Used for dedupe and detail lookups.
func (it *Item) ID() string {
	switch it.Kind {
	case KindTransaction:
		return it.TxHash
	case KindInvoice:
		return it.RHash
	case KindPayment:
		return it.PaymentHash
	default:
		return ""
	}
}

// AmountSat returns the signed satoshi amount to display for the item.
// Payments are negative (amount plus routing fee), invoices positive, and
// on-chain transactions carry the sign the node reported.
func (it *Item) AmountSat() int64 {
	switch it.Kind {
	case KindPayment:
		return -(it.Value + it.Fee)
	case KindInvoice:
		return it.Value
	default:
		return it.Amount
	}
}

// Normalize derives the item's canonical timestamp and human-readable date.
// Transactions use their block timestamp. Invoices use the settle date when
// settled, otherwise the creation date. Payments use the creation date.
// Normalize is idempotent.
func Normalize(it Item) Item {
	switch it.Kind {
	case KindTransaction:
		it.Timestamp = it.TimeStamp
	case KindInvoice:
		if it.Settled {
			it.Timestamp = it.SettleDate
		} else {
			it.Timestamp = it.CreationDate
		}
	case KindPayment:
		it.Timestamp = it.CreationDate
	}
	it.Date = FormatDate(it.Timestamp)
	return it
}

// NormalizeAll normalizes every item in the slice, returning a new slice.
func NormalizeAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = Normalize(items[i])
	}
	return out
}

// FormatDate renders a unix timestamp as a date like "Jan 5, 2021".
// Dates are rendered in UTC so output is stable across machines.
func FormatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}
