// Package contracts defines the interface contracts for Lumen MVP.
// These are design artifacts - not compiled code.
// Actual implementations go in internal/activity/
package contracts

import (
	"context"
)

// Kind identifies which wallet event an activity item represents.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindInvoice     Kind = "invoice"
	KindPayment     Kind = "payment"
)

// Category classifies an activity item for filtering and display.
type Category string

const (
	// CategorySent: completed payments and confirmed outgoing transactions.
	CategorySent Category = "sent"

	// CategoryReceived: settled invoices and incoming transactions.
	CategoryReceived Category = "received"

	// CategoryPending: in-flight payments, unsettled unexpired invoices,
	// and unconfirmed transactions.
	CategoryPending Category = "pending"

	// CategoryExpired: invoices that lapsed unsettled.
	CategoryExpired Category = "expired"

	// CategoryInternal: channel funding and cooperative close transactions.
	CategoryInternal Category = "internal"
)

// Item is a single activity feed entry. It is a tagged union: Kind selects
// which field group is meaningful. Field names mirror the node's REST
// responses so cached items round-trip cleanly.
type Item struct {
	Kind Kind `json:"kind"`

	// Timestamp and Date are derived during normalization: transactions use
	// the block timestamp, invoices the settle date (creation date while
	// unsettled), payments the creation date.
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`

	// On-chain transaction fields.
	TimeStamp        int64    `json:"time_stamp,omitempty"`
	TxHash           string   `json:"tx_hash,omitempty"`
	Amount           int64    `json:"amount,omitempty"`
	DestAddresses    []string `json:"dest_addresses,omitempty"`
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
	PaymentRequest string `json:"payment_request,omitempty"`
	AddIndex       uint64 `json:"add_index,omitempty"`

	// Payment fields. Value and CreationDate are shared with invoices.
	PaymentHash     string `json:"payment_hash,omitempty"`
	PaymentPreimage string `json:"payment_preimage,omitempty"`
	Fee             int64  `json:"fee,omitempty"`
	DestNodePubkey  string `json:"dest_node_pubkey,omitempty"`
	DestNodeAlias   string `json:"dest_node_alias,omitempty"`
}

// InvoicesRequest asks the node for one page of invoices. Reversed paging
// walks backwards from the newest invoice.
type InvoicesRequest struct {
	NumMaxInvoices uint64
	IndexOffset    uint64
	Reversed       bool
}

// InvoicesPage is one page of invoices. FirstIndexOffset seeds the next
// reversed request.
type InvoicesPage struct {
	Items            []Item
	FirstIndexOffset uint64
}

// Source provides the three activity histories from the wallet node.
// Transactions and payments are fetched wholesale; invoices are paged.
type Source interface {
	// GetTransactions returns all on-chain transactions.
	GetTransactions(ctx context.Context) ([]Item, error)

	// ListPayments returns all Lightning payments.
	ListPayments(ctx context.Context) ([]Item, error)

	// ListInvoices returns one page of Lightning invoices.
	ListInvoices(ctx context.Context, req InvoicesRequest) (*InvoicesPage, error)
}

// FeedEntry is one row of the rendered feed: a date separator (Title set,
// Item nil) or an activity item.
type FeedEntry struct {
	Title string `json:"title,omitempty"`
	Item  *Item  `json:"item,omitempty"`
}

// FeedService drives a session-scoped activity feed over a node source.
type FeedService interface {
	// Refresh replaces the pooled activity with fresh node data: all
	// transactions, all payments, and the newest page of invoices.
	Refresh(ctx context.Context) error

	// LoadNextPage appends the next page of older invoices.
	// No-op when the node has no more invoices.
	LoadNextPage(ctx context.Context) error

	// Entries returns the visible feed: filtered, searched, sorted newest
	// first, with date separators inserted at day boundaries.
	Entries() []FeedEntry

	// FindInvoice looks up a pooled invoice by its payment hash.
	FindInvoice(rHash string) (Item, bool)

	// Reset clears pooled activity and view state for a wallet switch.
	Reset()
}

// FilterState is the category filter: everything, or an explicit subset.
type FilterState struct {
	// All reports that every category is visible. A subset listing all
	// five categories is still a subset, not All.
	All bool `json:"all"`

	// Categories is the enabled subset, sorted, meaningful when !All.
	Categories []Category `json:"categories,omitempty"`
}

// FeedStore holds the feed's view state: filter, search text, modal, fetch
// progress, and pagination.
type FeedStore interface {
	// ToggleFilter flips the given categories in the filter. Toggling away
	// the last enabled category returns the filter to All.
	ToggleFilter(cats ...Category)

	// SetSearchText updates the live search query.
	SetSearchText(text string)

	// OpenModal records the item detail being displayed.
	OpenModal(kind Kind, id string)

	// CloseModal clears the open modal.
	CloseModal()

	// HasNextPage reports whether older invoices remain unfetched.
	HasNextPage() bool

	// Reset restores pristine state.
	Reset()
}

// Activity-related errors.
var (
	ErrUnknownCategory = Error{Code: "UNKNOWN_CATEGORY", Message: "unknown activity category"}
	ErrInvoiceNotFound = Error{Code: "INVOICE_NOT_FOUND", Message: "no invoice matches the given hash"}
	ErrNodeUnreachable = Error{Code: "NODE_UNREACHABLE", Message: "wallet node did not respond"}
)

// Error is a structured error with code for programmatic handling.
type Error struct {
	Code    string
	Message string
	Details map[string]string
}

func (e Error) Error() string {
	return e.Message
}
