package lnd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lumenwallet/lumen/internal/activity"
)

// Invoice states as rendered by the node.
const (
	invoiceStateSettled  = "SETTLED"
	invoiceStateCanceled = "CANCELED"
)

// Payment statuses as rendered by the node.
const (
	paymentStatusInFlight = "IN_FLIGHT"
	paymentStatusFailed   = "FAILED"
)

// restInt64 is an int64 decoded from the node's REST gateway, which renders
// 64-bit integers as JSON strings. Accepts both quoted and bare forms.
type restInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *restInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing int64 %q: %w", s, err)
	}
	*n = restInt64(v)
	return nil
}

// restUint64 is the unsigned counterpart of restInt64.
type restUint64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (n *restUint64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing uint64 %q: %w", s, err)
	}
	*n = restUint64(v)
	return nil
}

// Transaction mirrors one entry of GET /v1/transactions.
type Transaction struct {
	TxHash           string    `json:"tx_hash"`
	Amount           restInt64 `json:"amount"`
	NumConfirmations int64     `json:"num_confirmations"`
	BlockHash        string    `json:"block_hash"`
	BlockHeight      int64     `json:"block_height"`
	TimeStamp        restInt64 `json:"time_stamp"`
	TotalFees        restInt64 `json:"total_fees"`
	DestAddresses    []string  `json:"dest_addresses"`
	Label            string    `json:"label"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// Invoice mirrors one entry of GET /v1/invoices.
type Invoice struct {
	Memo           string     `json:"memo"`
	RHash          string     `json:"r_hash"`
	Value          restInt64  `json:"value"`
	Settled        bool       `json:"settled"`
	CreationDate   restInt64  `json:"creation_date"`
	SettleDate     restInt64  `json:"settle_date"`
	PaymentRequest string     `json:"payment_request"`
	Expiry         restInt64  `json:"expiry"`
	AddIndex       restUint64 `json:"add_index"`
	State          string     `json:"state"`
}

type invoicesResponse struct {
	Invoices         []Invoice  `json:"invoices"`
	FirstIndexOffset restUint64 `json:"first_index_offset"`
	LastIndexOffset  restUint64 `json:"last_index_offset"`
}

// Payment mirrors one entry of GET /v1/payments.
type Payment struct {
	PaymentHash     string        `json:"payment_hash"`
	ValueSat        restInt64     `json:"value_sat"`
	FeeSat          restInt64     `json:"fee_sat"`
	CreationDate    restInt64     `json:"creation_date"`
	PaymentPreimage string        `json:"payment_preimage"`
	PaymentRequest  string        `json:"payment_request"`
	Status          string        `json:"status"`
	Htlcs           []htlcAttempt `json:"htlcs"`
}

type htlcAttempt struct {
	Route *paymentRoute `json:"route"`
}

type paymentRoute struct {
	Hops []routeHop `json:"hops"`
}

type routeHop struct {
	PubKey string `json:"pub_key"`
}

type paymentsResponse struct {
	Payments         []Payment  `json:"payments"`
	FirstIndexOffset restUint64 `json:"first_index_offset"`
	LastIndexOffset  restUint64 `json:"last_index_offset"`
}

// Channel list responses, used to flag channel-management transactions.
type channelsResponse struct {
	Channels []struct {
		ChannelPoint string `json:"channel_point"`
	} `json:"channels"`
}

type closedChannelsResponse struct {
	Channels []struct {
		ChannelPoint  string `json:"channel_point"`
		ClosingTxHash string `json:"closing_tx_hash"`
	} `json:"channels"`
}

type pendingChannel struct {
	ChannelPoint string `json:"channel_point"`
}

type pendingOpen struct {
	Channel pendingChannel `json:"channel"`
}

type pendingClose struct {
	Channel     pendingChannel `json:"channel"`
	ClosingTxid string         `json:"closing_txid"`
}

type pendingChannelsResponse struct {
	PendingOpenChannels         []pendingOpen  `json:"pending_open_channels"`
	PendingClosingChannels      []pendingClose `json:"pending_closing_channels"`
	PendingForceClosingChannels []pendingClose `json:"pending_force_closing_channels"`
	WaitingCloseChannels        []pendingOpen  `json:"waiting_close_channels"`
}

type nodeInfoResponse struct {
	Node struct {
		Alias  string `json:"alias"`
		PubKey string `json:"pub_key"`
	} `json:"node"`
}

// channelMarks holds the funding and closing transaction ids of every channel
// the node knows about. Transactions matching a mark are channel management,
// not wallet sends or receives.
type channelMarks struct {
	funding map[string]struct{}
	closing map[string]struct{}
}

func newChannelMarks() channelMarks {
	return channelMarks{
		funding: make(map[string]struct{}),
		closing: make(map[string]struct{}),
	}
}

func (m channelMarks) markFunding(channelPoint string) {
	if txid := fundingTxid(channelPoint); txid != "" {
		m.funding[txid] = struct{}{}
	}
}

func (m channelMarks) markClosing(txid string) {
	if txid != "" {
		m.closing[txid] = struct{}{}
	}
}

// fundingTxid extracts the funding transaction id from a channel point of the
// form "txid:output_index".
func fundingTxid(channelPoint string) string {
	txid, _, ok := strings.Cut(channelPoint, ":")
	if !ok {
		return ""
	}
	return txid
}

// activityItem converts the wire transaction into a normalized feed item.
func (t Transaction) activityItem(marks channelMarks) activity.Item {
	_, funding := marks.funding[t.TxHash]
	_, closing := marks.closing[t.TxHash]

	return activity.Normalize(activity.Item{
		Kind:             activity.KindTransaction,
		TimeStamp:        int64(t.TimeStamp),
		TxHash:           t.TxHash,
		Amount:           int64(t.Amount),
		TotalFees:        int64(t.TotalFees),
		DestAddresses:    t.DestAddresses,
		BlockHeight:      t.BlockHeight,
		NumConfirmations: t.NumConfirmations,
		IsReceived:       int64(t.Amount) > 0,
		IsFunding:        funding,
		IsClosing:        closing,
		IsPending:        t.NumConfirmations == 0,
	})
}

// activityItem converts the wire invoice into a normalized feed item.
// Expiry is evaluated against now; canceled invoices count as expired since
// the node will never settle them.
func (in Invoice) activityItem(now time.Time) activity.Item {
	settled := in.Settled || in.State == invoiceStateSettled
	expiresAt := int64(in.CreationDate) + int64(in.Expiry)
	expired := !settled && (now.Unix() > expiresAt || in.State == invoiceStateCanceled)

	return activity.Normalize(activity.Item{
		Kind:           activity.KindInvoice,
		Memo:           in.Memo,
		RHash:          decodeHash(in.RHash),
		Value:          int64(in.Value),
		Settled:        settled,
		SettleDate:     int64(in.SettleDate),
		CreationDate:   int64(in.CreationDate),
		Expiry:         int64(in.Expiry),
		IsExpired:      expired,
		PaymentRequest: in.PaymentRequest,
		AddIndex:       uint64(in.AddIndex),
	})
}

// activityItem converts the wire payment into a normalized feed item.
func (p Payment) activityItem(destAlias string) activity.Item {
	return activity.Normalize(activity.Item{
		Kind:            activity.KindPayment,
		PaymentHash:     p.PaymentHash,
		PaymentPreimage: p.PaymentPreimage,
		Value:           int64(p.ValueSat),
		Fee:             int64(p.FeeSat),
		CreationDate:    int64(p.CreationDate),
		PaymentRequest:  p.PaymentRequest,
		Sending:         p.Status == paymentStatusInFlight,
		DestNodePubkey:  p.destPubkey(),
		DestNodeAlias:   destAlias,
	})
}

// destPubkey returns the destination node key: the final hop of the first
// HTLC attempt that carried a route.
func (p Payment) destPubkey() string {
	for _, h := range p.Htlcs {
		if h.Route == nil || len(h.Route.Hops) == 0 {
			continue
		}
		return h.Route.Hops[len(h.Route.Hops)-1].PubKey
	}
	return ""
}

// decodeHash renders a gateway byte field as hex. The gateway emits bytes
// base64-encoded; payment hashes elsewhere in the API are hex strings.
func decodeHash(s string) string {
	if s == "" {
		return ""
	}
	if len(s) == 64 {
		if _, err := hex.DecodeString(s); err == nil {
			return s
		}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return hex.EncodeToString(raw)
}
