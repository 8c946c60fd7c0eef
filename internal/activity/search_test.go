package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/activity"
)

func TestSearch_AliasCaseInsensitive(t *testing.T) {
	t.Parallel()

	items := []activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", DestNodeAlias: "Alice's Node"},
		{Kind: activity.KindPayment, PaymentHash: "p2", DestNodeAlias: "Bob"},
	}

	got := activity.Search(items, "alice")

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID())
}

func TestSearch_Fields(t *testing.T) {
	t.Parallel()

	items := []activity.Item{
		activity.Normalize(activity.Item{
			Kind:      activity.KindTransaction,
			TimeStamp: 1609804800,
			TxHash:    "AbCdEf0123",
		}),
		activity.Normalize(activity.Item{
			Kind:           activity.KindInvoice,
			CreationDate:   1612569600,
			RHash:          "1111",
			Memo:           "Coffee with Dana",
			PaymentRequest: "lnbc420n1pitch",
		}),
		activity.Normalize(activity.Item{
			Kind:            activity.KindPayment,
			CreationDate:    1612656000,
			PaymentHash:     "2222",
			PaymentPreimage: "deadbeef",
			DestNodePubkey:  "02abcdef",
		}),
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "memo", query: "coffee", wantIDs: []string{"1111"}},
		{name: "tx hash case folded", query: "abcdef0123", wantIDs: []string{"AbCdEf0123"}},
		{name: "payment request", query: "lnbc", wantIDs: []string{"1111"}},
		{name: "preimage", query: "DEADBEEF", wantIDs: []string{"2222"}},
		{name: "dest pubkey", query: "02abc", wantIDs: []string{"2222"}},
		{name: "kind", query: "invoice", wantIDs: []string{"1111"}},
		{name: "date", query: "jan 5, 2021", wantIDs: []string{"AbCdEf0123"}},
		{name: "no match", query: "zzzzzz", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := activity.Search(items, tt.query)
			ids := make([]string, 0, len(got))
			for i := range got {
				ids = append(ids, got[i].ID())
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearch_DestAddressesCaseSensitive(t *testing.T) {
	t.Parallel()

	items := []activity.Item{
		{Kind: activity.KindTransaction, TxHash: "t1", DestAddresses: []string{"bc1qXyZabc"}},
	}

	assert.Len(t, activity.Search(items, "qXyZ"), 1)
	assert.Empty(t, activity.Search(items, "qxyz"))
}

func TestSearch_EmptyQueryReturnsInput(t *testing.T) {
	t.Parallel()

	items := []activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1"},
		{Kind: activity.KindInvoice, RHash: "i1"},
	}

	got := activity.Search(items, "")
	assert.Equal(t, items, got)
}

func TestSearch_Idempotent(t *testing.T) {
	t.Parallel()

	items := []activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", Memo: "rent"},
		{Kind: activity.KindPayment, PaymentHash: "p2", Memo: "groceries"},
		{Kind: activity.KindInvoice, RHash: "i1", Memo: "rent deposit"},
	}

	once := activity.Search(items, "rent")
	twice := activity.Search(once, "rent")
	assert.Equal(t, once, twice)
}

func TestSearch_AbsentFieldsDoNotMatch(t *testing.T) {
	t.Parallel()

	// A transaction has no memo; an empty memo must not match anything.
	items := []activity.Item{
		{Kind: activity.KindTransaction, TxHash: "t1"},
	}

	assert.Empty(t, activity.Search(items, "memo text"))
}
