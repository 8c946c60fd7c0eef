package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/activity"
)

func TestView_SinglePaymentYieldsSeparatorThenItem(t *testing.T) {
	t.Parallel()

	pools := activity.NewPools()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", CreationDate: 100},
	})
	view := activity.NewView(pools, activity.NewStore())

	got := view.Entries()

	require.Len(t, got, 2)
	assert.True(t, got[0].IsSeparator())
	assert.Equal(t, activity.FormatDate(100), got[0].Title)
	require.False(t, got[1].IsSeparator())
	assert.Equal(t, int64(100), got[1].Item.Timestamp)
}

func TestView_UnionRespectsFilter(t *testing.T) {
	t.Parallel()

	pools := activity.NewPools()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", CreationDate: 100},
		{Kind: activity.KindInvoice, RHash: "i1", Settled: true, SettleDate: 200},
		{Kind: activity.KindInvoice, RHash: "i2", CreationDate: 300, IsExpired: true},
		{Kind: activity.KindTransaction, TxHash: "t1", TimeStamp: 400, IsFunding: true},
	})
	store := activity.NewStore()
	view := activity.NewView(pools, store)

	// All categories: every item appears once.
	all := view.Entries()
	assert.Equal(t, 4, countItems(all))

	// Narrow to received: only the settled invoice.
	store.SetFilter(activity.SubsetFilter(activity.CategoryReceived))
	received := view.Entries()
	require.Equal(t, 1, countItems(received))
	assert.Equal(t, "i1", received[1].Item.ID())

	// Expired and internal together.
	store.SetFilter(activity.SubsetFilter(activity.CategoryExpired, activity.CategoryInternal))
	mixed := view.Entries()
	assert.Equal(t, 2, countItems(mixed))
}

func TestView_SearchNarrowsUnion(t *testing.T) {
	t.Parallel()

	pools := activity.NewPools()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", CreationDate: 100, DestNodeAlias: "Alice's Node"},
		{Kind: activity.KindPayment, PaymentHash: "p2", CreationDate: 200, DestNodeAlias: "Bob"},
	})
	store := activity.NewStore()
	store.SetSearchText("alice")
	view := activity.NewView(pools, store)

	got := view.Entries()

	require.Equal(t, 1, countItems(got))
	assert.Equal(t, "p1", got[1].Item.ID())
}

func TestView_MemoizesUntilInputsChange(t *testing.T) {
	t.Parallel()

	pools := activity.NewPools()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", CreationDate: 100},
	})
	store := activity.NewStore()
	view := activity.NewView(pools, store)

	first := view.Entries()
	second := view.Entries()
	require.Equal(t, 2, len(second))
	assert.Same(t, first[1].Item, second[1].Item)

	// A search change invalidates the memo.
	store.SetSearchText("p1")
	third := view.Entries()
	require.Equal(t, 1, countItems(third))
	assert.NotSame(t, first[1].Item, third[1].Item)

	// A pool change invalidates the memo.
	store.SetSearchText("")
	fourth := view.Entries()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p2", CreationDate: 200},
	})
	fifth := view.Entries()
	assert.Equal(t, 1, countItems(fourth))
	assert.Equal(t, 2, countItems(fifth))

	// A filter change invalidates the memo.
	store.SetFilter(activity.SubsetFilter(activity.CategoryExpired))
	assert.Equal(t, 0, countItems(view.Entries()))
}

func TestView_Invalidate(t *testing.T) {
	t.Parallel()

	pools := activity.NewPools()
	pools.Accept([]activity.Item{
		{Kind: activity.KindPayment, PaymentHash: "p1", CreationDate: 100},
	})
	view := activity.NewView(pools, activity.NewStore())

	first := view.Entries()
	view.Invalidate()
	second := view.Entries()

	require.Equal(t, len(first), len(second))
	assert.NotSame(t, first[1].Item, second[1].Item)
}

func countItems(entries []activity.Entry) int {
	n := 0
	for _, e := range entries {
		if !e.IsSeparator() {
			n++
		}
	}
	return n
}
