package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/activity"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestStore_InitialState(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()

	assert.True(t, s.Filter().IsAll())
	assert.Empty(t, s.SearchText())
	assert.False(t, s.Loading())
	assert.True(t, s.HasNextPage())
	assert.NoError(t, s.FetchError())

	_, _, open := s.Modal()
	assert.False(t, open)
}

func TestStore_ToggleFilterTwiceRestoresState(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	before := s.Filter()

	s.ToggleFilter(activity.CategorySent)
	assert.False(t, s.Filter().IsAll())
	assert.True(t, s.Filter().Enabled(activity.CategorySent))
	assert.False(t, s.Filter().Enabled(activity.CategoryReceived))

	s.ToggleFilter(activity.CategorySent)
	assert.True(t, s.Filter().Equal(before))
}

func TestStore_AddFilterNoOpWhenAll(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	s.AddFilter(activity.CategorySent)
	assert.True(t, s.Filter().IsAll())

	s.ToggleFilter(activity.CategoryReceived)
	s.AddFilter(activity.CategorySent)
	assert.True(t, s.Filter().Enabled(activity.CategorySent))
	assert.True(t, s.Filter().Enabled(activity.CategoryReceived))
	assert.False(t, s.Filter().Enabled(activity.CategoryPending))
}

func TestStore_SearchText(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	s.SetSearchText("coffee")
	assert.Equal(t, "coffee", s.SearchText())

	s.SetSearchText("")
	assert.Empty(t, s.SearchText())
}

func TestStore_Modal(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	s.OpenModal(activity.KindInvoice, "abc123")

	kind, id, open := s.Modal()
	assert.True(t, open)
	assert.Equal(t, activity.KindInvoice, kind)
	assert.Equal(t, "abc123", id)

	s.CloseModal()
	_, _, open = s.Modal()
	assert.False(t, open)
}

func TestStore_FetchLifecycle(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()

	s.FetchStarted()
	assert.True(t, s.Loading())

	s.FetchCompleted()
	assert.False(t, s.Loading())
	assert.NoError(t, s.FetchError())

	s.FetchStarted()
	s.FetchFailed(lumenerr.ErrNodeUnreachable)
	assert.False(t, s.Loading())
	require.Error(t, s.FetchError())
	assert.ErrorIs(t, s.FetchError(), lumenerr.ErrNodeUnreachable)

	// A later failure replaces the stored error.
	s.FetchStarted()
	s.FetchFailed(lumenerr.ErrNetworkError)
	assert.ErrorIs(t, s.FetchError(), lumenerr.ErrNetworkError)
}

func TestStore_ErrorDialog(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()

	_, open := s.ErrorDialog()
	assert.False(t, open)

	s.OpenErrorDialog("connection refused")
	details, open := s.ErrorDialog()
	assert.True(t, open)
	assert.Equal(t, "connection refused", details)

	s.CloseErrorDialog()
	details, open = s.ErrorDialog()
	assert.False(t, open)
	assert.Empty(t, details)
}

func TestStore_HasNextPage(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	assert.True(t, s.HasNextPage())

	s.SetHasNextPage(false)
	assert.False(t, s.HasNextPage())
}

func TestStore_SaveFailureNotice(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	s.ToggleFilter(activity.CategorySent)
	assert.Empty(t, s.Notice())

	s.NotifySaveFailure(lumenerr.ErrPermission)
	assert.Contains(t, s.Notice(), "Unable to save invoice")

	// The notice leaves filter state untouched.
	assert.True(t, s.Filter().Enabled(activity.CategorySent))
	assert.False(t, s.Filter().IsAll())

	s.ClearNotice()
	assert.Empty(t, s.Notice())
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()

	s := activity.NewStore()
	s.ToggleFilter(activity.CategoryExpired)
	s.SetSearchText("rent")
	s.OpenModal(activity.KindPayment, "p1")
	s.FetchStarted()
	s.FetchFailed(lumenerr.ErrNetworkError)
	s.SetHasNextPage(false)
	s.OpenErrorDialog("boom")
	s.NotifySaveFailure(lumenerr.ErrPermission)

	s.Reset()

	assert.True(t, s.Filter().IsAll())
	assert.Empty(t, s.SearchText())
	assert.False(t, s.Loading())
	assert.True(t, s.HasNextPage())
	assert.NoError(t, s.FetchError())
	assert.Empty(t, s.Notice())

	_, _, open := s.Modal()
	assert.False(t, open)
	_, open = s.ErrorDialog()
	assert.False(t, open)
}
