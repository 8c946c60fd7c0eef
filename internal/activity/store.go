package activity

import "sync"

// Store holds the presentation state of the activity feed: the category
// filter, the search text, the open detail modal, fetch status, and
// dialog/notification payloads. All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	filter      Filter
	searchText  string
	modalKind   Kind
	modalID     string
	modalOpen   bool
	loading     bool
	hasNextPage bool
	fetchErr    error
	dialog      string
	dialogOpen  bool
	notice      string
}

// NewStore returns a store in its initial state: all categories visible,
// empty search, nothing loading, and a next page assumed available.
func NewStore() *Store {
	return &Store{hasNextPage: true}
}

// Filter returns the current category filter.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// ToggleFilter flips visibility of each given category.
func (s *Store) ToggleFilter(cats ...Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = s.filter.Toggle(cats...)
}

// AddFilter enables the given categories. No-op when the filter is All.
func (s *Store) AddFilter(cats ...Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = s.filter.Add(cats...)
}

// SetFilter replaces the category filter.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// SearchText returns the current search query.
func (s *Store) SearchText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchText
}

// SetSearchText updates the search query. An empty string clears it.
func (s *Store) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchText = text
}

// OpenModal records the identity of the item shown in the detail modal.
func (s *Store) OpenModal(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalKind = kind
	s.modalID = id
	s.modalOpen = true
}

// CloseModal clears the detail modal identity.
func (s *Store) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalKind = ""
	s.modalID = ""
	s.modalOpen = false
}

// Modal returns the detail modal item identity and whether a modal is open.
func (s *Store) Modal() (Kind, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modalKind, s.modalID, s.modalOpen
}

// FetchStarted marks a history fetch as in progress.
func (s *Store) FetchStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

// FetchCompleted marks the in-progress fetch as finished.
func (s *Store) FetchCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// FetchFailed marks the in-progress fetch as finished and records the
// error, replacing any previous one.
func (s *Store) FetchFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.fetchErr = err
}

// Loading reports whether a history fetch is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FetchError returns the most recent fetch error, or nil.
func (s *Store) FetchError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchErr
}

// SetHasNextPage records whether the node has more history to page through.
func (s *Store) SetHasNextPage(has bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasNextPage = has
}

// HasNextPage reports whether more history is available.
func (s *Store) HasNextPage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasNextPage
}

// OpenErrorDialog stores the payload shown in the error details dialog.
func (s *Store) OpenErrorDialog(details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = details
	s.dialogOpen = true
}

// CloseErrorDialog clears the error details dialog.
func (s *Store) CloseErrorDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = ""
	s.dialogOpen = false
}

// ErrorDialog returns the dialog payload and whether the dialog is open.
func (s *Store) ErrorDialog() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialog, s.dialogOpen
}

// NotifySaveFailure records a user-facing notification for a failed invoice
// artifact save. Feed and filter state are unaffected.
func (s *Store) NotifySaveFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = "Unable to save invoice: " + err.Error()
}

// Notice returns the pending user notification, or "" when there is none.
func (s *Store) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// ClearNotice discards the pending user notification.
func (s *Store) ClearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}

// Reset restores the store to its initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = AllFilter()
	s.searchText = ""
	s.modalKind = ""
	s.modalID = ""
	s.modalOpen = false
	s.loading = false
	s.hasNextPage = true
	s.fetchErr = nil
	s.dialog = ""
	s.dialogOpen = false
	s.notice = ""
}
