package activity

import (
	"math"
	"sort"
)

// secondsPerDay is the day-boundary window used when inserting separators.
const secondsPerDay = 86400

// Entry is one row of the grouped activity feed: either a date separator
// (Title set, Item nil) or an activity item.
type Entry struct {
	Title string `json:"title,omitempty"`
	Item  *Item  `json:"item,omitempty"`
}

// IsSeparator reports whether the entry is a date separator row.
func (e Entry) IsSeparator() bool {
	return e.Item == nil
}

// Group sorts items newest-first and inserts a date separator before the
// first item and wherever the gap to the previous item rounds to a day or
// more. Each separator carries the date of the item that follows it. Items
// with equal timestamps keep their input order.
func Group(items []Item) []Entry {
	if len(items) == 0 {
		return []Entry{}
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	entries := make([]Entry, 0, len(sorted)+1)
	for i := range sorted {
		if i == 0 || dayGap(sorted[i-1].Timestamp, sorted[i].Timestamp) >= 1 {
			entries = append(entries, Entry{Title: sorted[i].Date})
		}
		entries = append(entries, Entry{Item: &sorted[i]})
	}
	return entries
}

// dayGap returns the number of whole days between two timestamps, rounded
// to the nearest day. Items sorted newest-first give a non-negative gap.
func dayGap(prev, cur int64) int {
	return int(math.Round(float64(prev-cur) / secondsPerDay))
}
