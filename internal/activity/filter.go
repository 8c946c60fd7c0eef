package activity

import "sort"

// Filter selects which activity categories are visible. It is either All
// (every category shown) or an explicit non-empty subset. The zero value is
// All. Filters are immutable: Toggle and Add return new values.
type Filter struct {
	subset map[Category]struct{}
}

// AllFilter returns the filter that shows every category.
func AllFilter() Filter {
	return Filter{}
}

// SubsetFilter returns a filter showing only the given categories.
// An empty subset collapses to All.
func SubsetFilter(cats ...Category) Filter {
	if len(cats) == 0 {
		return AllFilter()
	}
	subset := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		subset[c] = struct{}{}
	}
	return Filter{subset: subset}
}

// IsAll reports whether every category is shown.
func (f Filter) IsAll() bool {
	return len(f.subset) == 0
}

// Enabled reports whether the given category is visible under the filter.
func (f Filter) Enabled(c Category) bool {
	if f.IsAll() {
		return true
	}
	_, ok := f.subset[c]
	return ok
}

// Toggle flips membership of each given category: present categories are
// removed, absent ones added. Toggling a category on All narrows the filter
// to just that category; removing the last category restores All. Toggling
// the same categories twice returns the original filter.
func (f Filter) Toggle(cats ...Category) Filter {
	next := f.clone()
	for _, c := range cats {
		if _, ok := next[c]; ok {
			delete(next, c)
		} else {
			next[c] = struct{}{}
		}
	}
	if len(next) == 0 {
		return AllFilter()
	}
	return Filter{subset: next}
}

// Add enables the given categories. When the filter is All it stays All:
// every category is already visible.
func (f Filter) Add(cats ...Category) Filter {
	if f.IsAll() {
		return f
	}
	next := f.clone()
	for _, c := range cats {
		next[c] = struct{}{}
	}
	return Filter{subset: next}
}

// Equal reports whether two filters show the same categories.
func (f Filter) Equal(other Filter) bool {
	if len(f.subset) != len(other.subset) {
		return false
	}
	for c := range f.subset {
		if _, ok := other.subset[c]; !ok {
			return false
		}
	}
	return true
}

// Visible returns the visible categories in display order.
func (f Filter) Visible() []Category {
	if f.IsAll() {
		return Categories()
	}
	out := make([]Category, 0, len(f.subset))
	for c := range f.subset {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f Filter) clone() map[Category]struct{} {
	next := make(map[Category]struct{}, len(f.subset))
	for c := range f.subset {
		next[c] = struct{}{}
	}
	return next
}
