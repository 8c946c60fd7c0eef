package activity

import "strings"

// Search returns the items whose searchable fields contain the query.
// Matching is a case-insensitive substring test over the item's date, kind,
// memo, hashes, preimage, payment request, and destination node identity.
// Destination addresses are matched case-sensitively, as typed.
// An empty query returns the input unchanged.
func Search(items []Item, query string) []Item {
	if query == "" {
		return items
	}

	lowered := strings.ToLower(query)
	out := make([]Item, 0, len(items))
	for i := range items {
		if matches(&items[i], lowered, query) {
			out = append(out, items[i])
		}
	}
	return out
}

func matches(it *Item, lowered, raw string) bool {
	for _, field := range searchFields(it) {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	for _, addr := range it.DestAddresses {
		if strings.Contains(addr, raw) {
			return true
		}
	}
	return false
}

// searchFields lists the case-insensitively searched fields of an item.
// Fields empty for the item's kind never match.
func searchFields(it *Item) []string {
	return []string{
		it.Date,
		string(it.Kind),
		it.Memo,
		it.TxHash,
		it.PaymentHash,
		it.PaymentPreimage,
		it.PaymentRequest,
		it.DestNodePubkey,
		it.DestNodeAlias,
	}
}
