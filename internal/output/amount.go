package output

import "strconv"

// FormatSats renders a satoshi amount with thousands separators and an
// explicit sign for outgoing amounts, like "-1,002 sat" or "21,000 sat".
func FormatSats(amount int64) string {
	sign := ""
	value := amount
	if value < 0 {
		sign = "-"
		value = -value
	}
	return sign + groupDigits(strconv.FormatInt(value, 10)) + " sat"
}

// groupDigits inserts a comma every three digits from the right.
func groupDigits(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	groups := (n - 1) / 3
	out := make([]byte, 0, n+groups)
	lead := n - groups*3
	out = append(out, s[:lead]...)
	for i := lead; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
