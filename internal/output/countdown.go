package output

import (
	"fmt"
	"time"
)

// Countdown renders the time remaining until expiry as a compact duration,
// like "2h 5m", "45m 10s", or "30s". Elapsed deadlines render as "expired".
func Countdown(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "expired"
	}

	remaining = remaining.Round(time.Second)
	hours := int(remaining / time.Hour)
	minutes := int(remaining % time.Hour / time.Minute)
	seconds := int(remaining % time.Minute / time.Second)

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
