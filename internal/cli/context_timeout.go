package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// contextWithTimeout derives a deadline context for a command's node and
// provider calls. Cobra only carries a context when the caller supplied
// one, so direct invocations (tests call RunE functions without Execute)
// fall back to Background.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx := cmd.Context(); ctx != nil {
		return context.WithTimeout(ctx, d)
	}
	return context.WithTimeout(context.Background(), d)
}
