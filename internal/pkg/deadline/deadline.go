// Package deadline bounds individual storage calls.
package deadline

import (
	"context"
	"time"
)

// Bound returns ctx limited to d. A non-positive d leaves ctx unbounded.
func Bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
