package render

import (
	"context"
	"time"
)

// Loop calls frame once per period with the current song time until frame
// returns false or ctx is done. clock reads the song time.
func Loop(ctx context.Context, period time.Duration, clock func() time.Duration, frame func(now time.Duration) bool) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		deadline := time.Now().Add(period)
		if !frame(clock()) {
			return nil
		}

		timer.Reset(time.Until(deadline))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
