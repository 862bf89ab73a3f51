package clock

import (
	"context"
	"time"
)

type key string

var simulatedTimeKey key = "simulated_time"

// WithSimulatedTime returns a new context carrying a frozen time. Every
// SystemClock.Now call with this context returns t instead of wall time.
func WithSimulatedTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, simulatedTimeKey, t)
}

// SimulatedTimeFromContext returns the simulated time from the context, if present.
func SimulatedTimeFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(simulatedTimeKey).(time.Time)
	return t, ok
}
