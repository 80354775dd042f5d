package fetch

import (
	"math/rand/v2"
	"time"
)

// Backoff computes retry delays: Base doubled per failed attempt plus a
// uniform jitter in [0, JitterMax).
type Backoff struct {
	Base      time.Duration
	JitterMax time.Duration
	// Jitter returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	Jitter func() float64
}

// Delay returns the wait after the given failed attempt (1-based). It never
// returns less than prev, so a retry sequence is non-decreasing, and never
// less than Base·2^(attempt-1).
func (b Backoff) Delay(attempt int, prev time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	if b.JitterMax > 0 {
		jitter := b.Jitter
		if jitter == nil {
			jitter = rand.Float64
		}
		d += time.Duration(jitter() * float64(b.JitterMax))
	}
	if d < prev {
		d = prev
	}
	return d
}

// Delays returns the delays a request would wait through for n failed attempts.
func (b Backoff) Delays(n int) []time.Duration {
	out := make([]time.Duration, 0, n)
	var prev time.Duration
	for attempt := 1; attempt <= n; attempt++ {
		prev = b.Delay(attempt, prev)
		out = append(out, prev)
	}
	return out
}
