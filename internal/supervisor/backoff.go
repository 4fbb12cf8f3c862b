package supervisor

import "time"

// backoff is capped exponential reconnect delay. Not safe for concurrent
// use; the supervisor owns one per run loop.
type backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func newBackoff(base, max time.Duration) *backoff {
	return &backoff{base: base, max: max, cur: base}
}

// next returns the current delay and doubles it for the following call,
// capped at max.
func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return d
}

// reset restores the base delay after a successful connection.
func (b *backoff) reset() {
	b.cur = b.base
}
