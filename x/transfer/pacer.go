package transfer

import (
	"context"
	"time"

	"github.com/priorstream/chat/x/limiter"
)

const (
	// pacing granularity: ~50 grants per second, each bounded so a tick is
	// neither too coarse to hit the target rate nor too fine to be worth
	// the round trip
	tickHz       = 50
	minTickBytes = 1024
	maxTickBytes = 64 * 1024

	// yield to the scheduler when the bucket is empty, then retry
	retryDelay = 5 * time.Millisecond
)

// Pacer requests tick-sized grants from the admission engine. Transfer
// speed becomes an emergent property of the admission rate rather than of
// the underlying I/O speed; an empty bucket delays, it never aborts.
type Pacer struct {
	limiter  limiter.Service
	key      string
	rate     float64
	capacity float64
	tick     int64
}

// NewPacer builds a pacer for a byte budget of bps. Capacity is a
// two-second burst buffer.
func NewPacer(svc limiter.Service, key string, bps int64) *Pacer {
	capacity := bps * 2
	if capacity < 1 {
		capacity = 1
	}

	tick := bps / tickHz
	if tick < minTickBytes {
		tick = minTickBytes
	}
	if tick > maxTickBytes {
		tick = maxTickBytes
	}
	if tick > capacity {
		tick = capacity
	}

	return &Pacer{
		limiter:  svc,
		key:      key,
		rate:     float64(bps),
		capacity: float64(capacity),
		tick:     tick,
	}
}

// Ration blocks until at least one byte of the requested amount is granted,
// backing off a fixed short delay whenever the bucket is empty. The grant
// never exceeds one tick.
func (p *Pacer) Ration(ctx context.Context, want int64) (int64, error) {
	if want > p.tick {
		want = p.tick
	}

	for {
		granted, err := p.limiter.Grant(ctx, p.key, p.rate, p.capacity, want)
		if err != nil {
			return 0, err
		}
		if granted > 0 {
			return granted, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// Request takes a single grant of up to want bytes without the tick clamp
// and without retrying. Used to prime a download's first slice.
func (p *Pacer) Request(ctx context.Context, want int64) (int64, error) {
	return p.limiter.Grant(ctx, p.key, p.rate, p.capacity, want)
}
