package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	grants   []int64
	calls    int
	lastWant int64
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, rate float64, capacity float64, cost float64) (bool, error) {
	return true, nil
}

func (f *fakeLimiter) Grant(ctx context.Context, key string, rate float64, capacity float64, want int64) (int64, error) {
	f.lastWant = want
	if f.calls >= len(f.grants) {
		f.calls++
		return 0, nil
	}
	granted := f.grants[f.calls]
	f.calls++
	if granted > want {
		granted = want
	}
	return granted, nil
}

func TestNewPacerTickClamp(t *testing.T) {
	// steady rate lands on bps / 50
	p := NewPacer(&fakeLimiter{}, "rl:1:upload", 256000)
	assert.Equal(t, int64(5120), p.tick)
	assert.Equal(t, float64(512000), p.capacity)

	// slow rate floors at the minimum slice
	p = NewPacer(&fakeLimiter{}, "rl:1:upload", 10000)
	assert.Equal(t, int64(1024), p.tick)

	// fast rate ceils at the maximum slice
	p = NewPacer(&fakeLimiter{}, "rl:1:upload", 100_000_000)
	assert.Equal(t, int64(64*1024), p.tick)

	// the tick never exceeds bucket capacity
	p = NewPacer(&fakeLimiter{}, "rl:1:upload", 100)
	assert.Equal(t, int64(200), p.tick)
	assert.Equal(t, float64(200), p.capacity)

	// degenerate budget still yields a usable pacer
	p = NewPacer(&fakeLimiter{}, "rl:1:upload", 0)
	assert.Equal(t, float64(1), p.capacity)
	assert.Equal(t, int64(1), p.tick)
}

func TestRationClampsWantToTick(t *testing.T) {
	limiter := &fakeLimiter{grants: []int64{1 << 30}}
	p := NewPacer(limiter, "rl:1:upload", 256000)

	granted, err := p.Ration(context.Background(), 1<<20)
	assert.NoError(t, err)
	assert.Equal(t, p.tick, limiter.lastWant)
	assert.Equal(t, p.tick, granted)
}

func TestRationRetriesOnEmptyBucket(t *testing.T) {
	limiter := &fakeLimiter{grants: []int64{0, 0, 512}}
	p := NewPacer(limiter, "rl:1:upload", 256000)

	start := time.Now()
	granted, err := p.Ration(context.Background(), 512)
	assert.NoError(t, err)
	assert.Equal(t, int64(512), granted)
	assert.Equal(t, 3, limiter.calls)
	// two empty rounds, two backoff delays
	assert.GreaterOrEqual(t, time.Since(start), 2*retryDelay)
}

func TestRationHonorsCancellation(t *testing.T) {
	// bucket that never grants
	limiter := &fakeLimiter{}
	p := NewPacer(limiter, "rl:1:upload", 256000)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Ration(ctx, 512)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestSkipsTickClamp(t *testing.T) {
	limiter := &fakeLimiter{grants: []int64{16 * 1024}}
	p := NewPacer(limiter, "rl:1:download", 256000)

	granted, err := p.Request(context.Background(), 16*1024)
	assert.NoError(t, err)
	assert.Equal(t, int64(16*1024), granted)
	assert.Equal(t, int64(16*1024), limiter.lastWant)

	// a dry bucket yields zero without retrying
	granted, err = p.Request(context.Background(), 16*1024)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), granted)
	assert.Equal(t, 2, limiter.calls)
}
