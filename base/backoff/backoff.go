package backoff

import (
	"context"
	"math"
	"time"
)

type Strategy interface {
	NextDuration(count int, start time.Duration, last time.Duration) time.Duration
}

// Backoff tracks a growing sleep interval between retries of one operation.
// Not safe for concurrent use, one Backoff per retry loop.
type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	count        int
	strategy     Strategy
}

func NewBackoff(strategy Strategy, start time.Duration, limit time.Duration) *Backoff {
	b := Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return &b
}

func NewExponentialBackoff(start time.Duration, limit time.Duration) *Backoff {
	return NewBackoff(exponential{}, start, limit)
}

func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.nextDuration()
}

// Backoff sleeps for the current interval or returns early when ctx is done.
func (b *Backoff) Backoff(ctx context.Context) error {
	sleepCtx, cancelSleep := context.WithTimeout(ctx, b.NextDuration)
	<-sleepCtx.Done()
	cancelSleep()
	if sleepCtx.Err() == context.DeadlineExceeded {
		b.count++
		b.LastDuration = b.NextDuration
		b.NextDuration = b.nextDuration()
		return nil
	}
	return sleepCtx.Err()
}

func (b *Backoff) nextDuration() time.Duration {
	next := b.strategy.NextDuration(b.count, b.start, b.LastDuration)
	if b.limit > 0 && next > b.limit {
		next = b.limit
	}
	return next
}

type exponential struct{}

func (exponential) NextDuration(count int, start time.Duration, last time.Duration) time.Duration {
	period := int64(math.Pow(2, float64(count)))
	return time.Duration(period) * start
}

type constant struct{}

func NewConstantBackoff(interval time.Duration) *Backoff {
	return NewBackoff(constant{}, interval, interval)
}

func (constant) NextDuration(count int, start time.Duration, last time.Duration) time.Duration {
	return start
}
