package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	req := require.New(t)
	b := NewExponentialBackoff(time.Millisecond, 8*time.Millisecond)
	req.Equal(time.Millisecond, b.NextDuration)

	ctx := context.Background()
	durations := []time.Duration{}
	for i := 0; i < 5; i++ {
		durations = append(durations, b.NextDuration)
		req.NoError(b.Backoff(ctx))
	}
	req.Equal([]time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		8 * time.Millisecond,
		8 * time.Millisecond, // capped by limit
	}, durations)

	b.Reset()
	req.Equal(time.Millisecond, b.NextDuration)
}

func TestBackoffCancelled(t *testing.T) {
	req := require.New(t)
	b := NewConstantBackoff(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.Error(b.Backoff(ctx))
}
