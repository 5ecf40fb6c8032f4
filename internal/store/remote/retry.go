package remote

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultLinkAttempts = 3
	defaultLinkDelay    = 500 * time.Millisecond
)

// RetryPolicy bounds retries for writes whose success depends on a foreign
// row's prior commit, such as the season-match link racing the match insert.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = defaultLinkAttempts
	}
	if p.Delay <= 0 {
		p.Delay = defaultLinkDelay
	}
	return p
}

// run executes op up to Attempts times with a fixed delay between attempts,
// honoring context cancellation between tries.
func (p RetryPolicy) run(ctx context.Context, op func() error) error {
	p = p.normalized()
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(p.Attempts-1))
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
