package jackpot

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// Pull is Allocate behind a bounded retry loop: exponential backoff with
// jitter between attempts, up to Retries extra attempts beyond the first.
// Allocate legitimately fails under transient pressure (ErrPoolFull, a
// flaky factory) and most callers want eventual success rather than an
// immediate error. Attempts are strictly sequential; the last error is
// returned once the budget runs out.
func (p *Pool) Pull(ctx context.Context) (Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.RetryMinDelay
	bo.MaxInterval = p.RetryMaxDelay
	bo.Multiplier = p.RetryFactor
	bo.RandomizationFactor = p.RetryJitter
	bo.MaxElapsedTime = 0

	var conn Conn
	attempt := func() error {
		c, err := p.Allocate(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.Retries)), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return conn, nil
}
