package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

// WithTimeout runs fn under a deadline; see Timed.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	_, err := Timed(ctx, timeout, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Timed runs fn with a context cancelled after timeout and returns its
// result. A missed deadline yields an error matching both
// apperrors.ErrTimeout and context.DeadlineExceeded; fn keeps running in the
// background until it notices the cancelled context. A timeout <= 0 calls fn
// directly.
func Timed[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(tctx)
		done <- result{v, err}
	}()

	var zero T
	select {
	case res := <-done:
		return res.v, res.err
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s: %w", name, err)
		}
		return zero, fmt.Errorf("%s: no result after %v: %w", name, timeout,
			errors.Join(apperrors.ErrTimeout, context.DeadlineExceeded))
	}
}
