package ai

import (
	"context"
	"errors"
	"log"
	"time"
)

var modelLoadingRetryDelay = 2 * time.Second

// RetryOnModelLoading runs call and, if the provider reported a model still
// loading, retries exactly once after a fixed delay. All other errors
// surface immediately; retry policy beyond this lives with the caller.
func RetryOnModelLoading[T any](ctx context.Context, label string, call func(context.Context) (T, error)) (T, error) {
	out, err := call(ctx)
	if err == nil || !errors.Is(err, ErrModelLoading) {
		return out, err
	}

	log.Printf("%s: model loading, retrying once after %s", label, modelLoadingRetryDelay)
	select {
	case <-time.After(modelLoadingRetryDelay):
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	return call(ctx)
}
