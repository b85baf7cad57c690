package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"navbuddy/api/internal/apperr"
)

const DefaultTimeout = 30 * time.Second

// Call runs fn exactly once, bounded by d, and reports any failure as an
// upstream error of service.
func Call[T any](ctx context.Context, service string, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		d = DefaultTimeout
	}
	t := timeout.New[T](timeout.Config{
		DefaultTimeout: d,
	})
	res, err := t.Execute(ctx, d, func(ctx context.Context) (T, error) {
		res, err := fn(ctx)
		return res, apperr.Upstream(service, err)
	})
	if err != nil {
		var zero T
		var ue *apperr.UpstreamError
		if errors.As(err, &ue) {
			return zero, ue
		}
		return zero, apperr.Upstream(service, err)
	}
	return res, nil
}
