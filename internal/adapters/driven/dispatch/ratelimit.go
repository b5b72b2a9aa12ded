package dispatch

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
)

// Ensure RateLimitedDispatcher implements the interface.
var _ driven.MessageDispatcher = (*RateLimitedDispatcher)(nil)

// RateLimitedDispatcher throttles sends with a token bucket.
type RateLimitedDispatcher struct {
	next    driven.MessageDispatcher
	limiter *rate.Limiter
}

// NewRateLimitedDispatcher wraps next with a limit of perSecond sends and the
// given burst. A non-positive rate returns next unchanged.
func NewRateLimitedDispatcher(next driven.MessageDispatcher, perSecond float64, burst int) driven.MessageDispatcher {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedDispatcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Send waits for a token, then delegates.
func (d *RateLimitedDispatcher) Send(ctx context.Context, req domain.SendRequest) (*domain.SendResponse, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for send slot: %w", domain.ErrDispatchFailed, err)
	}
	return d.next.Send(ctx, req)
}
