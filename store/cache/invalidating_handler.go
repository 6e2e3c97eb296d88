package cachestore

import (
	"context"
	"fmt"

	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/webhooks"
)

type Invalidator interface {
	Invalidate(ctx context.Context, paymentID string) error
}

// InvalidatingHandler evicts the cached payment named by a webhook before
// handing the event to Next. Eviction failures are logged, not returned.
type InvalidatingHandler struct {
	Invalidator Invalidator
	Next        webhooks.Handler
	Logger      core.Logger
}

func NewInvalidatingHandler(invalidator Invalidator, next webhooks.Handler) *InvalidatingHandler {
	return &InvalidatingHandler{Invalidator: invalidator, Next: next}
}

func (h *InvalidatingHandler) Handle(ctx context.Context, payload webhooks.Payload) error {
	if h == nil || h.Invalidator == nil {
		return fmt.Errorf("cachestore: invalidating handler requires an invalidator")
	}
	if err := h.Invalidator.Invalidate(ctx, payload.PaymentID); err != nil {
		observer := core.Observer{Logger: h.Logger, Prefix: "payzcore.cache"}
		observer.Log(ctx, "warn", "payment cache invalidation failed", map[string]any{
			"payment_id": payload.PaymentID,
			"event":      string(payload.Event),
			"error":      err.Error(),
		})
	}
	if h.Next == nil {
		return nil
	}
	return h.Next.Handle(ctx, payload)
}

var _ webhooks.Handler = (*InvalidatingHandler)(nil)
