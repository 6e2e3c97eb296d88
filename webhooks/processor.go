package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/core"
)

const metricsPrefix = "payzcore.webhooks"

// Delivery is one inbound webhook request as received by the host.
type Delivery struct {
	Body    []byte
	Headers http.Header
}

// Result tells the host how to answer the webhook request.
type Result struct {
	Accepted   bool
	StatusCode int
	Payload    Payload
	Metadata   map[string]any
}

type Handler interface {
	Handle(ctx context.Context, payload Payload) error
}

type HandlerFunc func(ctx context.Context, payload Payload) error

func (f HandlerFunc) Handle(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}

type RetryPolicy interface {
	NextDelay(attempt int) time.Duration
}

type ExponentialRetryPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

func (p ExponentialRetryPolicy) NextDelay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = 30 * time.Second
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

// Processor verifies, deduplicates and dispatches webhook deliveries.
type Processor struct {
	Secret      string
	Tolerance   time.Duration
	Ledger      DeliveryLedger
	Handler     Handler
	RetryPolicy RetryPolicy
	ClaimLease  time.Duration
	MaxAttempts int
	Now         func() time.Time
	Logger      core.Logger
	Metrics     core.MetricsRecorder
}

func NewProcessor(secret string, ledger DeliveryLedger, handler Handler) *Processor {
	return &Processor{
		Secret:      secret,
		Tolerance:   DefaultTolerance,
		Ledger:      ledger,
		Handler:     handler,
		RetryPolicy: ExponentialRetryPolicy{},
		ClaimLease:  DefaultClaimLease,
		MaxAttempts: DefaultMaxAttempts,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (p *Processor) Process(ctx context.Context, delivery Delivery) (result Result, err error) {
	if p == nil || p.Handler == nil || p.Ledger == nil {
		return Result{}, fmt.Errorf("webhooks: processor requires handler and ledger")
	}
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if result.StatusCode != 0 {
			fields["status_code"] = result.StatusCode
		}
		if apiErr, ok := core.AsAPIError(err); ok {
			fields["error_kind"] = string(apiErr.Kind)
		}
		p.observer().ObserveOperation(ctx, startedAt, "process", err, fields)
	}()

	signature := strings.TrimSpace(delivery.Headers.Get(HeaderSignature))
	timestamp := strings.TrimSpace(delivery.Headers.Get(HeaderTimestamp))
	verifier := Verifier{Secret: p.Secret, Tolerance: p.Tolerance, Now: p.Now}
	payload, err := verifier.ConstructEvent(string(delivery.Body), signature, timestamp, &Parser{Logger: p.Logger})
	if err != nil {
		return Result{
			Accepted:   false,
			StatusCode: http.StatusUnauthorized,
			Metadata:   map[string]any{"rejected": true},
		}, err
	}
	fields["event"] = string(payload.Event)
	fields["payment_id"] = payload.PaymentID

	deliveryID := payload.DeliveryID()
	if deliveryID == "" {
		return Result{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
			Payload:    payload,
			Metadata:   map[string]any{"rejected": true},
		}, core.NewValidationError("webhook payload needs payment_id and timestamp", []core.ErrorDetail{{
			Code:    "required",
			Path:    []any{"payment_id", "timestamp"},
			Message: "delivery id cannot be derived",
		}})
	}
	record, claimed, err := p.Ledger.Claim(ctx, payload, delivery.Body, p.claimLease())
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		return Result{
			Accepted:   true,
			StatusCode: http.StatusOK,
			Payload:    payload,
			Metadata: map[string]any{
				"delivery_id": deliveryID,
				"status":      record.Status,
				"deduped":     true,
			},
		}, nil
	}

	if handleErr := p.Handler.Handle(ctx, payload); handleErr != nil {
		nextAttemptAt := p.now().Add(p.retryPolicy().NextDelay(record.Attempts))
		if failErr := p.Ledger.Fail(ctx, record.ClaimID, handleErr, nextAttemptAt, p.maxAttempts()); failErr != nil {
			p.observer().Log(ctx, "warn", "webhook delivery failure not recorded", map[string]any{
				"delivery_id": deliveryID,
				"error":       failErr.Error(),
			})
		}
		return Result{
			Accepted:   false,
			StatusCode: http.StatusInternalServerError,
			Payload:    payload,
			Metadata: map[string]any{
				"delivery_id": deliveryID,
				"attempts":    record.Attempts,
			},
		}, handleErr
	}

	if err := p.Ledger.Complete(ctx, record.ClaimID); err != nil {
		return Result{}, err
	}
	return Result{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Payload:    payload,
		Metadata: map[string]any{
			"delivery_id": deliveryID,
			"attempts":    record.Attempts,
		},
	}, nil
}

func (p *Processor) observer() core.Observer {
	return core.Observer{Logger: p.Logger, Metrics: p.Metrics, Prefix: metricsPrefix}
}

func (p *Processor) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Processor) retryPolicy() RetryPolicy {
	if p != nil && p.RetryPolicy != nil {
		return p.RetryPolicy
	}
	return ExponentialRetryPolicy{}
}

func (p *Processor) claimLease() time.Duration {
	if p != nil && p.ClaimLease > 0 {
		return p.ClaimLease
	}
	return DefaultClaimLease
}

func (p *Processor) maxAttempts() int {
	if p != nil && p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return DefaultMaxAttempts
}
