package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/core"
)

const (
	JobIDWebhookEvent = "payzcore.webhook.event"

	jobParamPayload    = "payload"
	jobParamDeliveryID = "delivery_id"
	jobParamEvent      = "event"
	jobParamPaymentID  = "payment_id"
)

// QueueHandler hands verified events to a job queue instead of handling them
// inline. The delivery id doubles as the job idempotency key.
type QueueHandler struct {
	Enqueuer core.JobEnqueuer
}

func NewQueueHandler(enqueuer core.JobEnqueuer) *QueueHandler {
	return &QueueHandler{Enqueuer: enqueuer}
}

func (h *QueueHandler) Handle(ctx context.Context, payload Payload) error {
	if h == nil || h.Enqueuer == nil {
		return fmt.Errorf("webhooks: queue handler requires an enqueuer")
	}
	msg, err := EventJob(payload)
	if err != nil {
		return err
	}
	return h.Enqueuer.Enqueue(ctx, msg)
}

// EventJob encodes payload as a webhook event job message.
func EventJob(payload Payload) (*core.JobExecutionMessage, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhooks: encode event job: %w", err)
	}
	deliveryID := payload.DeliveryID()
	return &core.JobExecutionMessage{
		JobID: JobIDWebhookEvent,
		Parameters: map[string]any{
			jobParamPayload:    string(encoded),
			jobParamDeliveryID: deliveryID,
			jobParamEvent:      string(payload.Event),
			jobParamPaymentID:  payload.PaymentID,
		},
		IdempotencyKey: deliveryID,
		DedupPolicy:    "drop",
	}, nil
}

// DecodeEventJob restores the payload carried by a webhook event job.
func DecodeEventJob(msg *core.JobExecutionMessage) (Payload, error) {
	if msg == nil {
		return Payload{}, fmt.Errorf("webhooks: job message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDWebhookEvent {
		return Payload{}, fmt.Errorf("webhooks: unexpected job id %q", msg.JobID)
	}
	var raw []byte
	switch typed := msg.Parameters[jobParamPayload].(type) {
	case string:
		raw = []byte(typed)
	case []byte:
		raw = typed
	case json.RawMessage:
		raw = typed
	default:
		return Payload{}, fmt.Errorf("webhooks: job payload is missing")
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Payload{}, fmt.Errorf("webhooks: decode event job: %w", err)
	}
	return payload, nil
}

// EventWorker drains webhook event jobs into a Handler.
type EventWorker struct {
	Dequeuer    core.JobDequeuer
	Handler     Handler
	RetryPolicy RetryPolicy
	Logger      core.Logger
	Metrics     core.MetricsRecorder
}

// RunOnce handles a single job. It returns false when the queue had nothing
// to deliver.
func (w *EventWorker) RunOnce(ctx context.Context) (bool, error) {
	if w == nil || w.Dequeuer == nil || w.Handler == nil {
		return false, fmt.Errorf("webhooks: event worker requires dequeuer and handler")
	}
	delivery, err := w.Dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}

	startedAt := time.Now()
	observer := core.Observer{Logger: w.Logger, Metrics: w.Metrics, Prefix: metricsPrefix}
	payload, err := DecodeEventJob(delivery.Message())
	if err != nil {
		observer.ObserveOperation(ctx, startedAt, "job", err, nil)
		return true, delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: err.Error()})
	}

	fields := map[string]any{"event": string(payload.Event), "payment_id": payload.PaymentID}
	if handleErr := w.Handler.Handle(ctx, payload); handleErr != nil {
		observer.ObserveOperation(ctx, startedAt, "job", handleErr, fields)
		policy := w.RetryPolicy
		if policy == nil {
			policy = ExponentialRetryPolicy{}
		}
		return true, delivery.Nack(ctx, core.JobNackOptions{
			Delay:   policy.NextDelay(1),
			Requeue: true,
			Reason:  handleErr.Error(),
		})
	}
	observer.ObserveOperation(ctx, startedAt, "job", nil, fields)
	return true, delivery.Ack(ctx)
}
