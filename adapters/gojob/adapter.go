package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/webhooks"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const JobIDWebhookEvent = webhooks.JobIDWebhookEvent

// NackPolicy bounds redelivery of payzcore jobs.
type NackPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// Apply clamps opts for attempt. From MaxAttempts on a job is never
// requeued, and a nack that neither requeues nor dead-letters requeues.
func (p NackPolicy) Apply(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	out.Delay = max(out.Delay, 0)
	if p.MaxDelay > 0 {
		out.Delay = min(out.Delay, p.MaxDelay)
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		out.DeadLetter = out.DeadLetter || p.DeadLetterOnMax
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

func ToJobMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func FromJobMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

// Enqueuer publishes payzcore jobs on a go-job queue.
type Enqueuer struct {
	queue queue.Enqueuer
}

func NewEnqueuer(q queue.Enqueuer) *Enqueuer {
	return &Enqueuer{queue: q}
}

func (e *Enqueuer) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if e == nil || e.queue == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	return e.queue.Enqueue(ctx, ToJobMessage(msg))
}

// Delivery wraps a go-job delivery and applies the NackPolicy on Nack.
type Delivery struct {
	delivery queue.Delivery
	policy   NackPolicy
}

func (d *Delivery) Message() *core.JobExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return FromJobMessage(d.delivery.Message())
}

func (d *Delivery) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *Delivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.NackAttempt(ctx, opts, 0)
}

func (d *Delivery) NackAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	applied := d.policy.Apply(opts, attempt)
	return d.delivery.Nack(ctx, queue.NackOptions{
		Delay:      applied.Delay,
		Requeue:    applied.Requeue,
		DeadLetter: applied.DeadLetter,
		Reason:     applied.Reason,
	})
}

// Dequeuer pulls payzcore jobs from a go-job queue. An empty queue yields a
// nil delivery.
type Dequeuer struct {
	queue  queue.Dequeuer
	policy NackPolicy
}

func NewDequeuer(q queue.Dequeuer, policy NackPolicy) *Dequeuer {
	return &Dequeuer{queue: q, policy: policy}
}

func (d *Dequeuer) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if d == nil || d.queue == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := d.queue.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, nil
	}
	return &Delivery{delivery: delivery, policy: d.policy}, nil
}

// NewWebhookQueueHandler returns a webhooks.Handler that publishes verified
// events as payzcore.webhook.event jobs.
func NewWebhookQueueHandler(q queue.Enqueuer) *webhooks.QueueHandler {
	return webhooks.NewQueueHandler(NewEnqueuer(q))
}

// NewWebhookWorker drains payzcore.webhook.event jobs into handler.
func NewWebhookWorker(
	q queue.Dequeuer,
	handler webhooks.Handler,
	policy NackPolicy,
	logger core.Logger,
	metrics core.MetricsRecorder,
) *webhooks.EventWorker {
	return &webhooks.EventWorker{
		Dequeuer: NewDequeuer(q, policy),
		Handler:  handler,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// WorkerHook forwards go-job worker events to a core.JobWorkerHook.
type WorkerHook struct {
	hook core.JobWorkerHook
}

func NewWorkerHook(hook core.JobWorkerHook) *WorkerHook {
	return &WorkerHook{hook: hook}
}

func (w *WorkerHook) OnStart(ctx context.Context, event worker.Event) {
	if w != nil && w.hook != nil {
		w.hook.OnStart(ctx, toWorkerEvent(event))
	}
}

func (w *WorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	if w != nil && w.hook != nil {
		w.hook.OnSuccess(ctx, toWorkerEvent(event))
	}
}

func (w *WorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	if w != nil && w.hook != nil {
		w.hook.OnFailure(ctx, toWorkerEvent(event))
	}
}

func (w *WorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	if w != nil && w.hook != nil {
		w.hook.OnRetry(ctx, toWorkerEvent(event))
	}
}

func toWorkerEvent(event worker.Event) core.JobWorkerEvent {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromJobMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func cloneParameters(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	return maps.Clone(in)
}

// ObserverHook reports worker lifecycle events through a core.Observer.
type ObserverHook struct {
	Observer core.Observer
}

func NewObserverHook(logger core.Logger, metrics core.MetricsRecorder) *ObserverHook {
	return &ObserverHook{Observer: core.Observer{Logger: logger, Metrics: metrics, Prefix: "payzcore.jobs"}}
}

func (h *ObserverHook) OnStart(ctx context.Context, event core.JobWorkerEvent) {
	h.Observer.Log(ctx, "debug", "job started", workerEventFields(event))
}

func (h *ObserverHook) OnSuccess(ctx context.Context, event core.JobWorkerEvent) {
	h.Observer.ObserveOperation(ctx, event.StartedAt, "job", nil, workerEventFields(event))
}

func (h *ObserverHook) OnFailure(ctx context.Context, event core.JobWorkerEvent) {
	h.Observer.ObserveOperation(ctx, event.StartedAt, "job", event.Err, workerEventFields(event))
}

func (h *ObserverHook) OnRetry(ctx context.Context, event core.JobWorkerEvent) {
	fields := workerEventFields(event)
	fields["delay_ms"] = event.Delay.Milliseconds()
	h.Observer.IncCounter(ctx, "job.retry", 1, map[string]string{"job_id": jobID(event)})
	h.Observer.Log(ctx, "warn", "job retry scheduled", fields)
}

func workerEventFields(event core.JobWorkerEvent) map[string]any {
	fields := map[string]any{
		"job_id":  jobID(event),
		"attempt": event.Attempt,
	}
	if event.Message != nil && event.Message.IdempotencyKey != "" {
		fields["idempotency_key"] = event.Message.IdempotencyKey
	}
	return fields
}

func jobID(event core.JobWorkerEvent) string {
	if event.Message == nil {
		return ""
	}
	return event.Message.JobID
}

var (
	_ core.JobEnqueuer   = (*Enqueuer)(nil)
	_ core.JobDelivery   = (*Delivery)(nil)
	_ core.JobDequeuer   = (*Dequeuer)(nil)
	_ worker.Hook        = (*WorkerHook)(nil)
	_ core.JobWorkerHook = (*ObserverHook)(nil)
)
