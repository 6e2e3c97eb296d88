package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusProcessing = "processing"
	DeliveryStatusProcessed  = "processed"
	DeliveryStatusRetryReady = "retry_ready"
	DeliveryStatusDead       = "dead"
)

// ErrDeliveryNotFound is returned when a ledger has no record for a delivery.
var ErrDeliveryNotFound = errors.New("webhooks: delivery not found")

const (
	DefaultClaimLease  = 30 * time.Second
	DefaultMaxAttempts = 8
)

type DeliveryRecord struct {
	ID            string
	ClaimID       string
	DeliveryID    string
	PaymentID     string
	Event         string
	Status        string
	Attempts      int
	LastError     string
	NextAttemptAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeliveryLedger records webhook deliveries so each one is handled at most
// once per claim. Claim returns false for deliveries that are finished or
// held by a live claim.
type DeliveryLedger interface {
	Claim(ctx context.Context, payload Payload, body []byte, lease time.Duration) (DeliveryRecord, bool, error)
	Get(ctx context.Context, deliveryID string) (DeliveryRecord, error)
	Complete(ctx context.Context, claimID string) error
	Fail(ctx context.Context, claimID string, cause error, nextAttemptAt time.Time, maxAttempts int) error
}

// ClaimID joins a delivery id and the attempt that owns it.
func ClaimID(deliveryID string, attempt int) string {
	return strings.TrimSpace(deliveryID) + "#" + strconv.Itoa(attempt)
}

// ParseClaimID splits a claim id produced by ClaimID.
func ParseClaimID(claimID string) (string, int, error) {
	claimID = strings.TrimSpace(claimID)
	idx := strings.LastIndex(claimID, "#")
	if idx <= 0 || idx == len(claimID)-1 {
		return "", 0, fmt.Errorf("webhooks: invalid claim id")
	}
	attempt, err := strconv.Atoi(claimID[idx+1:])
	if err != nil || attempt <= 0 {
		return "", 0, fmt.Errorf("webhooks: invalid claim id")
	}
	return claimID[:idx], attempt, nil
}

type MemoryDeliveryLedger struct {
	mu      sync.Mutex
	records map[string]DeliveryRecord
	Now     func() time.Time
}

func NewMemoryDeliveryLedger() *MemoryDeliveryLedger {
	return &MemoryDeliveryLedger{
		records: map[string]DeliveryRecord{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (l *MemoryDeliveryLedger) Claim(
	_ context.Context,
	payload Payload,
	_ []byte,
	lease time.Duration,
) (DeliveryRecord, bool, error) {
	deliveryID := strings.TrimSpace(payload.DeliveryID())
	if deliveryID == "" {
		return DeliveryRecord{}, false, fmt.Errorf("webhooks: delivery id is required")
	}
	if lease <= 0 {
		lease = DefaultClaimLease
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.records == nil {
		l.records = map[string]DeliveryRecord{}
	}

	now := l.currentTime()
	record, ok := l.records[deliveryID]
	if !ok {
		record = DeliveryRecord{
			ID:         deliveryID,
			DeliveryID: deliveryID,
			PaymentID:  payload.PaymentID,
			Event:      string(payload.Event),
			Status:     DeliveryStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if !Claimable(record, now) {
		return record, false, nil
	}

	record.Status = DeliveryStatusProcessing
	record.Attempts++
	record.ClaimID = ClaimID(deliveryID, record.Attempts)
	leaseEnd := now.Add(lease)
	record.NextAttemptAt = &leaseEnd
	record.UpdatedAt = now
	l.records[deliveryID] = record
	return record, true, nil
}

func (l *MemoryDeliveryLedger) Get(_ context.Context, deliveryID string) (DeliveryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[strings.TrimSpace(deliveryID)]
	if !ok {
		return DeliveryRecord{}, ErrDeliveryNotFound
	}
	return cloneRecord(record), nil
}

func (l *MemoryDeliveryLedger) Complete(_ context.Context, claimID string) error {
	deliveryID, attempt, err := ParseClaimID(claimID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[deliveryID]
	if !ok {
		return ErrDeliveryNotFound
	}
	if record.Status != DeliveryStatusProcessing || record.Attempts != attempt {
		return nil
	}
	record.Status = DeliveryStatusProcessed
	record.NextAttemptAt = nil
	record.LastError = ""
	record.UpdatedAt = l.currentTime()
	l.records[deliveryID] = record
	return nil
}

func (l *MemoryDeliveryLedger) Fail(
	_ context.Context,
	claimID string,
	cause error,
	nextAttemptAt time.Time,
	maxAttempts int,
) error {
	deliveryID, attempt, err := ParseClaimID(claimID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[deliveryID]
	if !ok {
		return ErrDeliveryNotFound
	}
	if record.Status != DeliveryStatusProcessing || record.Attempts != attempt {
		return nil
	}
	now := l.currentTime()
	ApplyFailure(&record, cause, nextAttemptAt, maxAttempts, now)
	l.records[deliveryID] = record
	return nil
}

func (l *MemoryDeliveryLedger) Snapshot() []DeliveryRecord {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]DeliveryRecord, 0, len(l.records))
	for _, record := range l.records {
		out = append(out, cloneRecord(record))
	}
	return out
}

func (l *MemoryDeliveryLedger) currentTime() time.Time {
	if l != nil && l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// Claimable reports whether a record may be claimed at now. Processed and
// dead records never are; retry_ready and processing records wait for
// NextAttemptAt.
func Claimable(record DeliveryRecord, now time.Time) bool {
	switch record.Status {
	case DeliveryStatusProcessed, DeliveryStatusDead:
		return false
	case DeliveryStatusRetryReady, DeliveryStatusProcessing:
		if record.NextAttemptAt != nil && now.Before(record.NextAttemptAt.UTC()) {
			return false
		}
	}
	return true
}

// ApplyFailure moves a processing record to retry_ready, or to dead once
// maxAttempts is reached.
func ApplyFailure(record *DeliveryRecord, cause error, nextAttemptAt time.Time, maxAttempts int, now time.Time) {
	if record == nil {
		return
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if cause != nil {
		record.LastError = cause.Error()
	}
	if record.Attempts >= maxAttempts {
		record.Status = DeliveryStatusDead
		record.NextAttemptAt = nil
	} else {
		record.Status = DeliveryStatusRetryReady
		if nextAttemptAt.IsZero() {
			nextAttemptAt = now
		}
		next := nextAttemptAt.UTC()
		record.NextAttemptAt = &next
	}
	record.UpdatedAt = now
}

func cloneRecord(record DeliveryRecord) DeliveryRecord {
	cloned := record
	if record.NextAttemptAt != nil {
		next := *record.NextAttemptAt
		cloned.NextAttemptAt = &next
	}
	return cloned
}

var _ DeliveryLedger = (*MemoryDeliveryLedger)(nil)
