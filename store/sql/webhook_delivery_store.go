package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/webhooks"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WebhookDeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookDeliveryRecord]
	Now  func() time.Time
}

func NewWebhookDeliveryStore(db *bun.DB) (*WebhookDeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookDeliveryRecord](db, webhookDeliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook delivery repository wiring: %w", err)
		}
	}
	return &WebhookDeliveryStore{
		db:   db,
		repo: repo,
	}, nil
}

// Claim inserts the delivery as processing on first sight. Later claims
// take over the row with a compare-and-set on status and attempts, so two
// workers racing on the same delivery cannot both win.
func (s *WebhookDeliveryStore) Claim(
	ctx context.Context,
	payload webhooks.Payload,
	body []byte,
	lease time.Duration,
) (webhooks.DeliveryRecord, bool, error) {
	if s == nil || s.db == nil {
		return webhooks.DeliveryRecord{}, false, fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	deliveryID := strings.TrimSpace(payload.DeliveryID())
	if deliveryID == "" {
		return webhooks.DeliveryRecord{}, false, fmt.Errorf("sqlstore: delivery id is required")
	}
	if lease <= 0 {
		lease = webhooks.DefaultClaimLease
	}

	now := s.currentTime()
	leaseEnd := now.Add(lease)
	record := &webhookDeliveryRecord{
		ID:            uuid.NewString(),
		DeliveryID:    deliveryID,
		PaymentID:     strings.TrimSpace(payload.PaymentID),
		Event:         string(payload.Event),
		Status:        webhooks.DeliveryStatusProcessing,
		Attempts:      1,
		NextAttemptAt: &leaseEnd,
		Payload:       append([]byte(nil), body...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err == nil {
		return webhookDeliveryToDomain(record), true, nil
	} else if !isUniqueViolation(err) {
		return webhooks.DeliveryRecord{}, false, err
	}

	existing, err := s.Get(ctx, deliveryID)
	if err != nil {
		return webhooks.DeliveryRecord{}, false, err
	}
	if !webhooks.Claimable(existing, now) {
		return existing, false, nil
	}

	result, err := s.db.NewUpdate().
		Model((*webhookDeliveryRecord)(nil)).
		Set("status = ?", webhooks.DeliveryStatusProcessing).
		Set("attempts = ?", existing.Attempts+1).
		Set("next_attempt_at = ?", leaseEnd).
		Set("updated_at = ?", now).
		Where("delivery_id = ?", deliveryID).
		Where("status = ?", existing.Status).
		Where("attempts = ?", existing.Attempts).
		Exec(ctx)
	if err != nil {
		return webhooks.DeliveryRecord{}, false, err
	}
	if affected, _ := result.RowsAffected(); affected != 1 {
		current, getErr := s.Get(ctx, deliveryID)
		if getErr != nil {
			return webhooks.DeliveryRecord{}, false, getErr
		}
		return current, false, nil
	}

	existing.Status = webhooks.DeliveryStatusProcessing
	existing.Attempts++
	existing.ClaimID = webhooks.ClaimID(deliveryID, existing.Attempts)
	existing.NextAttemptAt = &leaseEnd
	existing.UpdatedAt = now
	return existing, true, nil
}

func (s *WebhookDeliveryStore) Get(ctx context.Context, deliveryID string) (webhooks.DeliveryRecord, error) {
	if s == nil || s.repo == nil {
		return webhooks.DeliveryRecord{}, fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("delivery_id", "=", strings.TrimSpace(deliveryID)),
	)
	if err != nil {
		return webhooks.DeliveryRecord{}, err
	}
	if len(records) == 0 {
		return webhooks.DeliveryRecord{}, webhooks.ErrDeliveryNotFound
	}
	return webhookDeliveryToDomain(records[0]), nil
}

func (s *WebhookDeliveryStore) Complete(ctx context.Context, claimID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	deliveryID, attempt, err := webhooks.ParseClaimID(claimID)
	if err != nil {
		return err
	}
	result, err := s.db.NewUpdate().
		Model((*webhookDeliveryRecord)(nil)).
		Set("status = ?", webhooks.DeliveryStatusProcessed).
		Set("next_attempt_at = NULL").
		Set("last_error = ?", "").
		Set("updated_at = ?", s.currentTime()).
		Where("delivery_id = ?", deliveryID).
		Where("status = ?", webhooks.DeliveryStatusProcessing).
		Where("attempts = ?", attempt).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		// stale claims are ignored, unknown deliveries are not
		_, getErr := s.Get(ctx, deliveryID)
		return getErr
	}
	return nil
}

func (s *WebhookDeliveryStore) Fail(
	ctx context.Context,
	claimID string,
	cause error,
	nextAttemptAt time.Time,
	maxAttempts int,
) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	deliveryID, attempt, err := webhooks.ParseClaimID(claimID)
	if err != nil {
		return err
	}
	record, err := s.Get(ctx, deliveryID)
	if err != nil {
		return err
	}
	if record.Status != webhooks.DeliveryStatusProcessing || record.Attempts != attempt {
		return nil
	}

	webhooks.ApplyFailure(&record, cause, nextAttemptAt, maxAttempts, s.currentTime())
	_, err = s.db.NewUpdate().
		Model((*webhookDeliveryRecord)(nil)).
		Set("status = ?", record.Status).
		Set("last_error = ?", record.LastError).
		Set("next_attempt_at = ?", record.NextAttemptAt).
		Set("updated_at = ?", record.UpdatedAt).
		Where("delivery_id = ?", deliveryID).
		Where("status = ?", webhooks.DeliveryStatusProcessing).
		Where("attempts = ?", attempt).
		Exec(ctx)
	return err
}

// Payload returns the raw body stored with the first claim of a delivery.
func (s *WebhookDeliveryStore) Payload(ctx context.Context, deliveryID string) ([]byte, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("delivery_id", "=", strings.TrimSpace(deliveryID)),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, webhooks.ErrDeliveryNotFound
	}
	return append([]byte(nil), records[0].Payload...), nil
}

func (s *WebhookDeliveryStore) currentTime() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func webhookDeliveryToDomain(record *webhookDeliveryRecord) webhooks.DeliveryRecord {
	if record == nil {
		return webhooks.DeliveryRecord{}
	}
	result := webhooks.DeliveryRecord{
		ID:         record.ID,
		DeliveryID: record.DeliveryID,
		PaymentID:  record.PaymentID,
		Event:      record.Event,
		Status:     record.Status,
		Attempts:   record.Attempts,
		LastError:  record.LastError,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.Attempts > 0 {
		result.ClaimID = webhooks.ClaimID(record.DeliveryID, record.Attempts)
	}
	if record.NextAttemptAt != nil {
		value := record.NextAttemptAt.UTC()
		result.NextAttemptAt = &value
	}
	return result
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
