package cachestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/webhooks"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubPaymentReader struct {
	mu        sync.Mutex
	detail    core.PaymentDetail
	getCalls  int
	listCalls int
	getErr    error
}

func (s *stubPaymentReader) GetPayment(_ context.Context, id string) (core.PaymentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return core.PaymentDetail{}, s.getErr
	}
	detail := clonePaymentDetail(s.detail)
	detail.ID = id
	return detail, nil
}

func (s *stubPaymentReader) ListPayments(context.Context, core.ListPaymentsParams) (core.PaymentList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return core.PaymentList{Payments: []core.PaymentSummary{{ID: "p1"}}}, nil
}

func (s *stubPaymentReader) setStatus(status core.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail.Status = status
}

func TestPaymentReader_GetPayment_MissFetchThenHit(t *testing.T) {
	base := &stubPaymentReader{detail: core.PaymentDetail{
		Status:   core.PaymentStatusPending,
		Metadata: map[string]any{"sku": "A1"},
	}}
	reader := newTestPaymentReader(t, base)

	first, err := reader.GetPayment(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected first get to fetch base reader once, got %d", base.getCalls)
	}
	first.Metadata["sku"] = "mutated"

	second, err := reader.GetPayment(context.Background(), " pay_1 ")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be cache hit, base get calls=%d", base.getCalls)
	}
	if second.Metadata["sku"] != "A1" {
		t.Fatalf("expected cached value to be isolated from caller mutation, got %v", second.Metadata["sku"])
	}
}

func TestPaymentReader_InvalidateForcesRefetch(t *testing.T) {
	base := &stubPaymentReader{detail: core.PaymentDetail{Status: core.PaymentStatusPending}}
	reader := newTestPaymentReader(t, base)

	if _, err := reader.GetPayment(context.Background(), "pay_2"); err != nil {
		t.Fatalf("prime cache with get: %v", err)
	}
	base.setStatus(core.PaymentStatusPaid)

	if err := reader.Invalidate(context.Background(), "pay_2"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	detail, err := reader.GetPayment(context.Background(), "pay_2")
	if err != nil {
		t.Fatalf("get after invalidation: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.getCalls)
	}
	if detail.Status != core.PaymentStatusPaid {
		t.Fatalf("expected refreshed status paid, got %s", detail.Status)
	}
}

func TestPaymentReader_ListPassesThrough(t *testing.T) {
	base := &stubPaymentReader{}
	reader := newTestPaymentReader(t, base)

	for i := 0; i < 2; i++ {
		if _, err := reader.ListPayments(context.Background(), core.ListPaymentsParams{}); err != nil {
			t.Fatalf("list payments: %v", err)
		}
	}
	if base.listCalls != 2 {
		t.Fatalf("expected list calls to bypass cache, got %d", base.listCalls)
	}
}

func TestPaymentReader_PropagatesBaseErrors(t *testing.T) {
	base := &stubPaymentReader{getErr: core.NewNotFoundError("")}
	reader := newTestPaymentReader(t, base)

	_, err := reader.GetPayment(context.Background(), "pay_404")
	if !core.IsNotFound(err) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
	if _, err := reader.GetPayment(context.Background(), " "); err == nil {
		t.Fatalf("expected empty payment id error")
	}
}

func TestPaymentCacheKey_Contract(t *testing.T) {
	key, err := PaymentCacheKey(" pay/Alpha 1 ")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "go-payzcore::payment::v1::pay%2FAlpha%201"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}
}

func TestNewPaymentReader_RequiresDependencies(t *testing.T) {
	if _, err := NewPaymentReader(nil, newTestCacheService(t)); err == nil {
		t.Fatalf("expected missing base reader error")
	}
	if _, err := NewPaymentReader(&stubPaymentReader{}, nil); err == nil {
		t.Fatalf("expected missing cache service error")
	}
}

func TestInvalidatingHandler_EvictsThenDelegates(t *testing.T) {
	base := &stubPaymentReader{detail: core.PaymentDetail{Status: core.PaymentStatusPending}}
	reader := newTestPaymentReader(t, base)
	if _, err := reader.GetPayment(context.Background(), "pay_3"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	var delegated []string
	handler := NewInvalidatingHandler(reader, webhooks.HandlerFunc(func(_ context.Context, payload webhooks.Payload) error {
		delegated = append(delegated, payload.PaymentID)
		return nil
	}))
	if err := handler.Handle(context.Background(), webhooks.Payload{
		Event:     core.EventPaymentCompleted,
		PaymentID: "pay_3",
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(delegated) != 1 || delegated[0] != "pay_3" {
		t.Fatalf("expected delegation to next handler, got %v", delegated)
	}

	if _, err := reader.GetPayment(context.Background(), "pay_3"); err != nil {
		t.Fatalf("get after webhook: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected webhook to evict cached payment, base get calls=%d", base.getCalls)
	}
}

type failingInvalidator struct{}

func (failingInvalidator) Invalidate(context.Context, string) error {
	return errors.New("cache unavailable")
}

func TestInvalidatingHandler_EvictionFailureDoesNotBlockHandler(t *testing.T) {
	nextErr := errors.New("next failed")
	handler := NewInvalidatingHandler(failingInvalidator{}, webhooks.HandlerFunc(func(context.Context, webhooks.Payload) error {
		return nextErr
	}))
	if err := handler.Handle(context.Background(), webhooks.Payload{PaymentID: "pay_4"}); !errors.Is(err, nextErr) {
		t.Fatalf("expected next handler error, got %v", err)
	}

	withoutNext := NewInvalidatingHandler(failingInvalidator{}, nil)
	if err := withoutNext.Handle(context.Background(), webhooks.Payload{PaymentID: "pay_4"}); err != nil {
		t.Fatalf("expected nil error without next handler, got %v", err)
	}

	var unset *InvalidatingHandler
	if err := unset.Handle(context.Background(), webhooks.Payload{}); err == nil {
		t.Fatalf("expected wiring error")
	}
}

func newTestPaymentReader(t *testing.T, base *stubPaymentReader) *PaymentReader {
	t.Helper()
	reader, err := NewPaymentReader(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new payment reader: %v", err)
	}
	return reader
}

func newTestCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	service, err := NewDefaultCacheService(time.Minute)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
