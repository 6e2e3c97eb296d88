package cachestore

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/core"
	payzquery "github.com/goliatone/go-payzcore/query"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const paymentCacheKeyPrefix = "go-payzcore::payment::v1"

// PaymentReader serves GetPayment from cache and passes list calls through.
type PaymentReader struct {
	base  payzquery.PaymentReader
	cache repositorycache.CacheService
}

func NewPaymentReader(
	base payzquery.PaymentReader,
	cacheService repositorycache.CacheService,
) (*PaymentReader, error) {
	if base == nil {
		return nil, fmt.Errorf("cachestore: base payment reader is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("cachestore: payment cache service is required")
	}
	return &PaymentReader{base: base, cache: cacheService}, nil
}

// NewDefaultCacheService builds an in-memory cache service with ttl.
func NewDefaultCacheService(ttl time.Duration) (repositorycache.CacheService, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	return repositorycache.NewCacheService(config)
}

// PaymentCacheKey returns go-payzcore::payment::v1::<escaped payment id>.
func PaymentCacheKey(paymentID string) (string, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", fmt.Errorf("cachestore: payment id is required")
	}
	return paymentCacheKeyPrefix + "::" + url.PathEscape(paymentID), nil
}

func (r *PaymentReader) GetPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	if r == nil || r.base == nil || r.cache == nil {
		return core.PaymentDetail{}, fmt.Errorf("cachestore: payment reader is not configured")
	}
	cacheKey, err := PaymentCacheKey(id)
	if err != nil {
		return core.PaymentDetail{}, err
	}
	trimmed := strings.TrimSpace(id)

	detail, err := repositorycache.GetOrFetch(ctx, r.cache, cacheKey, func(ctx context.Context) (core.PaymentDetail, error) {
		fetched, fetchErr := r.base.GetPayment(ctx, trimmed)
		if fetchErr != nil {
			return core.PaymentDetail{}, fetchErr
		}
		return clonePaymentDetail(fetched), nil
	})
	if err != nil {
		return core.PaymentDetail{}, err
	}
	return clonePaymentDetail(detail), nil
}

func (r *PaymentReader) ListPayments(ctx context.Context, params core.ListPaymentsParams) (core.PaymentList, error) {
	if r == nil || r.base == nil {
		return core.PaymentList{}, fmt.Errorf("cachestore: payment reader is not configured")
	}
	return r.base.ListPayments(ctx, params)
}

// Invalidate drops the cached detail for paymentID.
func (r *PaymentReader) Invalidate(ctx context.Context, paymentID string) error {
	if r == nil || r.cache == nil {
		return fmt.Errorf("cachestore: payment reader is not configured")
	}
	cacheKey, err := PaymentCacheKey(paymentID)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, cacheKey)
}

func clonePaymentDetail(detail core.PaymentDetail) core.PaymentDetail {
	cloned := detail
	cloned.ExternalOrderID = cloneString(detail.ExternalOrderID)
	cloned.TxHash = cloneString(detail.TxHash)
	if detail.Metadata != nil {
		cloned.Metadata = maps.Clone(detail.Metadata)
	}
	if detail.Transactions != nil {
		cloned.Transactions = make([]core.Transaction, len(detail.Transactions))
		for i, tx := range detail.Transactions {
			tx.From = cloneString(tx.From)
			cloned.Transactions[i] = tx
		}
	}
	if detail.PaidAt != nil {
		paidAt := *detail.PaidAt
		cloned.PaidAt = &paidAt
	}
	return cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

var _ payzquery.PaymentReader = (*PaymentReader)(nil)
