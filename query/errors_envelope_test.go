package query

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
)

func TestGetPaymentQuery_NilReaderReturnsRichError(t *testing.T) {
	var q *GetPaymentQuery
	_, err := q.Query(context.Background(), GetPaymentMessage{PaymentID: "pay_1"})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal || rich.TextCode != core.ServiceErrorInternal {
		t.Fatalf("unexpected envelope %+v", rich)
	}
}

func TestListProjectsQuery_ForbiddenBecomesEnvelope(t *testing.T) {
	reader := stubReader{
		listProjectsFn: func(context.Context) ([]core.Project, error) {
			return nil, core.NewForbiddenError("")
		},
	}
	_, err := NewListProjectsQuery(reader).Query(context.Background(), ListProjectsMessage{})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryAuthz || rich.Code != http.StatusForbidden {
		t.Fatalf("unexpected envelope %+v", rich)
	}
	if rich.Message != "Access denied" || rich.TextCode != core.ServiceErrorForbidden {
		t.Fatalf("unexpected message/text code %q %q", rich.Message, rich.TextCode)
	}
}

func TestGetPaymentQuery_RateLimitMetadata(t *testing.T) {
	retryAfter := 30
	reader := stubReader{
		getPaymentFn: func(context.Context, string) (core.PaymentDetail, error) {
			return core.PaymentDetail{}, core.NewRateLimitError("", &retryAfter, true)
		},
	}
	_, err := NewGetPaymentQuery(reader).Query(context.Background(), GetPaymentMessage{PaymentID: "pay_1"})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Metadata["retry_after"] != 30 || rich.Metadata["is_daily"] != true {
		t.Fatalf("unexpected metadata %#v", rich.Metadata)
	}
}
