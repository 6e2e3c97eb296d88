package query

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
)

type stubReader struct {
	getPaymentFn   func(context.Context, string) (core.PaymentDetail, error)
	listPaymentsFn func(context.Context, core.ListPaymentsParams) (core.PaymentList, error)
	listProjectsFn func(context.Context) ([]core.Project, error)
}

func (s stubReader) GetPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	if s.getPaymentFn == nil {
		return core.PaymentDetail{}, nil
	}
	return s.getPaymentFn(ctx, id)
}

func (s stubReader) ListPayments(ctx context.Context, params core.ListPaymentsParams) (core.PaymentList, error) {
	if s.listPaymentsFn == nil {
		return core.PaymentList{}, nil
	}
	return s.listPaymentsFn(ctx, params)
}

func (s stubReader) ListProjects(ctx context.Context) ([]core.Project, error) {
	if s.listProjectsFn == nil {
		return nil, nil
	}
	return s.listProjectsFn(ctx)
}

func TestGetPaymentQuery_Delegates(t *testing.T) {
	reader := stubReader{
		getPaymentFn: func(_ context.Context, id string) (core.PaymentDetail, error) {
			return core.PaymentDetail{ID: id, Status: core.PaymentStatusPaid}, nil
		},
	}
	out, err := NewGetPaymentQuery(reader).Query(context.Background(), GetPaymentMessage{PaymentID: "pay_1"})
	if err != nil {
		t.Fatalf("query get payment: %v", err)
	}
	if out.ID != "pay_1" || out.Status != core.PaymentStatusPaid {
		t.Fatalf("unexpected payment %#v", out)
	}
}

func TestListPaymentsQuery_PassesParams(t *testing.T) {
	reader := stubReader{
		listPaymentsFn: func(_ context.Context, params core.ListPaymentsParams) (core.PaymentList, error) {
			if params.Status != core.PaymentStatusPending || params.Limit != 5 {
				t.Fatalf("unexpected params %#v", params)
			}
			return core.PaymentList{Payments: []core.PaymentSummary{{ID: "p1"}}}, nil
		},
	}
	out, err := NewListPaymentsQuery(reader).Query(context.Background(), ListPaymentsMessage{
		Params: core.ListPaymentsParams{Status: core.PaymentStatusPending, Limit: 5},
	})
	if err != nil {
		t.Fatalf("query list payments: %v", err)
	}
	if len(out.Payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(out.Payments))
	}
}

func TestListProjectsQuery_Delegates(t *testing.T) {
	reader := stubReader{
		listProjectsFn: func(context.Context) ([]core.Project, error) {
			return []core.Project{{ID: "prj_1"}}, nil
		},
	}
	out, err := NewListProjectsQuery(reader).Query(context.Background(), ListProjectsMessage{})
	if err != nil || len(out) != 1 {
		t.Fatalf("unexpected projects %#v %v", out, err)
	}
}

func TestQueries_ValidateBeforeReading(t *testing.T) {
	reader := stubReader{
		getPaymentFn: func(context.Context, string) (core.PaymentDetail, error) {
			t.Fatalf("reader must not be called for invalid messages")
			return core.PaymentDetail{}, nil
		},
	}
	_, err := NewGetPaymentQuery(reader).Query(context.Background(), GetPaymentMessage{PaymentID: " "})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope, got %v", err)
	}

	_, err = NewListPaymentsQuery(reader).Query(context.Background(), ListPaymentsMessage{
		Params: core.ListPaymentsParams{Offset: -1},
	})
	if !goerrors.As(err, &rich) || rich.AllValidationErrors()[0].Field != "offset" {
		t.Fatalf("expected offset validation error, got %v", err)
	}
}
