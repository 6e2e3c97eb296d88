package query

import (
	"context"

	"github.com/goliatone/go-payzcore/core"
)

type PaymentReader interface {
	GetPayment(ctx context.Context, id string) (core.PaymentDetail, error)
	ListPayments(ctx context.Context, params core.ListPaymentsParams) (core.PaymentList, error)
}

type ProjectReader interface {
	ListProjects(ctx context.Context) ([]core.Project, error)
}

type GetPaymentQuery struct {
	reader PaymentReader
}

func NewGetPaymentQuery(reader PaymentReader) *GetPaymentQuery {
	return &GetPaymentQuery{reader: reader}
}

func (q *GetPaymentQuery) Query(ctx context.Context, msg GetPaymentMessage) (core.PaymentDetail, error) {
	if q == nil || q.reader == nil {
		return core.PaymentDetail{}, queryDependencyError("query: payment reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.PaymentDetail{}, err
	}
	out, err := q.reader.GetPayment(ctx, msg.PaymentID)
	if err != nil {
		return core.PaymentDetail{}, queryServiceError(err)
	}
	return out, nil
}

type ListPaymentsQuery struct {
	reader PaymentReader
}

func NewListPaymentsQuery(reader PaymentReader) *ListPaymentsQuery {
	return &ListPaymentsQuery{reader: reader}
}

func (q *ListPaymentsQuery) Query(ctx context.Context, msg ListPaymentsMessage) (core.PaymentList, error) {
	if q == nil || q.reader == nil {
		return core.PaymentList{}, queryDependencyError("query: payment reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.PaymentList{}, err
	}
	out, err := q.reader.ListPayments(ctx, msg.Params)
	if err != nil {
		return core.PaymentList{}, queryServiceError(err)
	}
	return out, nil
}

type ListProjectsQuery struct {
	reader ProjectReader
}

func NewListProjectsQuery(reader ProjectReader) *ListProjectsQuery {
	return &ListProjectsQuery{reader: reader}
}

func (q *ListProjectsQuery) Query(ctx context.Context, msg ListProjectsMessage) ([]core.Project, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: project reader is required")
	}
	out, err := q.reader.ListProjects(ctx)
	if err != nil {
		return nil, queryServiceError(err)
	}
	return out, nil
}
