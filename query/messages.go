package query

import (
	"strings"

	"github.com/goliatone/go-payzcore/core"
)

const (
	TypeGetPayment   = "payzcore.query.payment.get"
	TypeListPayments = "payzcore.query.payment.list"
	TypeListProjects = "payzcore.query.project.list"
)

type GetPaymentMessage struct {
	PaymentID string
}

func (GetPaymentMessage) Type() string { return TypeGetPayment }

func (m GetPaymentMessage) Validate() error {
	if strings.TrimSpace(m.PaymentID) == "" {
		return queryValidationError("payment_id", "is required")
	}
	return nil
}

type ListPaymentsMessage struct {
	Params core.ListPaymentsParams
}

func (ListPaymentsMessage) Type() string { return TypeListPayments }

func (m ListPaymentsMessage) Validate() error {
	if m.Params.Limit < 0 {
		return queryValidationError("limit", "must be >= 0")
	}
	if m.Params.Offset < 0 {
		return queryValidationError("offset", "must be >= 0")
	}
	return nil
}

type ListProjectsMessage struct{}

func (ListProjectsMessage) Type() string { return TypeListProjects }

func (ListProjectsMessage) Validate() error { return nil }
