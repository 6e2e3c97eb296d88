package command

import (
	"strings"

	"github.com/goliatone/go-payzcore/core"
)

const (
	TypeCreatePayment  = "payzcore.command.payment.create"
	TypeCancelPayment  = "payzcore.command.payment.cancel"
	TypeConfirmPayment = "payzcore.command.payment.confirm"
	TypeCreateProject  = "payzcore.command.project.create"
)

type CreatePaymentMessage struct {
	Request core.CreatePaymentRequest
}

func (CreatePaymentMessage) Type() string { return TypeCreatePayment }

func (m CreatePaymentMessage) Validate() error {
	if !m.Request.Amount.IsPositive() {
		return commandValidationError("amount", "must be greater than zero")
	}
	if strings.TrimSpace(string(m.Request.Network)) == "" {
		return commandValidationError("network", "is required")
	}
	if strings.TrimSpace(m.Request.ExternalRef) == "" {
		return commandValidationError("external_ref", "is required")
	}
	if m.Request.ExpiresIn != nil && *m.Request.ExpiresIn <= 0 {
		return commandValidationError("expires_in", "must be greater than zero")
	}
	return nil
}

type CancelPaymentMessage struct {
	PaymentID string
}

func (CancelPaymentMessage) Type() string { return TypeCancelPayment }

func (m CancelPaymentMessage) Validate() error {
	if strings.TrimSpace(m.PaymentID) == "" {
		return commandValidationError("payment_id", "is required")
	}
	return nil
}

type ConfirmPaymentMessage struct {
	PaymentID string
	Request   core.ConfirmPaymentRequest
}

func (ConfirmPaymentMessage) Type() string { return TypeConfirmPayment }

func (m ConfirmPaymentMessage) Validate() error {
	if strings.TrimSpace(m.PaymentID) == "" {
		return commandValidationError("payment_id", "is required")
	}
	if core.NormalizeTxHash(m.Request.TxHash) == "" {
		return commandValidationError("tx_hash", "is required")
	}
	return nil
}

type CreateProjectMessage struct {
	Request core.CreateProjectRequest
}

func (CreateProjectMessage) Type() string { return TypeCreateProject }

func (m CreateProjectMessage) Validate() error {
	if strings.TrimSpace(m.Request.Name) == "" {
		return commandValidationError("name", "is required")
	}
	if strings.TrimSpace(m.Request.Slug) == "" {
		return commandValidationError("slug", "is required")
	}
	return nil
}
