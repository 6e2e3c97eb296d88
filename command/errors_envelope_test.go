package command

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
)

func TestCreatePaymentMessage_ValidateReturnsRichError(t *testing.T) {
	err := (CreatePaymentMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ServiceErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorBadInput, rich.TextCode)
	}
}

func TestCreatePaymentCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CreatePaymentCommand
	err := cmd.Execute(context.Background(), CreatePaymentMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}

func TestCancelPaymentCommand_APIErrorBecomesEnvelope(t *testing.T) {
	svc := stubService{
		cancelPaymentFn: func(context.Context, string) (core.PaymentDetail, error) {
			return core.PaymentDetail{}, core.NewNotFoundError("payment not found")
		},
	}
	err := NewCancelPaymentCommand(svc).Execute(context.Background(), CancelPaymentMessage{PaymentID: "pay_x"})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryNotFound || rich.Code != http.StatusNotFound {
		t.Fatalf("unexpected envelope %+v", rich)
	}
	if rich.TextCode != core.ServiceErrorNotFound {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorNotFound, rich.TextCode)
	}
}
