package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-payzcore/core"
)

// PaymentMutator is the subset of the payments surface that changes state.
type PaymentMutator interface {
	CreatePayment(ctx context.Context, req core.CreatePaymentRequest) (core.CreatePaymentResponse, error)
	CancelPayment(ctx context.Context, id string) (core.PaymentDetail, error)
	ConfirmPayment(ctx context.Context, id string, req core.ConfirmPaymentRequest) (core.ConfirmPaymentResponse, error)
}

type ProjectMutator interface {
	CreateProject(ctx context.Context, req core.CreateProjectRequest) (core.Project, error)
}

type CreatePaymentCommand struct {
	service PaymentMutator
}

func NewCreatePaymentCommand(service PaymentMutator) *CreatePaymentCommand {
	return &CreatePaymentCommand{service: service}
}

func (c *CreatePaymentCommand) Execute(ctx context.Context, msg CreatePaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: payment service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreatePayment(ctx, msg.Request)
	if err != nil {
		return commandServiceError(err)
	}
	storeResult(ctx, out)
	return nil
}

type CancelPaymentCommand struct {
	service PaymentMutator
}

func NewCancelPaymentCommand(service PaymentMutator) *CancelPaymentCommand {
	return &CancelPaymentCommand{service: service}
}

func (c *CancelPaymentCommand) Execute(ctx context.Context, msg CancelPaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: payment service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CancelPayment(ctx, msg.PaymentID)
	if err != nil {
		return commandServiceError(err)
	}
	storeResult(ctx, out)
	return nil
}

type ConfirmPaymentCommand struct {
	service PaymentMutator
}

func NewConfirmPaymentCommand(service PaymentMutator) *ConfirmPaymentCommand {
	return &ConfirmPaymentCommand{service: service}
}

func (c *ConfirmPaymentCommand) Execute(ctx context.Context, msg ConfirmPaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: payment service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.ConfirmPayment(ctx, msg.PaymentID, msg.Request)
	if err != nil {
		return commandServiceError(err)
	}
	storeResult(ctx, out)
	return nil
}

type CreateProjectCommand struct {
	service ProjectMutator
}

func NewCreateProjectCommand(service ProjectMutator) *CreateProjectCommand {
	return &CreateProjectCommand{service: service}
}

func (c *CreateProjectCommand) Execute(ctx context.Context, msg CreateProjectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: project service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreateProject(ctx, msg.Request)
	if err != nil {
		return commandServiceError(err)
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
