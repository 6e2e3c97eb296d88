package payzcore

import (
	"fmt"

	payzcommand "github.com/goliatone/go-payzcore/command"
	payzquery "github.com/goliatone/go-payzcore/query"
)

type CommandQueryService interface {
	payzcommand.PaymentMutator
	payzcommand.ProjectMutator
	payzquery.PaymentReader
	payzquery.ProjectReader
}

type Commands struct {
	CreatePayment  *payzcommand.CreatePaymentCommand
	CancelPayment  *payzcommand.CancelPaymentCommand
	ConfirmPayment *payzcommand.ConfirmPaymentCommand
	CreateProject  *payzcommand.CreateProjectCommand
}

type Queries struct {
	GetPayment   *payzquery.GetPaymentQuery
	ListPayments *payzquery.ListPaymentsQuery
	ListProjects *payzquery.ListProjectsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	paymentReader payzquery.PaymentReader
}

// WithPaymentReader routes payment queries through reader instead of the
// service, e.g. a cached reader from store/cache.
func WithPaymentReader(reader payzquery.PaymentReader) FacadeOption {
	return func(options *facadeOptions) {
		options.paymentReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("payzcore: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.paymentReader
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreatePayment:  payzcommand.NewCreatePaymentCommand(service),
		CancelPayment:  payzcommand.NewCancelPaymentCommand(service),
		ConfirmPayment: payzcommand.NewConfirmPaymentCommand(service),
		CreateProject:  payzcommand.NewCreateProjectCommand(service),
	}
	facade.queries = Queries{
		GetPayment:   payzquery.NewGetPaymentQuery(reader),
		ListPayments: payzquery.NewListPaymentsQuery(reader),
		ListProjects: payzquery.NewListProjectsQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
