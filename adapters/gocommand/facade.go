package gocommand

import (
	"fmt"

	"github.com/goliatone/go-command/runner"
	payzcore "github.com/goliatone/go-payzcore"
	payzcommand "github.com/goliatone/go-payzcore/command"
	"github.com/goliatone/go-payzcore/core"
	payzquery "github.com/goliatone/go-payzcore/query"
)

// RegisterFacade registers and subscribes every payzcore command and query
// handler of facade. On error nothing registered by this call stays
// subscribed.
func (b *Bus) RegisterFacade(facade *payzcore.Facade, runnerOpts ...runner.Option) (err error) {
	if err := b.ready(); err != nil {
		return err
	}
	if facade == nil {
		return fmt.Errorf("gocommand: payzcore facade is required")
	}
	mark := b.Len()
	defer func() {
		if err != nil {
			b.rollback(mark)
		}
	}()

	commands := facade.Commands()
	if err = Handle[payzcommand.CreatePaymentMessage](b, commands.CreatePayment, runnerOpts...); err != nil {
		return err
	}
	if err = Handle[payzcommand.CancelPaymentMessage](b, commands.CancelPayment, runnerOpts...); err != nil {
		return err
	}
	if err = Handle[payzcommand.ConfirmPaymentMessage](b, commands.ConfirmPayment, runnerOpts...); err != nil {
		return err
	}
	if err = Handle[payzcommand.CreateProjectMessage](b, commands.CreateProject, runnerOpts...); err != nil {
		return err
	}

	queries := facade.Queries()
	if err = HandleQuery[payzquery.GetPaymentMessage, core.PaymentDetail](b, queries.GetPayment, runnerOpts...); err != nil {
		return err
	}
	if err = HandleQuery[payzquery.ListPaymentsMessage, core.PaymentList](b, queries.ListPayments, runnerOpts...); err != nil {
		return err
	}
	return HandleQuery[payzquery.ListProjectsMessage, []core.Project](b, queries.ListProjects, runnerOpts...)
}
