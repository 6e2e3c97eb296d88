package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-payzcore/core"
)

var (
	_ gocmd.Querier[GetPaymentMessage, core.PaymentDetail] = (*GetPaymentQuery)(nil)
	_ gocmd.Querier[ListPaymentsMessage, core.PaymentList] = (*ListPaymentsQuery)(nil)
	_ gocmd.Querier[ListProjectsMessage, []core.Project]   = (*ListProjectsQuery)(nil)
)
