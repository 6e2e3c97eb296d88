package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreatePaymentMessage]  = (*CreatePaymentCommand)(nil)
	_ gocmd.Commander[CancelPaymentMessage]  = (*CancelPaymentCommand)(nil)
	_ gocmd.Commander[ConfirmPaymentMessage] = (*ConfirmPaymentCommand)(nil)
	_ gocmd.Commander[CreateProjectMessage]  = (*CreateProjectCommand)(nil)
)
