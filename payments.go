package payzcore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/transport"
)

const paymentsPath = "/v1/payments"

// Payments maps the /v1/payments endpoints.
type Payments struct {
	transport *transport.Transport
}

func (p *Payments) Create(ctx context.Context, req core.CreatePaymentRequest) (core.CreatePaymentResponse, error) {
	body := createPaymentBody{
		Amount:          json.Number(req.Amount.String()),
		Network:         string(req.Network),
		Token:           string(req.Token),
		ExternalRef:     req.ExternalRef,
		ExternalOrderID: req.ExternalOrderID,
		Address:         req.Address,
		ExpiresIn:       req.ExpiresIn,
		Metadata:        req.Metadata,
	}
	var out createPaymentEnvelope
	if err := p.transport.Do(ctx, http.MethodPost, paymentsPath, body, &out); err != nil {
		return core.CreatePaymentResponse{}, err
	}
	return core.CreatePaymentResponse{
		Existing: out.Existing,
		Payment:  out.Payment.toCore(),
	}, nil
}

func (p *Payments) List(ctx context.Context, params core.ListPaymentsParams) (core.PaymentList, error) {
	query := url.Values{}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}
	path := paymentsPath
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out paymentListEnvelope
	if err := p.transport.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return core.PaymentList{}, err
	}
	list := core.PaymentList{Payments: make([]core.PaymentSummary, 0, len(out.Payments))}
	for _, payment := range out.Payments {
		list.Payments = append(list.Payments, payment.toSummary())
	}
	return list, nil
}

func (p *Payments) Get(ctx context.Context, id string) (core.PaymentDetail, error) {
	path, err := paymentPath(id)
	if err != nil {
		return core.PaymentDetail{}, err
	}
	var out paymentEnvelope
	if err := p.transport.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return core.PaymentDetail{}, err
	}
	return out.Payment.toCore(), nil
}

// Cancel moves a pending payment to cancelled.
func (p *Payments) Cancel(ctx context.Context, id string) (core.PaymentDetail, error) {
	path, err := paymentPath(id)
	if err != nil {
		return core.PaymentDetail{}, err
	}
	body := cancelPaymentBody{Status: string(core.PaymentStatusCancelled)}
	var out paymentEnvelope
	if err := p.transport.Do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return core.PaymentDetail{}, err
	}
	return out.Payment.toCore(), nil
}

// Confirm submits a transaction hash for payments that require one.
func (p *Payments) Confirm(
	ctx context.Context,
	id string,
	req core.ConfirmPaymentRequest,
) (core.ConfirmPaymentResponse, error) {
	path, err := paymentPath(id)
	if err != nil {
		return core.ConfirmPaymentResponse{}, err
	}
	body := confirmPaymentBody{TxHash: core.NormalizeTxHash(req.TxHash)}
	var out confirmPaymentEnvelope
	if err := p.transport.Do(ctx, http.MethodPost, path+"/confirm", body, &out); err != nil {
		return core.ConfirmPaymentResponse{}, err
	}
	return core.ConfirmPaymentResponse{
		Status:         core.PaymentStatus(out.Status),
		Verified:       out.Verified,
		AmountExpected: out.AmountExpected,
		AmountReceived: out.AmountReceived,
		Underpaid:      out.Underpaid,
		Message:        out.Message,
	}, nil
}

func paymentPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", core.NewValidationError("payment id is required", []core.ErrorDetail{{
			Code:    "required",
			Path:    []any{"id"},
			Message: "payment id is required",
		}})
	}
	return paymentsPath + "/" + url.PathEscape(id), nil
}
