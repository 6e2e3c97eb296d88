package payzcore

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-payzcore/core"
	"github.com/shopspring/decimal"
)

// Wire shapes of the PayzCore REST API. Field names follow the API's
// snake_case JSON; mapping into core types happens in the resource files.

type createPaymentBody struct {
	Amount          json.Number    `json:"amount"`
	Network         string         `json:"network"`
	Token           string         `json:"token,omitempty"`
	ExternalRef     string         `json:"external_ref"`
	ExternalOrderID string         `json:"external_order_id,omitempty"`
	Address         string         `json:"address,omitempty"`
	ExpiresIn       *int           `json:"expires_in,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type createPaymentEnvelope struct {
	Existing bool        `json:"existing"`
	Payment  wirePayment `json:"payment"`
}

type wirePayment struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Network         string          `json:"network"`
	Token           string          `json:"token"`
	Address         string          `json:"address"`
	ExternalRef     string          `json:"external_ref"`
	ExternalOrderID *string         `json:"external_order_id"`
	QRCode          *string         `json:"qr_code"`
	Notice          *string         `json:"notice"`
	RequiresTxHash  bool            `json:"requires_txid"`
	ExpiresAt       time.Time       `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type wireTransaction struct {
	TxHash        string          `json:"tx_hash"`
	Amount        decimal.Decimal `json:"amount"`
	From          *string         `json:"from"`
	Confirmed     bool            `json:"confirmed"`
	Confirmations int             `json:"confirmations"`
}

type wirePaymentDetail struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	ExpectedAmount  decimal.Decimal   `json:"expected_amount"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	Network         string            `json:"network"`
	Token           string            `json:"token"`
	Address         string            `json:"address"`
	ExternalRef     string            `json:"external_ref"`
	ExternalOrderID *string           `json:"external_order_id"`
	TxHash          *string           `json:"tx_hash"`
	Metadata        map[string]any    `json:"metadata"`
	Transactions    []wireTransaction `json:"transactions"`
	ExpiresAt       time.Time         `json:"expires_at"`
	PaidAt          *time.Time        `json:"paid_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

type paymentEnvelope struct {
	Payment wirePaymentDetail `json:"payment"`
}

type paymentListEnvelope struct {
	Payments []wirePaymentDetail `json:"payments"`
}

type cancelPaymentBody struct {
	Status string `json:"status"`
}

type confirmPaymentBody struct {
	TxHash string `json:"tx_hash"`
}

type confirmPaymentEnvelope struct {
	Status         string          `json:"status"`
	Verified       bool            `json:"verified"`
	AmountExpected decimal.Decimal `json:"amount_expected"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Underpaid      bool            `json:"underpaid"`
	Message        string          `json:"message"`
}

type createProjectBody struct {
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	WebhookURL string         `json:"webhook_url,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type wireProject struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	APIKey        string    `json:"api_key"`
	WebhookSecret string    `json:"webhook_secret"`
	WebhookURL    *string   `json:"webhook_url"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type projectEnvelope struct {
	Project wireProject `json:"project"`
}

type projectListEnvelope struct {
	Projects []wireProject `json:"projects"`
}

func (w wirePayment) toCore() core.Payment {
	return core.Payment{
		ID:              w.ID,
		Status:          core.PaymentStatus(w.Status),
		Amount:          w.Amount,
		Network:         core.Network(w.Network),
		Token:           tokenOrDefault(w.Token),
		Address:         w.Address,
		ExternalRef:     w.ExternalRef,
		ExternalOrderID: w.ExternalOrderID,
		QRCode:          w.QRCode,
		Notice:          w.Notice,
		RequiresTxHash:  w.RequiresTxHash,
		ExpiresAt:       w.ExpiresAt,
		CreatedAt:       w.CreatedAt,
	}
}

func (w wirePaymentDetail) toCore() core.PaymentDetail {
	detail := core.PaymentDetail{
		ID:              w.ID,
		Status:          core.PaymentStatus(w.Status),
		ExpectedAmount:  w.ExpectedAmount,
		PaidAmount:      w.PaidAmount,
		Network:         core.Network(w.Network),
		Token:           tokenOrDefault(w.Token),
		Address:         w.Address,
		ExternalRef:     w.ExternalRef,
		ExternalOrderID: w.ExternalOrderID,
		TxHash:          w.TxHash,
		Metadata:        w.Metadata,
		ExpiresAt:       w.ExpiresAt,
		PaidAt:          w.PaidAt,
		CreatedAt:       w.CreatedAt,
	}
	if len(w.Transactions) > 0 {
		detail.Transactions = make([]core.Transaction, 0, len(w.Transactions))
		for _, tx := range w.Transactions {
			detail.Transactions = append(detail.Transactions, core.Transaction{
				TxHash:        tx.TxHash,
				Amount:        tx.Amount,
				From:          tx.From,
				Confirmed:     tx.Confirmed,
				Confirmations: tx.Confirmations,
			})
		}
	}
	return detail
}

func (w wirePaymentDetail) toSummary() core.PaymentSummary {
	return core.PaymentSummary{
		ID:              w.ID,
		Status:          core.PaymentStatus(w.Status),
		ExpectedAmount:  w.ExpectedAmount,
		PaidAmount:      w.PaidAmount,
		Network:         core.Network(w.Network),
		Token:           tokenOrDefault(w.Token),
		Address:         w.Address,
		ExternalRef:     w.ExternalRef,
		ExternalOrderID: w.ExternalOrderID,
		TxHash:          w.TxHash,
		PaidAt:          w.PaidAt,
		CreatedAt:       w.CreatedAt,
	}
}

func (w wireProject) toCore() core.Project {
	return core.Project{
		ID:            w.ID,
		Name:          w.Name,
		Slug:          w.Slug,
		APIKey:        w.APIKey,
		WebhookSecret: w.WebhookSecret,
		WebhookURL:    w.WebhookURL,
		IsActive:      w.IsActive,
		CreatedAt:     w.CreatedAt,
	}
}

func tokenOrDefault(token string) core.Token {
	if token == "" {
		return core.DefaultToken
	}
	return core.Token(token)
}
