package webhooks

import (
	"bytes"
	"encoding/json"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-payzcore/core"
	"github.com/shopspring/decimal"
)

const parserLoggerName = "payzcore.webhooks"

// Payload is a decoded webhook event. Optional wire fields that are absent or
// null are nil.
type Payload struct {
	Event           core.EventType     `json:"event"`
	PaymentID       string             `json:"payment_id"`
	ExternalRef     string             `json:"external_ref"`
	ExternalOrderID *string            `json:"external_order_id,omitempty"`
	Network         core.Network       `json:"network"`
	Token           core.Token         `json:"token"`
	Address         string             `json:"address"`
	ExpectedAmount  decimal.Decimal    `json:"expected_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	TxHash          *string            `json:"tx_hash"`
	Status          core.PaymentStatus `json:"status"`
	PaidAt          *string            `json:"paid_at"`
	Metadata        map[string]any     `json:"metadata"`
	Timestamp       string             `json:"timestamp"`
	BuyerEmail      *string            `json:"buyer_email,omitempty"`
	BuyerName       *string            `json:"buyer_name,omitempty"`
	BuyerNote       *string            `json:"buyer_note,omitempty"`
	PaymentLinkID   *string            `json:"payment_link_id,omitempty"`
	PaymentLinkSlug *string            `json:"payment_link_slug,omitempty"`
}

// DeliveryID identifies one logical delivery for deduplication. It is empty
// when the payment id or timestamp is missing.
func (p Payload) DeliveryID() string {
	if strings.TrimSpace(p.PaymentID) == "" || strings.TrimSpace(p.Timestamp) == "" {
		return ""
	}
	return p.PaymentID + ":" + string(p.Event) + ":" + p.Timestamp
}

type wirePayload struct {
	Event           string          `json:"event"`
	PaymentID       string          `json:"payment_id"`
	ExternalRef     string          `json:"external_ref"`
	ExternalOrderID *string         `json:"external_order_id"`
	Network         string          `json:"network"`
	Token           *string         `json:"token"`
	Address         string          `json:"address"`
	ExpectedAmount  json.RawMessage `json:"expected_amount"`
	PaidAmount      json.RawMessage `json:"paid_amount"`
	TxHash          *string         `json:"tx_hash"`
	Status          string          `json:"status"`
	PaidAt          *string         `json:"paid_at"`
	Metadata        map[string]any  `json:"metadata"`
	Timestamp       string          `json:"timestamp"`
	BuyerEmail      *string         `json:"buyer_email"`
	BuyerName       *string         `json:"buyer_name"`
	BuyerNote       *string         `json:"buyer_note"`
	PaymentLinkID   *string         `json:"payment_link_id"`
	PaymentLinkSlug *string         `json:"payment_link_slug"`
}

// Parser decodes webhook bodies. Unknown networks and tokens are logged and
// passed through unchanged.
type Parser struct {
	Logger core.Logger
}

func Parse(body []byte) (Payload, error) {
	return (&Parser{}).Parse(body)
}

func (p *Parser) Parse(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Payload{}, core.NewWebhookSignatureError("Invalid webhook payload: malformed JSON")
	}
	var wire wirePayload
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Payload{}, core.NewWebhookSignatureError("Invalid webhook payload: malformed JSON")
	}

	expected, err := parseAmount(wire.ExpectedAmount)
	if err != nil {
		return Payload{}, invalidAmount("expected_amount", err)
	}
	paid, err := parseAmount(wire.PaidAmount)
	if err != nil {
		return Payload{}, invalidAmount("paid_amount", err)
	}

	logger := p.logger()
	payload := Payload{
		Event:           core.EventType(wire.Event),
		PaymentID:       wire.PaymentID,
		ExternalRef:     wire.ExternalRef,
		ExternalOrderID: wire.ExternalOrderID,
		Network:         core.Network(wire.Network),
		Token:           core.DefaultToken,
		Address:         wire.Address,
		ExpectedAmount:  expected,
		PaidAmount:      paid,
		TxHash:          wire.TxHash,
		Status:          core.PaymentStatus(wire.Status),
		PaidAt:          wire.PaidAt,
		Metadata:        wire.Metadata,
		Timestamp:       wire.Timestamp,
		BuyerEmail:      wire.BuyerEmail,
		BuyerName:       wire.BuyerName,
		BuyerNote:       wire.BuyerNote,
		PaymentLinkID:   wire.PaymentLinkID,
		PaymentLinkSlug: wire.PaymentLinkSlug,
	}
	if wire.Token != nil {
		payload.Token = core.Token(*wire.Token)
	}

	if !payload.Network.Supported() {
		logger.Warn("payzcore webhook has unknown network",
			"network", string(payload.Network),
			"payment_id", payload.PaymentID,
		)
	}
	if !payload.Token.Supported() {
		logger.Warn("payzcore webhook has unknown token",
			"token", string(payload.Token),
			"payment_id", payload.PaymentID,
		)
	}
	return payload, nil
}

func (p *Parser) logger() core.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	_, logger := glog.Resolve(parserLoggerName, nil, nil)
	return glog.Ensure(logger)
}

// parseAmount accepts a JSON string or number. Absent and null amounts are
// zero.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	text := string(raw)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, err
		}
	}
	return decimal.NewFromString(strings.TrimSpace(text))
}

func invalidAmount(field string, cause error) error {
	err := core.NewWebhookSignatureError("Invalid webhook payload")
	err.Details = []core.ErrorDetail{{Code: "invalid_amount", Path: []any{field}, Message: cause.Error()}}
	return err
}
