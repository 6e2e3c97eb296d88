package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Network string

const (
	NetworkTRC20    Network = "TRC20"
	NetworkBEP20    Network = "BEP20"
	NetworkERC20    Network = "ERC20"
	NetworkPolygon  Network = "POLYGON"
	NetworkArbitrum Network = "ARBITRUM"
)

var supportedNetworks = map[Network]struct{}{
	NetworkTRC20:    {},
	NetworkBEP20:    {},
	NetworkERC20:    {},
	NetworkPolygon:  {},
	NetworkArbitrum: {},
}

func (n Network) Supported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func SupportedNetworks() []Network {
	return []Network{NetworkTRC20, NetworkBEP20, NetworkERC20, NetworkPolygon, NetworkArbitrum}
}

type Token string

const (
	TokenUSDT Token = "USDT"
	TokenUSDC Token = "USDC"
)

const DefaultToken = TokenUSDT

func (t Token) Supported() bool {
	return t == TokenUSDT || t == TokenUSDC
}

func SupportedTokens() []Token {
	return []Token{TokenUSDT, TokenUSDC}
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusConfirming PaymentStatus = "confirming"
	PaymentStatusPartial    PaymentStatus = "partial"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusOverpaid   PaymentStatus = "overpaid"
	PaymentStatusExpired    PaymentStatus = "expired"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// Terminal reports whether the server will not move the payment to another
// status.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusOverpaid, PaymentStatusExpired, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

type EventType string

const (
	EventPaymentCompleted EventType = "payment.completed"
	EventPaymentOverpaid  EventType = "payment.overpaid"
	EventPaymentPartial   EventType = "payment.partial"
	EventPaymentExpired   EventType = "payment.expired"
	EventPaymentCancelled EventType = "payment.cancelled"
)

type CreatePaymentRequest struct {
	Amount          decimal.Decimal
	Network         Network
	Token           Token
	ExternalRef     string
	ExternalOrderID string
	// Address selects a wallet from the static pool instead of deriving one.
	Address   string
	ExpiresIn *int
	Metadata  map[string]any
}

type Payment struct {
	ID              string
	Status          PaymentStatus
	Amount          decimal.Decimal
	Network         Network
	Token           Token
	Address         string
	ExternalRef     string
	ExternalOrderID *string
	QRCode          *string
	Notice          *string
	RequiresTxHash  bool
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

type CreatePaymentResponse struct {
	Existing bool
	Payment  Payment
}

type Transaction struct {
	TxHash        string
	Amount        decimal.Decimal
	From          *string
	Confirmed     bool
	Confirmations int
}

type PaymentDetail struct {
	ID              string
	Status          PaymentStatus
	ExpectedAmount  decimal.Decimal
	PaidAmount      decimal.Decimal
	Network         Network
	Token           Token
	Address         string
	ExternalRef     string
	ExternalOrderID *string
	TxHash          *string
	Metadata        map[string]any
	Transactions    []Transaction
	ExpiresAt       time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
}

type ListPaymentsParams struct {
	Status PaymentStatus
	Limit  int
	Offset int
}

type PaymentSummary struct {
	ID              string
	Status          PaymentStatus
	ExpectedAmount  decimal.Decimal
	PaidAmount      decimal.Decimal
	Network         Network
	Token           Token
	Address         string
	ExternalRef     string
	ExternalOrderID *string
	TxHash          *string
	PaidAt          *time.Time
	CreatedAt       time.Time
}

type PaymentList struct {
	Payments []PaymentSummary
}

type ConfirmPaymentRequest struct {
	TxHash string
}

type ConfirmPaymentResponse struct {
	Status         PaymentStatus
	Verified       bool
	AmountExpected decimal.Decimal
	AmountReceived decimal.Decimal
	Underpaid      bool
	Message        string
}

type Project struct {
	ID            string
	Name          string
	Slug          string
	APIKey        string
	WebhookSecret string
	WebhookURL    *string
	IsActive      bool
	CreatedAt     time.Time
}

type CreateProjectRequest struct {
	Name       string
	Slug       string
	WebhookURL string
	Metadata   map[string]any
}

// NormalizeTxHash trims whitespace; hashes are otherwise sent as given.
func NormalizeTxHash(hash string) string {
	return strings.TrimSpace(hash)
}
