package webhooks

import (
	"testing"

	"github.com/goliatone/go-payzcore/core"
	"github.com/shopspring/decimal"
)

func TestParse_MapsWireFields(t *testing.T) {
	payload, err := Parse([]byte(samplePayloadJSON("payment.completed")))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Event != core.EventPaymentCompleted {
		t.Fatalf("expected completed event, got %q", payload.Event)
	}
	if payload.PaymentID != "pay_123" || payload.ExternalRef != "order-9" || payload.Address != "TXabc" {
		t.Fatalf("unexpected identity fields: %+v", payload)
	}
	if payload.Network != core.NetworkTRC20 || payload.Token != core.TokenUSDT {
		t.Fatalf("unexpected network/token: %q %q", payload.Network, payload.Token)
	}
	if !payload.ExpectedAmount.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("expected amount 10.5, got %s", payload.ExpectedAmount)
	}
	if payload.TxHash == nil || *payload.TxHash != "0xfeed" {
		t.Fatalf("expected tx hash, got %v", payload.TxHash)
	}
	if payload.PaidAt == nil || *payload.PaidAt != "2026-03-14T11:59:00Z" {
		t.Fatalf("expected paid_at, got %v", payload.PaidAt)
	}
	if payload.Status != core.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %q", payload.Status)
	}
	if payload.Metadata["plan"] != "pro" {
		t.Fatalf("expected metadata to pass through, got %#v", payload.Metadata)
	}
	if payload.ExternalOrderID != nil || payload.BuyerEmail != nil || payload.PaymentLinkID != nil {
		t.Fatalf("expected absent optional fields to be nil")
	}
}

func TestParse_TokenDefaultsToUSDT(t *testing.T) {
	body := `{"event":"payment.partial","payment_id":"pay_1","network":"BEP20","expected_amount":"5","paid_amount":"2","status":"partial","timestamp":"2026-03-14T12:00:00Z"}`
	payload, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Token != core.TokenUSDT {
		t.Fatalf("expected USDT default, got %q", payload.Token)
	}
}

func TestParse_UnknownNetworkPassesThroughWithWarning(t *testing.T) {
	logger := &recordingLogger{}
	parser := &Parser{Logger: logger}
	body := `{"event":"payment.completed","payment_id":"pay_2","network":"XYZ999","token":"DAI","expected_amount":"1","paid_amount":"1","status":"paid","timestamp":"t"}`

	payload, err := parser.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Network != core.Network("XYZ999") || payload.Token != core.Token("DAI") {
		t.Fatalf("expected unknown values to pass through, got %q %q", payload.Network, payload.Token)
	}
	warnings := logger.byLevel("warn")
	if len(warnings) != 2 {
		t.Fatalf("expected two warnings, got %d", len(warnings))
	}
	if value, _ := warnings[0].arg("network"); value != "XYZ999" {
		t.Fatalf("expected network warning, got %#v", warnings[0])
	}
	if value, _ := warnings[1].arg("token"); value != "DAI" {
		t.Fatalf("expected token warning, got %#v", warnings[1])
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	for _, body := range []string{"", "not json", `{"event":`, `["payment.completed"]`, "null"} {
		_, err := Parse([]byte(body))
		apiErr, ok := core.AsAPIError(err)
		if !ok || apiErr.Kind != core.ErrorKindWebhookSignature {
			t.Fatalf("expected webhook signature error for %q, got %v", body, err)
		}
		if apiErr.Message != "Invalid webhook payload: malformed JSON" {
			t.Fatalf("unexpected message %q", apiErr.Message)
		}
	}
}

func TestParse_NullOptionalsAndBuyerFields(t *testing.T) {
	body := `{"event":"payment.expired","payment_id":"pay_3","external_order_id":null,"tx_hash":null,"paid_at":null,` +
		`"network":"POLYGON","token":"USDC","expected_amount":12.25,"paid_amount":0,"status":"expired",` +
		`"buyer_email":"a@b.test","buyer_name":"Ada","buyer_note":"","payment_link_id":"pl_1","payment_link_slug":"tip-jar",` +
		`"timestamp":"2026-03-14T12:00:00Z"}`

	payload, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.ExternalOrderID != nil || payload.TxHash != nil || payload.PaidAt != nil {
		t.Fatalf("expected null optionals to be nil")
	}
	if !payload.ExpectedAmount.Equal(decimal.RequireFromString("12.25")) || !payload.PaidAmount.IsZero() {
		t.Fatalf("expected numeric amounts, got %s %s", payload.ExpectedAmount, payload.PaidAmount)
	}
	if payload.BuyerEmail == nil || *payload.BuyerEmail != "a@b.test" {
		t.Fatalf("expected buyer email")
	}
	if payload.BuyerNote == nil || *payload.BuyerNote != "" {
		t.Fatalf("expected empty buyer note to be kept")
	}
	if payload.PaymentLinkSlug == nil || *payload.PaymentLinkSlug != "tip-jar" {
		t.Fatalf("expected payment link slug")
	}
}

func TestParse_UnparseableAmountIsRejected(t *testing.T) {
	cases := map[string]string{
		"expected_amount": `{"event":"payment.completed","payment_id":"pay_4","network":"ERC20","expected_amount":"ten","paid_amount":"1","status":"paid","timestamp":"t"}`,
		"paid_amount":     `{"event":"payment.completed","payment_id":"pay_4","network":"ERC20","expected_amount":"10.00","paid_amount":"abc","status":"paid","timestamp":"t"}`,
		"object":          `{"event":"payment.completed","payment_id":"pay_4","network":"ERC20","expected_amount":{},"paid_amount":"1","status":"paid","timestamp":"t"}`,
	}
	for name, body := range cases {
		_, err := Parse([]byte(body))
		if !core.IsWebhookSignature(err) {
			t.Fatalf("%s: expected webhook signature error, got %v", name, err)
		}
		apiErr, _ := core.AsAPIError(err)
		if apiErr.Message != "Invalid webhook payload" {
			t.Fatalf("%s: unexpected message %q", name, apiErr.Message)
		}
	}
}

func TestParse_NumericAndNullAmounts(t *testing.T) {
	body := `{"event":"payment.completed","payment_id":"pay_5","network":"ERC20","expected_amount":12.5,"paid_amount":null,"status":"pending","timestamp":"t"}`
	payload, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.ExpectedAmount.String() != "12.5" || !payload.PaidAmount.IsZero() {
		t.Fatalf("unexpected amounts %s %s", payload.ExpectedAmount, payload.PaidAmount)
	}
}

func TestPayload_DeliveryID(t *testing.T) {
	payload := Payload{PaymentID: "pay_1", Event: core.EventPaymentCompleted, Timestamp: "2026-03-14T12:00:00Z"}
	if got := payload.DeliveryID(); got != "pay_1:payment.completed:2026-03-14T12:00:00Z" {
		t.Fatalf("unexpected delivery id %q", got)
	}
	for _, partial := range []Payload{{Event: core.EventPaymentCompleted}, {PaymentID: "pay_1"}, {Timestamp: "t", PaymentID: " "}} {
		if got := partial.DeliveryID(); got != "" {
			t.Fatalf("expected empty delivery id for %+v, got %q", partial, got)
		}
	}
}
