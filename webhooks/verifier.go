package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-payzcore/core"
)

const (
	HeaderSignature = "X-PayzCore-Signature"
	HeaderTimestamp = "X-PayzCore-Timestamp"
)

const DefaultTolerance = 5 * time.Minute

// Unix values at or above this are read as milliseconds.
const unixMillisThreshold = 1_000_000_000_000

// Verifier checks webhook signatures against one secret. A zero Tolerance
// on the struct falls back to DefaultTolerance; use Verify or WithTolerance
// to require an exact timestamp match.
type Verifier struct {
	Secret    string
	Tolerance time.Duration
	Now       func() time.Time

	explicit bool
}

// Verify reports whether signature is the expected HMAC for body and
// timestamp, and whether timestamp lies within the replay window. The
// tolerance is taken literally, so 0 allows no skew. Negative values use
// DefaultTolerance.
func Verify(body, signature, secret, timestamp string, tolerance time.Duration) bool {
	return Verifier{Secret: secret, Tolerance: tolerance, explicit: true}.Verify(body, signature, timestamp)
}

func (v Verifier) Verify(body, signature, timestamp string) bool {
	if body == "" || signature == "" || v.Secret == "" || timestamp == "" {
		return false
	}
	ts, ok := ParseTimestamp(timestamp)
	if !ok {
		return false
	}
	delta := v.now().Sub(ts)
	if delta < 0 {
		delta = -delta
	}
	if delta > v.tolerance() {
		return false
	}

	expected := Sign(body, v.Secret, timestamp)
	if len(signature) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}

// ConstructEvent verifies the delivery and parses its payload.
func (v Verifier) ConstructEvent(body, signature, timestamp string, parser *Parser) (Payload, error) {
	if !v.Verify(body, signature, timestamp) {
		return Payload{}, core.NewWebhookSignatureError("")
	}
	payload, err := parser.Parse([]byte(body))
	if err != nil {
		return Payload{}, core.NewWebhookSignatureError("Invalid webhook payload")
	}
	return payload, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of timestamp + "." + body.
func Sign(body, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseTimestamp accepts RFC 3339 values and unix seconds or milliseconds.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if isDigits(value) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if n >= unixMillisThreshold {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func (v Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}

func (v Verifier) tolerance() time.Duration {
	if v.Tolerance > 0 || (v.explicit && v.Tolerance == 0) {
		return v.Tolerance
	}
	return DefaultTolerance
}

type eventOptions struct {
	tolerance    time.Duration
	hasTolerance bool
	now       func() time.Time
	logger    core.Logger
}

type EventOption func(*eventOptions)

// WithTolerance sets the replay window. 0 allows no skew; negative values
// use DefaultTolerance.
func WithTolerance(tolerance time.Duration) EventOption {
	return func(o *eventOptions) {
		o.tolerance = tolerance
		o.hasTolerance = true
	}
}

func WithClock(now func() time.Time) EventOption {
	return func(o *eventOptions) {
		o.now = now
	}
}

func WithLogger(logger core.Logger) EventOption {
	return func(o *eventOptions) {
		o.logger = logger
	}
}

// ConstructEvent verifies the delivery and returns its parsed payload. Any
// failure, including a malformed body behind a valid signature, is a
// webhook signature error.
func ConstructEvent(body, signature, secret, timestamp string, opts ...EventOption) (Payload, error) {
	options := eventOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	verifier := Verifier{
		Secret:    secret,
		Tolerance: options.tolerance,
		Now:       options.now,
		explicit:  options.hasTolerance,
	}
	return verifier.ConstructEvent(body, signature, timestamp, &Parser{Logger: options.logger})
}
