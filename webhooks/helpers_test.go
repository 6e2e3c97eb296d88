package webhooks

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-payzcore/core"
)

const testSecret = "whsec_test_secret"

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordedLog struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	records []recordedLog
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *recordingLogger) WithContext(context.Context) core.Logger { return l }

func (l *recordingLogger) record(level string, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, recordedLog{level: level, msg: msg, args: append([]any(nil), args...)})
}

func (l *recordingLogger) byLevel(level string) []recordedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []recordedLog{}
	for _, record := range l.records {
		if record.level == level {
			out = append(out, record)
		}
	}
	return out
}

func (r recordedLog) arg(key string) (any, bool) {
	for index := 0; index+1 < len(r.args); index += 2 {
		if name, ok := r.args[index].(string); ok && name == key {
			return r.args[index+1], true
		}
	}
	return nil, false
}

func unixTimestamp(ts time.Time) string {
	return strconv.FormatInt(ts.Unix(), 10)
}

func samplePayloadJSON(event string) string {
	return `{"event":"` + event + `","payment_id":"pay_123","external_ref":"order-9",` +
		`"network":"TRC20","token":"USDT","address":"TXabc","expected_amount":"10.50",` +
		`"paid_amount":"10.50","tx_hash":"0xfeed","status":"paid","paid_at":"2026-03-14T11:59:00Z",` +
		`"metadata":{"plan":"pro"},"timestamp":"2026-03-14T12:00:00Z"}`
}

func signedDelivery(t *testing.T, body string, ts time.Time) Delivery {
	t.Helper()
	timestamp := unixTimestamp(ts)
	headers := http.Header{}
	headers.Set(HeaderSignature, Sign(body, testSecret, timestamp))
	headers.Set(HeaderTimestamp, timestamp)
	return Delivery{Body: []byte(body), Headers: headers}
}
