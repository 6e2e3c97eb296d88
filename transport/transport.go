package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-payzcore/core"
)

const (
	HeaderAPIKey         = "x-api-key"
	HeaderMasterKey      = "x-master-key"
	HeaderRateLimitReset = "X-RateLimit-Reset"
	HeaderRateLimitDaily = "X-RateLimit-Daily"
)

const BaseBackoff = 200 * time.Millisecond

const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

const metricsPrefix = "payzcore.transport"

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	MasterKey  bool
	UserAgent  string

	HTTPClient           core.HTTPDoer
	Logger               core.Logger
	Metrics              core.MetricsRecorder
	Sleeper              core.Sleeper
	MaxResponseBodyBytes int64
}

// ConfigFrom builds a transport config from resolved client settings.
func ConfigFrom(cfg core.Config, deps core.Dependencies) Config {
	return Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
		MasterKey:  cfg.MasterKey,
		UserAgent:  cfg.UserAgent,
		HTTPClient: deps.HTTPClient,
		Logger:     deps.Logger,
		Metrics:    deps.MetricsRecorder,
		Sleeper:    deps.Sleeper,
	}
}

// Transport executes authenticated JSON requests with bounded retries. All
// fields are fixed at construction; concurrent calls share no mutable state.
type Transport struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	authHeader string
	userAgent  string
	client     core.HTTPDoer
	logger     core.Logger
	observer   core.Observer
	sleep      core.Sleeper
	bodyLimit  int64
}

func NewTransport(cfg Config) (*Transport, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, requestError(
			nil,
			goerrors.CategoryBadInput,
			"transport: api key is required",
			nil,
		)
	}
	baseURL := core.Config{BaseURL: cfg.BaseURL}.NormalizedBaseURL()
	if parsed, err := url.Parse(baseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, requestError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid base url",
			map[string]any{"base_url": baseURL},
		)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Duration(core.DefaultTimeoutMS) * time.Millisecond
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	authHeader := HeaderAPIKey
	if cfg.MasterKey {
		authHeader = HeaderMasterKey
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = core.DefaultUserAgent()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := glog.Ensure(cfg.Logger)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = core.SleepContext
	}
	bodyLimit := cfg.MaxResponseBodyBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultResponseBodyLimit
	}

	return &Transport{
		apiKey:     apiKey,
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		authHeader: authHeader,
		userAgent:  userAgent,
		client:     client,
		logger:     logger,
		observer:   core.Observer{Logger: logger, Metrics: metrics, Prefix: metricsPrefix},
		sleep:      sleeper,
		bodyLimit:  bodyLimit,
	}, nil
}

func (t *Transport) BaseURL() string { return t.baseURL }

func (t *Transport) MaxRetries() int { return t.maxRetries }

// AuthHeader returns the header name carrying the API key.
func (t *Transport) AuthHeader() string { return t.authHeader }

// Backoff returns the delay before the given retry, counting from 1.
func Backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	return BaseBackoff * time.Duration(1<<uint(retry-1))
}

type attemptResult struct {
	status  int
	header  http.Header
	body    []byte
	sendErr error
}

// Request runs one logical API call and returns the raw JSON body of the
// successful response. Failures are returned as *core.APIError, except for
// request construction problems which are go-errors envelopes.
func (t *Transport) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if t == nil {
		return nil, requestError(
			nil,
			goerrors.CategoryInternal,
			"transport: transport is not configured",
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	target := t.baseURL + path
	if _, err := url.Parse(target); err != nil {
		return nil, requestError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request path",
			map[string]any{"path": path},
		)
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, requestError(
			err,
			goerrors.CategoryBadInput,
			"transport: encode request body",
			map[string]any{"method": method, "path": path},
		)
	}

	totalAttempts := t.maxRetries + 1
	var lastErr *core.APIError
	for attempt := 0; attempt < totalAttempts; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt)
			t.observer.IncCounter(ctx, "retry.total", 1, map[string]string{"method": method})
			t.observer.Log(ctx, "warn", "payzcore request retry scheduled", map[string]any{
				"method":   method,
				"path":     path,
				"retry":    attempt,
				"delay_ms": delay.Milliseconds(),
				"error":    lastErr.Error(),
			})
			if err := t.sleep(ctx, delay); err != nil {
				return nil, core.NewNetworkError(err, attempt)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, core.NewNetworkError(err, attempt)
		}

		startedAt := time.Now()
		result, err := t.attempt(ctx, method, target, payload)
		if err != nil {
			return nil, err
		}
		fields := map[string]any{
			"method":  method,
			"path":    path,
			"attempt": attempt + 1,
		}

		if result.sendErr != nil {
			fields["status_code"] = 0
			t.observer.ObserveOperation(ctx, startedAt, "request", result.sendErr, fields)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, core.NewNetworkError(ctxErr, attempt+1)
			}
			lastErr = core.NewNetworkError(result.sendErr, attempt+1)
			continue
		}

		fields["status_code"] = result.status
		if result.status >= 200 && result.status < 300 {
			t.observer.ObserveOperation(ctx, startedAt, "request", nil, fields)
			return decodeSuccess(result)
		}

		apiErr := buildAPIError(result)
		apiErr.Attempts = attempt + 1
		fields["error_kind"] = apiErr.Kind
		t.observer.ObserveOperation(ctx, startedAt, "request", apiErr, fields)
		if !apiErr.Retryable() {
			return nil, apiErr
		}
		lastErr = apiErr
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, core.NewGenericError("Network request failed", 0, core.CodeNetwork)
}

// Do runs Request and decodes the response into out when out is non-nil.
func (t *Transport) Do(ctx context.Context, method, path string, body any, out any) error {
	raw, err := t.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		apiErr := core.NewGenericError("API response did not match the expected shape", 0, core.CodeAPI)
		apiErr.Cause = err
		return apiErr
	}
	return nil
}

func (t *Transport) attempt(ctx context.Context, method, target string, payload []byte) (attemptResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return attemptResult{}, requestError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			map[string]any{"method": method, "url": target},
		)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(t.authHeader, t.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	t.logger.Debug("payzcore request attempt", "method", method, "url", target)
	res, err := t.client.Do(req)
	if err != nil {
		return attemptResult{sendErr: err}, nil
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, t.bodyLimit+1))
	if err != nil {
		return attemptResult{sendErr: fmt.Errorf("read response body: %w", err)}, nil
	}
	if int64(len(body)) > t.bodyLimit {
		return attemptResult{sendErr: fmt.Errorf("response body exceeds limit of %d bytes", t.bodyLimit)}, nil
	}
	return attemptResult{status: res.StatusCode, header: res.Header, body: body}, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if raw, ok := body.(json.RawMessage); ok {
		if len(raw) == 0 {
			return nil, nil
		}
		if !json.Valid(raw) {
			return nil, errors.New("raw body is not valid JSON")
		}
		return raw, nil
	}
	return json.Marshal(body)
}

func decodeSuccess(result attemptResult) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(result.body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		apiErr := core.NewGenericError("API returned a malformed JSON response", result.status, core.CodeAPI)
		apiErr.Cause = errors.New("invalid JSON in successful response")
		return nil, apiErr
	}
	return json.RawMessage(trimmed), nil
}

