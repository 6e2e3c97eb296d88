package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
)

// requestError reports a call that never reached the API. API outcomes are
// *core.APIError instead.
func requestError(source error, category goerrors.Category, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, category, message)
	} else {
		err = goerrors.New(message, category)
	}
	status, textCode := http.StatusInternalServerError, core.ServiceErrorInternal
	if category == goerrors.CategoryBadInput {
		status, textCode = http.StatusBadRequest, core.ServiceErrorBadInput
	}
	err = err.WithCode(status).WithTextCode(textCode)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
	Limit   *int            `json:"limit,omitempty"`
	Plan    string          `json:"plan,omitempty"`
}

func parseErrorBody(status int, body []byte) errorBody {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		message := http.StatusText(status)
		if message == "" {
			message = "Unknown error"
		}
		return errorBody{Error: message}
	}
	return parsed
}

func parseDetails(raw json.RawMessage) []core.ErrorDetail {
	if len(raw) == 0 {
		return nil
	}
	var details []core.ErrorDetail
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil
	}
	return details
}

func parseRateLimit(header http.Header) core.RateLimitInfo {
	info := core.RateLimitInfo{
		IsDaily: header.Get(HeaderRateLimitDaily) == "true",
	}
	if reset := strings.TrimSpace(header.Get(HeaderRateLimitReset)); reset != "" {
		if value, err := strconv.Atoi(reset); err == nil {
			info.RetryAfter = &value
		}
	}
	return info
}

func buildAPIError(result attemptResult) *core.APIError {
	parsed := parseErrorBody(result.status, result.body)
	var rateLimit core.RateLimitInfo
	if result.status == http.StatusTooManyRequests {
		rateLimit = parseRateLimit(result.header)
	}
	apiErr := core.ErrorFromStatus(result.status, parsed.Error, parseDetails(parsed.Details), rateLimit)
	if parsed.Limit != nil {
		limit := *parsed.Limit
		apiErr.Limit = &limit
	}
	apiErr.Plan = parsed.Plan
	return apiErr
}
