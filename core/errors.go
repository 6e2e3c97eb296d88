package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

type ErrorKind string

const (
	ErrorKindAuthentication   ErrorKind = "authentication"
	ErrorKindForbidden        ErrorKind = "forbidden"
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindRateLimit        ErrorKind = "rate_limit"
	ErrorKindIdempotency      ErrorKind = "idempotency"
	ErrorKindGeneric          ErrorKind = "generic"
	ErrorKindWebhookSignature ErrorKind = "webhook_signature"
)

const (
	CodeAuthentication = "authentication_error"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeValidation     = "validation_error"
	CodeRateLimit      = "rate_limit_error"
	CodeIdempotency    = "idempotency_error"
	CodeAPI            = "api_error"
	CodeNetwork        = "network_error"
)

// Text codes attached to go-errors envelopes.
const (
	ServiceErrorBadInput         = "PAYZCORE_BAD_INPUT"
	ServiceErrorUnauthenticated  = "PAYZCORE_UNAUTHENTICATED"
	ServiceErrorForbidden        = "PAYZCORE_FORBIDDEN"
	ServiceErrorNotFound         = "PAYZCORE_NOT_FOUND"
	ServiceErrorRateLimited      = "PAYZCORE_RATE_LIMITED"
	ServiceErrorIdempotency      = "PAYZCORE_IDEMPOTENCY_CONFLICT"
	ServiceErrorUpstream         = "PAYZCORE_UPSTREAM_ERROR"
	ServiceErrorNetwork          = "PAYZCORE_NETWORK_ERROR"
	ServiceErrorWebhookSignature = "PAYZCORE_WEBHOOK_SIGNATURE"
	ServiceErrorInternal         = "PAYZCORE_INTERNAL_ERROR"
)

type ErrorDetail struct {
	Code    string `json:"code"`
	Path    []any  `json:"path,omitempty"`
	Message string `json:"message"`
}

// APIError is the single error type returned by the SDK for API and webhook
// failures. Status and Code are fixed per Kind, except for generic errors.
type APIError struct {
	Kind       ErrorKind
	Message    string
	Status     int
	Code       string
	Details    []ErrorDetail
	RetryAfter *int
	IsDaily    bool
	Limit      *int
	Plan       string
	Attempts   int
	Cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status > 0 {
		return fmt.Sprintf("payzcore: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	if e.Code != "" {
		return fmt.Sprintf("payzcore: %s (code %s)", e.Message, e.Code)
	}
	return "payzcore: " + e.Message
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retryable reports whether the transport treats the failure as transient.
func (e *APIError) Retryable() bool {
	if e == nil {
		return false
	}
	if e.Code == CodeNetwork {
		return true
	}
	return e.Kind == ErrorKindGeneric && e.Status >= 500 && e.Status <= 599
}

type kindSpec struct {
	status         int
	code           string
	defaultMessage string
}

var kindSpecs = map[ErrorKind]kindSpec{
	ErrorKindAuthentication:   {status: http.StatusUnauthorized, code: CodeAuthentication, defaultMessage: "Invalid or missing API key"},
	ErrorKindForbidden:        {status: http.StatusForbidden, code: CodeForbidden, defaultMessage: "Access denied"},
	ErrorKindNotFound:         {status: http.StatusNotFound, code: CodeNotFound, defaultMessage: "Resource not found"},
	ErrorKindValidation:       {status: http.StatusBadRequest, code: CodeValidation, defaultMessage: "Validation failed"},
	ErrorKindRateLimit:        {status: http.StatusTooManyRequests, code: CodeRateLimit, defaultMessage: "Rate limit exceeded"},
	ErrorKindIdempotency:      {status: http.StatusConflict, code: CodeIdempotency, defaultMessage: "Duplicate request: idempotency conflict"},
	ErrorKindGeneric:          {code: CodeAPI, defaultMessage: "API request failed"},
	ErrorKindWebhookSignature: {defaultMessage: "Invalid webhook signature"},
}

func newKindError(kind ErrorKind, message string) *APIError {
	spec := kindSpecs[kind]
	if strings.TrimSpace(message) == "" {
		message = spec.defaultMessage
	}
	return &APIError{
		Kind:    kind,
		Message: message,
		Status:  spec.status,
		Code:    spec.code,
	}
}

func NewAuthenticationError(message string) *APIError {
	return newKindError(ErrorKindAuthentication, message)
}

func NewForbiddenError(message string) *APIError {
	return newKindError(ErrorKindForbidden, message)
}

func NewNotFoundError(message string) *APIError {
	return newKindError(ErrorKindNotFound, message)
}

func NewValidationError(message string, details []ErrorDetail) *APIError {
	err := newKindError(ErrorKindValidation, message)
	if len(details) > 0 {
		err.Details = append([]ErrorDetail(nil), details...)
	}
	return err
}

func NewRateLimitError(message string, retryAfter *int, isDaily bool) *APIError {
	err := newKindError(ErrorKindRateLimit, message)
	if retryAfter != nil {
		value := *retryAfter
		err.RetryAfter = &value
	}
	err.IsDaily = isDaily
	return err
}

func NewIdempotencyError(message string) *APIError {
	return newKindError(ErrorKindIdempotency, message)
}

func NewGenericError(message string, status int, code string) *APIError {
	err := newKindError(ErrorKindGeneric, message)
	err.Status = status
	if strings.TrimSpace(code) != "" {
		err.Code = code
	}
	return err
}

func NewWebhookSignatureError(message string) *APIError {
	return newKindError(ErrorKindWebhookSignature, message)
}

// NewNetworkError reports a request that never produced an HTTP response
// after all attempts.
func NewNetworkError(cause error, attempts int) *APIError {
	message := "Network request failed"
	if cause != nil {
		message = "Network request failed: " + cause.Error()
	}
	err := NewGenericError(message, 0, CodeNetwork)
	err.Cause = cause
	err.Attempts = attempts
	return err
}

type statusConstructor func(message string, details []ErrorDetail, rateLimit RateLimitInfo) *APIError

// RateLimitInfo carries the rate-limit headers of a 429 response.
type RateLimitInfo struct {
	RetryAfter *int
	IsDaily    bool
}

var statusTable = map[int]statusConstructor{
	http.StatusBadRequest: func(message string, details []ErrorDetail, _ RateLimitInfo) *APIError {
		return NewValidationError(message, details)
	},
	http.StatusUnauthorized: func(message string, _ []ErrorDetail, _ RateLimitInfo) *APIError {
		return NewAuthenticationError(message)
	},
	http.StatusForbidden: func(message string, _ []ErrorDetail, _ RateLimitInfo) *APIError {
		return NewForbiddenError(message)
	},
	http.StatusNotFound: func(message string, _ []ErrorDetail, _ RateLimitInfo) *APIError {
		return NewNotFoundError(message)
	},
	http.StatusConflict: func(message string, _ []ErrorDetail, _ RateLimitInfo) *APIError {
		return NewIdempotencyError(message)
	},
	http.StatusTooManyRequests: func(message string, _ []ErrorDetail, rateLimit RateLimitInfo) *APIError {
		return NewRateLimitError(message, rateLimit.RetryAfter, rateLimit.IsDaily)
	},
}

// ErrorFromStatus maps an HTTP status to its error kind. Statuses without an
// entry produce a generic api_error carrying the status.
func ErrorFromStatus(status int, message string, details []ErrorDetail, rateLimit RateLimitInfo) *APIError {
	if build, ok := statusTable[status]; ok {
		return build(message, details, rateLimit)
	}
	return NewGenericError(message, status, CodeAPI)
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

func IsAuthentication(err error) bool { return isKind(err, ErrorKindAuthentication) }

func IsForbidden(err error) bool { return isKind(err, ErrorKindForbidden) }

func IsNotFound(err error) bool { return isKind(err, ErrorKindNotFound) }

func IsValidation(err error) bool { return isKind(err, ErrorKindValidation) }

func IsRateLimit(err error) bool { return isKind(err, ErrorKindRateLimit) }

func IsIdempotency(err error) bool { return isKind(err, ErrorKindIdempotency) }

func IsWebhookSignature(err error) bool { return isKind(err, ErrorKindWebhookSignature) }

func IsNetwork(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == CodeNetwork
}

var kindCategories = map[ErrorKind]goerrors.Category{
	ErrorKindAuthentication:   goerrors.CategoryAuth,
	ErrorKindForbidden:        goerrors.CategoryAuthz,
	ErrorKindNotFound:         goerrors.CategoryNotFound,
	ErrorKindValidation:       goerrors.CategoryValidation,
	ErrorKindRateLimit:        goerrors.CategoryRateLimit,
	ErrorKindIdempotency:      goerrors.CategoryConflict,
	ErrorKindGeneric:          goerrors.CategoryExternal,
	ErrorKindWebhookSignature: goerrors.CategoryAuth,
}

var kindTextCodes = map[ErrorKind]string{
	ErrorKindAuthentication:   ServiceErrorUnauthenticated,
	ErrorKindForbidden:        ServiceErrorForbidden,
	ErrorKindNotFound:         ServiceErrorNotFound,
	ErrorKindValidation:       ServiceErrorBadInput,
	ErrorKindRateLimit:        ServiceErrorRateLimited,
	ErrorKindIdempotency:      ServiceErrorIdempotency,
	ErrorKindGeneric:          ServiceErrorUpstream,
	ErrorKindWebhookSignature: ServiceErrorWebhookSignature,
}

// ToServiceError converts the error into a go-errors envelope.
func (e *APIError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	category, ok := kindCategories[e.Kind]
	if !ok {
		category = goerrors.CategoryExternal
	}
	textCode := kindTextCodes[e.Kind]
	if e.Code == CodeNetwork {
		textCode = ServiceErrorNetwork
	}

	var out *goerrors.Error
	if e.Kind == ErrorKindValidation && len(e.Details) > 0 {
		fields := make([]goerrors.FieldError, 0, len(e.Details))
		for _, detail := range e.Details {
			fields = append(fields, goerrors.FieldError{
				Field:   detailField(detail.Path),
				Message: detail.Message,
				Value:   detail.Code,
			})
		}
		out = goerrors.NewValidation(e.Message, fields...)
	} else if e.Cause != nil {
		out = goerrors.Wrap(e.Cause, category, e.Message)
	} else {
		out = goerrors.New(e.Message, category)
	}

	metadata := map[string]any{
		"kind": string(e.Kind),
		"code": e.Code,
	}
	if e.Status > 0 {
		metadata["status"] = e.Status
	}
	if e.RetryAfter != nil {
		metadata["retry_after"] = *e.RetryAfter
	}
	if e.Kind == ErrorKindRateLimit {
		metadata["is_daily"] = e.IsDaily
	}
	if e.Limit != nil {
		metadata["limit"] = *e.Limit
	}
	if e.Plan != "" {
		metadata["plan"] = e.Plan
	}
	if e.Attempts > 0 {
		metadata["attempts"] = e.Attempts
	}

	return ensureServiceErrorEnvelope(
		out.WithTextCode(textCode).WithMetadata(metadata),
		e.Status,
	)
}

func detailField(path []any) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, 0, len(path))
	for _, segment := range path {
		parts = append(parts, fmt.Sprint(segment))
	}
	return strings.Join(parts, ".")
}

// MapError converts any error into a go-errors envelope.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.ToServiceError()
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr, 0)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped, 0)
}

func ensureServiceErrorEnvelope(err *goerrors.Error, status int) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		if status > 0 {
			err.Code = status
		} else {
			err.Code = serviceHTTPStatus(err.Category)
		}
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryAuth:
		return ServiceErrorUnauthenticated
	case goerrors.CategoryAuthz:
		return ServiceErrorForbidden
	case goerrors.CategoryConflict:
		return ServiceErrorIdempotency
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryExternal:
		return ServiceErrorUpstream
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
