package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-payzcore/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// commandServiceError converts SDK errors into go-errors envelopes so command
// callers see one error shape.
func commandServiceError(err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := core.AsAPIError(err); ok {
		return apiErr.ToServiceError()
	}
	return err
}
