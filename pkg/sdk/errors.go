package braintrust

import (
	"errors"
	"fmt"
)

// Error codes returned by the API.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeThreadNotFound   = "thread_not_found"
	CodeInternalError    = "internal_error"
)

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("braintrust: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError for a missing thread.
func IsNotFound(err error) bool {
	return hasCode(err, CodeThreadNotFound)
}

// IsValidation reports whether err is an APIError for a rejected request.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidationFailed) || hasCode(err, CodeBadRequest)
}

func hasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
