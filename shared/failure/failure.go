package failure

import (
	"errors"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var InvalidSkipParam = &Failure{Code: http.StatusUnprocessableEntity, Message: "skip must be a non-negative integer"}
var InvalidLimitParam = &Failure{Code: http.StatusUnprocessableEntity, Message: "limit must be a non-negative integer"}
var InvalidIDParam = &Failure{Code: http.StatusUnprocessableEntity, Message: "id must be an integer"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Unprocessable returns a new Failure for a request whose payload is missing
// or carries invalid fields.
func Unprocessable(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		}
	}

	return nil
}

// UnprocessableFromString is Unprocessable with the message set from a string.
func UnprocessableFromString(msg string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: msg,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(message string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: message,
	}
}

// ServiceUnavailable returns a new Failure for a dependency that cannot be reached.
func ServiceUnavailable(message string) error {
	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsNotFound reports whether err carries a 404 Failure.
func IsNotFound(err error) bool {
	return GetCode(err) == http.StatusNotFound
}
