package httpx

import "github.com/labstack/echo/v4"

// Closed set of machine-readable error codes exposed by the API.
// Handlers must not invent codes outside this list
const (
	CodeInvalidCredentials = "AUTH_001"
	CodeTokenExpired       = "AUTH_002"
	CodeTokenMalformed     = "AUTH_003"
	CodeTokenRevoked       = "AUTH_004"
	CodeOTPMismatch        = "OTP_001"
	CodeOTPExpired         = "OTP_002"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeEmailInUse         = "EMAIL_ALREADY_IN_USE"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// APIError is the standard payload for all error API responses (4xx and 5xx status codes)
// It provides a consistent, machine-readable format for clients to handle failures
type APIError struct {
	Code    string `json:"code"`              // A machine-readable error code from the closed set above
	Message string `json:"message"`           // A human-readable message intended for the developer consuming the API
	Details any    `json:"details,omitempty"` // An optional field for providing more specific context, like a slice of validation errors
}

// errorEnvelope wraps the APIError under a fixed "error" key so that error
// responses are distinguishable from Success payloads by shape alone
type errorEnvelope struct {
	Error APIError `json:"error"`
}

// NewAPIError creates a new APIError response structure
func NewAPIError(code, message string, details any) APIError {
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// SendAPIError is a helper function to standardize sending error JSON responses
func SendAPIError(c echo.Context, httpStatus int, err APIError) error {
	return c.JSON(httpStatus, errorEnvelope{Error: err})
}
