package apierror

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the error envelope.
const (
	CodeNetwork         = "NETWORK_ERROR"
	CodeTimeout         = "TIMEOUT"
	CodeAPI             = "API_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeStorage         = "STORAGE_ERROR"
	CodeNotAvailable    = "EXTENSION_NOT_AVAILABLE"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeItemNotFound    = "ITEM_NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeUnknown         = "UNKNOWN"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// Body returns the envelope {success:false, message, code[, details]}.
func (e *Error) Body() map[string]interface{} {
	body := map[string]interface{}{
		"success": false,
		"message": e.Message,
		"code":    e.Code,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return body
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(e.Body())
	return data
}

func newError(status int, code, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{StatusCode: status, Code: code, Message: message}
}

// Network reports that the market website could not be reached.
func Network(message string) *Error {
	return newError(http.StatusBadGateway, CodeNetwork, message, "Market website unreachable")
}

// Timeout reports that the market website did not answer in time.
func Timeout(message string) *Error {
	return newError(http.StatusGatewayTimeout, CodeTimeout, message, "Market website timed out")
}

// Upstream reports a non-success status from the market website.
func Upstream(message string) *Error {
	return newError(http.StatusBadGateway, CodeAPI, message, "Market website returned an error")
}

// InvalidResponse reports an unparseable market website response.
func InvalidResponse(message string) *Error {
	return newError(http.StatusBadGateway, CodeInvalidResponse, message, "Market website returned an unexpected response")
}

// Storage reports a durable storage failure.
func Storage(message string) *Error {
	return newError(http.StatusInternalServerError, CodeStorage, message, "Storage failure")
}

// NotAvailable reports that a required capability is not configured.
func NotAvailable(message string) *Error {
	return newError(http.StatusServiceUnavailable, CodeNotAvailable, message, "Capability not available")
}

// InvalidInput creates a 400 error with optional field details.
func InvalidInput(message string, details ...FieldError) *Error {
	e := newError(http.StatusBadRequest, CodeInvalidInput, message, "Invalid input")
	e.Details = details
	return e
}

// ItemNotFound reports an unknown tracked item.
func ItemNotFound(message string) *Error {
	return newError(http.StatusNotFound, CodeItemNotFound, message, "Item not found")
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message, "Authentication required")
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	return newError(http.StatusNotFound, CodeNotFound, message, "Resource not found")
}

// Unknown creates a 500 error for anything unclassified.
func Unknown(message string) *Error {
	return newError(http.StatusInternalServerError, CodeUnknown, message, "An unexpected error occurred")
}
