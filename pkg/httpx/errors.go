package httpx

import (
	"fmt"
	"net/http"
)

// Error codes used in error responses.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidGrant      = "invalid_grant"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientRole  = "insufficient_role"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeGone              = "gone"
	ErrorCodeConflict          = "conflict"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeUnavailable       = "temporarily_unavailable"
	ErrorCodeServerError       = "server_error"
	ErrorCodeMethodUnsupported = "unsupported_method"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Write renders e with its status code.
func (e *Error) Write(w http.ResponseWriter) {
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate",
			`Bearer error="`+e.Code+`", error_description="`+e.Description+`"`)
	}
	WriteJSON(w, e.Status, e)
}

// NewError builds an Error.
func NewError(status int, code, description string) *Error {
	return &Error{Status: status, Code: code, Description: description}
}

// WriteBearerError writes an RFC 6750 invalid_token response.
func WriteBearerError(w http.ResponseWriter, desc string) {
	NewError(http.StatusUnauthorized, ErrorCodeInvalidToken, desc).Write(w)
}
