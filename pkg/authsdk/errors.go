package authsdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

// ErrNoRefreshToken is returned when the session must refresh but holds no
// refresh token.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// parseErrorResponse converts a non-2xx response into *httpx.Error.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return httpx.NewError(resp.StatusCode, errResp.Error, errResp.ErrorDescription)
	}

	// Bodies without an error code, e.g. a degraded /readyz.
	desc := strings.TrimSpace(string(body))
	if desc == "" {
		desc = http.StatusText(resp.StatusCode)
	}
	return httpx.NewError(resp.StatusCode, fallbackCode(resp.StatusCode), desc)
}

func fallbackCode(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return httpx.ErrorCodeRateLimited
	case http.StatusServiceUnavailable:
		return httpx.ErrorCodeUnavailable
	case http.StatusNotFound:
		return httpx.ErrorCodeNotFound
	}
	if status >= 500 {
		return httpx.ErrorCodeServerError
	}
	return httpx.ErrorCodeInvalidRequest
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a server response.
func StatusCode(err error) int {
	var apiErr *httpx.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ErrorCode returns the error code carried by err, or "" when err did not
// come from a server response.
func ErrorCode(err error) string {
	var apiErr *httpx.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
