package http

import (
	"errors"
	"net/http"

	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "5"

// writeServiceError renders a service error with its HTTP status. It also
// serves as the httpx.ErrorWriter of the authentication middleware.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	e := mapServiceError(err)
	switch {
	case e.Status == http.StatusServiceUnavailable:
		slogx.FromContext(r.Context()).Error("dependency unavailable", "error", err)
		w.Header().Set("Retry-After", retryAfterSeconds)
	case e.Status >= http.StatusInternalServerError:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	e.Write(w)
}

func mapServiceError(err error) *httpx.Error {
	switch {
	case errors.Is(err, service.ErrUnavailable):
		return httpx.NewError(http.StatusServiceUnavailable, httpx.ErrorCodeUnavailable, "a backing service is unavailable")
	case errors.Is(err, service.ErrInvalidUserOrPassword):
		return httpx.NewError(http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant, "invalid user or password")
	case errors.Is(err, service.ErrTokenNotFound):
		return httpx.NewError(http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant, "token is not active")
	case errors.Is(err, service.ErrInvalidToken):
		return httpx.NewError(http.StatusUnauthorized, httpx.ErrorCodeInvalidToken, "token is invalid")
	case errors.Is(err, service.ErrExpiredToken):
		return httpx.NewError(http.StatusUnauthorized, httpx.ErrorCodeInvalidToken, "token has expired")
	case errors.Is(err, service.ErrTokenRevoked):
		return httpx.NewError(http.StatusUnauthorized, httpx.ErrorCodeInvalidToken, "token has been revoked")
	case errors.Is(err, service.ErrForbidden):
		return httpx.NewError(http.StatusForbidden, httpx.ErrorCodeInsufficientRole, "missing required role")
	case errors.Is(err, service.ErrUserNotFound):
		return httpx.NewError(http.StatusNotFound, httpx.ErrorCodeNotFound, "user not found")
	case errors.Is(err, service.ErrFingerprintNotFound):
		return httpx.NewError(http.StatusNotFound, httpx.ErrorCodeNotFound, "no session for this device")
	case errors.Is(err, service.ErrRoleNotFound):
		return httpx.NewError(http.StatusNotFound, httpx.ErrorCodeNotFound, "role not found")
	case errors.Is(err, service.ErrAccessNotFound):
		return httpx.NewError(http.StatusNotFound, httpx.ErrorCodeNotFound, "access grant not found")
	case errors.Is(err, service.ErrUserDeleted):
		return httpx.NewError(http.StatusGone, httpx.ErrorCodeGone, "user has been deleted")
	case errors.Is(err, service.ErrAlreadyExists):
		return httpx.NewError(http.StatusConflict, httpx.ErrorCodeConflict, "resource already exists")
	case errors.Is(err, service.ErrInvalidRequest):
		return httpx.NewError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest, "request validation failed")
	default:
		return httpx.NewError(http.StatusInternalServerError, httpx.ErrorCodeServerError, "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.NewError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest, desc).Write(w)
}
