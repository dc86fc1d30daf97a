package service

import (
	"errors"
	"fmt"

	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
)

var (
	ErrInvalidUserOrPassword = errors.New("invalid_user_or_password")
	ErrInvalidToken          = errors.New("invalid_token")
	ErrExpiredToken          = errors.New("expired_token")
	ErrTokenNotFound         = errors.New("token_not_found")
	ErrFingerprintNotFound   = errors.New("fingerprint_not_found")
	ErrUserNotFound          = errors.New("user_not_found")
	ErrUserDeleted           = errors.New("user_deleted")
	ErrAlreadyExists         = errors.New("already_exists")
	ErrTokenRevoked          = errors.New("token_revoked")
	ErrForbidden             = errors.New("forbidden")
	ErrRoleNotFound          = errors.New("role_not_found")
	ErrAccessNotFound        = errors.New("access_not_found")
	ErrInvalidRequest        = errors.New("invalid_request")

	// ErrUnavailable marks infrastructure failures: the store or the
	// revocation cache could not be reached, or the request was cancelled.
	ErrUnavailable = errors.New("unavailable")
)

// unavailable wraps an infrastructure error so callers can tell it apart from
// a credential failure.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// mapTokenErr translates codec errors into service errors.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpiredToken):
		return ErrExpiredToken
	case errors.Is(err, jwtx.ErrInvalidToken):
		return ErrInvalidToken
	default:
		return err
	}
}

// mapStoreErr replaces store.ErrNotFound with notFound, store.ErrAlreadyExists
// with ErrAlreadyExists and marks everything else unavailable. Errors that
// already belong to this package pass through.
func mapStoreErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrAlreadyExists
	case isServiceErr(err):
		return err
	default:
		return unavailable(err)
	}
}

func isServiceErr(err error) bool {
	for _, target := range []error{
		ErrInvalidUserOrPassword, ErrInvalidToken, ErrExpiredToken, ErrTokenNotFound,
		ErrFingerprintNotFound, ErrUserNotFound, ErrUserDeleted, ErrAlreadyExists,
		ErrTokenRevoked, ErrForbidden, ErrRoleNotFound, ErrAccessNotFound,
		ErrInvalidRequest, ErrUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
