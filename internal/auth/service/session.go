package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/revocation"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/idx"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

// DefaultLoginPattern is the login format accepted when none is configured.
var DefaultLoginPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,50}$`)

// TokenTypeBearer is reported in every TokenPair.
const TokenTypeBearer = "Bearer"

// RoleResolver returns the role titles currently granted to a user.
type RoleResolver interface {
	ListRoleTitles(ctx context.Context, login string) ([]string, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(encodedHash, password string) error
}

// SessionService issues, rotates and revokes token pairs bound to a device
// fingerprint. It keeps no state between calls; every operation re-reads the
// store.
type SessionService struct {
	Codec       *jwtx.Codec
	Store       store.Store
	Roles       RoleResolver
	Passwords   PasswordVerifier
	Revocations revocation.Cache

	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	LoginPattern *regexp.Regexp

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) validLogin(login string) bool {
	p := s.LoginPattern
	if p == nil {
		p = DefaultLoginPattern
	}
	return p.MatchString(login)
}

// Login checks the credentials and issues a token pair for the device
// identified by fingerprint. A device keeps a single session record: logging
// in again from it overwrites the stored refresh token.
//
// Returns:
//   - ErrInvalidUserOrPassword for a malformed login, an unknown or deleted
//     user, or a wrong password. The cases are not told apart.
//   - ErrInvalidRequest when fingerprint is empty.
//   - ErrAlreadyExists when a concurrent login for the same device won the
//     race to create the session record.
//   - ErrUnavailable wrapping store failures.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials, fingerprint string) (domain.TokenPair, error) {
	if !s.validLogin(creds.Login) {
		return domain.TokenPair{}, ErrInvalidUserOrPassword
	}
	if fingerprint == "" {
		return domain.TokenPair{}, ErrInvalidRequest
	}

	user, err := s.Store.Users().GetUserByLogin(ctx, creds.Login)
	if err != nil {
		return domain.TokenPair{}, mapStoreErr(err, ErrInvalidUserOrPassword)
	}
	if !user.IsActive {
		return domain.TokenPair{}, ErrInvalidUserOrPassword
	}
	ctx = slogx.WithSession(ctx, user.Login, fingerprint)
	l := slogx.FromContext(ctx)
	if err := s.Passwords.Verify(user.PasswordHash, creds.Password); err != nil {
		l.Info("login rejected")
		return domain.TokenPair{}, ErrInvalidUserOrPassword
	}

	roles, err := s.Roles.ListRoleTitles(ctx, user.Login)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, refreshExp, err := s.mint(user.Login, fingerprint, roles)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		fp, err := tx.Fingerprints().GetFingerprint(ctx, user.ID, fingerprint)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fp = domain.Fingerprint{ID: idx.New().String(), UserID: user.ID, Value: fingerprint}
			if err := tx.Fingerprints().CreateFingerprint(ctx, fp); err != nil {
				return err
			}
		case err != nil:
			return err
		case fp.RefreshToken != nil:
			return tx.RefreshTokens().ReplaceRefreshToken(ctx, fp.RefreshToken.ID, pair.RefreshToken, refreshExp)
		}

		return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:            idx.New().String(),
			UserID:        user.ID,
			FingerprintID: fp.ID,
			Token:         pair.RefreshToken,
			ExpiresAt:     refreshExp,
		})
	})
	if err != nil {
		l.Warn("login session write failed", slog.Any("error", err))
		return domain.TokenPair{}, mapStoreErr(err, ErrUnavailable)
	}

	l.Info("login succeeded")
	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair. The stored record
// is rotated in place, so the presented token stops working once this call
// returns.
//
// Returns:
//   - ErrInvalidToken for a malformed or forged token.
//   - ErrTokenNotFound when the token is not the one currently stored,
//     including when a concurrent refresh rotated it first.
//   - ErrExpiredToken when the token is stored but past its expiry.
//   - ErrUserNotFound or ErrUserDeleted when the subject is gone.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if err := s.Codec.Verify(refreshToken); err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	rec, err := s.Store.RefreshTokens().GetRefreshTokenByToken(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, mapStoreErr(err, ErrTokenNotFound)
	}

	var payload jwtx.RefreshPayload
	if err := s.Codec.DecodePayload(refreshToken, &payload); err != nil {
		return domain.TokenPair{}, mapTokenErr(err)
	}

	user, err := s.Store.Users().GetUserByLogin(ctx, payload.Subject)
	if err != nil {
		return domain.TokenPair{}, mapStoreErr(err, ErrUserNotFound)
	}
	if !user.IsActive {
		return domain.TokenPair{}, ErrUserDeleted
	}
	ctx = slogx.WithSession(ctx, user.Login, payload.Fingerprint)
	l := slogx.FromContext(ctx)
	if user.ID != rec.UserID {
		// The login was released and taken by someone else.
		return domain.TokenPair{}, ErrTokenNotFound
	}

	roles, err := s.Roles.ListRoleTitles(ctx, user.Login)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, refreshExp, err := s.mint(user.Login, payload.Fingerprint, roles)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.RefreshTokens().RotateRefreshToken(ctx, rec.ID, refreshToken, pair.RefreshToken, refreshExp)
	if err != nil {
		return domain.TokenPair{}, mapStoreErr(err, ErrTokenNotFound)
	}

	l.Info("refresh token rotated")
	return pair, nil
}

// Logout ends the session of the device the access token was issued to, or
// every session of its owner when everywhere is set. The access token itself
// is denylisted until it would have expired.
//
// A token that is authentic but has no session left to end is still
// denylisted before the not-found error is returned, so a retry after a
// cache failure completes the revocation.
//
// Returns:
//   - ErrTokenRevoked when the access token is already denylisted.
//   - ErrInvalidToken or ErrExpiredToken when the access token is unusable.
//   - ErrUserNotFound when the subject no longer exists.
//   - ErrFingerprintNotFound or ErrTokenNotFound when the device has no
//     session to end.
//   - ErrUnavailable when the store or the revocation cache failed.
func (s *SessionService) Logout(ctx context.Context, accessToken string, everywhere bool) error {
	_, revoked, err := s.Revocations.Get(ctx, accessToken)
	if err != nil {
		return unavailable(err)
	}
	if revoked {
		return ErrTokenRevoked
	}

	if err := s.Codec.Verify(accessToken); err != nil {
		return ErrInvalidToken
	}
	var payload jwtx.AccessPayload
	if err := s.Codec.DecodePayload(accessToken, &payload); err != nil {
		return mapTokenErr(err)
	}

	err = s.endSessions(ctx, payload, everywhere)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrFingerprintNotFound),
		errors.Is(err, ErrTokenNotFound):
		if rerr := s.revoke(ctx, accessToken, payload); rerr != nil {
			return rerr
		}
		return err
	default:
		return err
	}

	return s.revoke(ctx, accessToken, payload)
}

// endSessions deletes the refresh token of the payload's device, or of every
// device of its owner when everywhere is set.
func (s *SessionService) endSessions(ctx context.Context, payload jwtx.AccessPayload, everywhere bool) error {
	user, err := s.Store.Users().GetUserByLogin(ctx, payload.Subject)
	if err != nil {
		return mapStoreErr(err, ErrUserNotFound)
	}
	l := slogx.FromContext(slogx.WithSession(ctx, user.Login, payload.Fingerprint))

	if everywhere {
		n, err := s.Store.RefreshTokens().DeleteUserRefreshTokens(ctx, user.ID)
		if err != nil {
			return unavailable(err)
		}
		l.Info("logged out everywhere", slog.Int64("sessions", n))
		return nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		fp, err := tx.Fingerprints().GetFingerprint(ctx, user.ID, payload.Fingerprint)
		if err != nil {
			return mapStoreErr(err, ErrFingerprintNotFound)
		}
		if fp.RefreshToken == nil {
			return ErrTokenNotFound
		}
		return mapStoreErr(tx.RefreshTokens().DeleteRefreshToken(ctx, fp.RefreshToken.ID), ErrTokenNotFound)
	})
	if err != nil {
		return mapStoreErr(err, ErrUnavailable)
	}
	l.Info("logged out")
	return nil
}

// revoke denylists accessToken for the rest of its lifetime.
func (s *SessionService) revoke(ctx context.Context, accessToken string, payload jwtx.AccessPayload) error {
	exp, err := payload.ExpiresAt()
	if err != nil {
		return ErrInvalidToken
	}
	ttl := exp.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.Revocations.Put(ctx, accessToken, revocation.RevokedMarker, ttl); err != nil {
		slogx.FromContext(ctx).Error("failed to denylist access token", slog.Any("error", err))
		return unavailable(err)
	}
	return nil
}

// Authorize is the gate in front of every protected operation. It checks
// the denylist, then the signature, then expiry, then that the token carries
// at least one of roles. An empty roles list skips the role check.
//
// A denylist that cannot be reached fails closed with ErrUnavailable.
func (s *SessionService) Authorize(ctx context.Context, accessToken string, roles ...string) (jwtx.AccessPayload, error) {
	_, revoked, err := s.Revocations.Get(ctx, accessToken)
	if err != nil {
		return jwtx.AccessPayload{}, unavailable(err)
	}
	if revoked {
		return jwtx.AccessPayload{}, ErrTokenRevoked
	}

	if err := s.Codec.Verify(accessToken); err != nil {
		return jwtx.AccessPayload{}, ErrInvalidToken
	}
	var payload jwtx.AccessPayload
	if err := s.Codec.DecodePayload(accessToken, &payload); err != nil {
		return jwtx.AccessPayload{}, mapTokenErr(err)
	}

	if !payload.HasAnyRole(roles...) {
		return jwtx.AccessPayload{}, ErrForbidden
	}
	return payload, nil
}

// mint signs a fresh access and refresh token for login on fingerprint and
// returns the refresh expiry for persistence.
func (s *SessionService) mint(login, fingerprint string, roles []string) (domain.TokenPair, time.Time, error) {
	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := s.Codec.Encode(jwtx.DefaultHeader, jwtx.NewAccessPayload(login, fingerprint, roles, accessExp))
	if err != nil {
		return domain.TokenPair{}, time.Time{}, err
	}
	refresh, err := s.Codec.Encode(jwtx.DefaultHeader, jwtx.NewRefreshPayload(login, fingerprint, refreshExp))
	if err != nil {
		return domain.TokenPair{}, time.Time{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, refreshExp, nil
}
