package jwtx

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/bormonoff/Auth-Service/pkg/cryptox"
)

var errMissingClaim = errors.New("jwtx: missing claim")

// AccessPayload is carried by access tokens and presented on every
// protected request.
type AccessPayload struct {
	Subject     string   `json:"sub"`
	Fingerprint string   `json:"fingerprint"`
	Roles       []string `json:"roles"`
	Exp         string   `json:"exp"`
	ID          string   `json:"jti,omitempty"`
}

// NewAccessPayload builds an access payload expiring at exp.
func NewAccessPayload(subject, fingerprint string, roles []string, exp time.Time) AccessPayload {
	if roles == nil {
		roles = []string{}
	}
	return AccessPayload{
		Subject:     subject,
		Fingerprint: fingerprint,
		Roles:       slices.Clone(roles),
		Exp:         FormatExp(exp),
		ID:          NewJTI(),
	}
}

func (p *AccessPayload) Validate() error {
	if p.Subject == "" || p.Fingerprint == "" || p.Exp == "" || p.Roles == nil {
		return errMissingClaim
	}
	return nil
}

func (p *AccessPayload) ExpiresAt() (time.Time, error) { return ParseExp(p.Exp) }

// HasAnyRole reports whether the payload carries at least one of roles.
// An empty roles list is always satisfied.
func (p *AccessPayload) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// RefreshPayload is carried by refresh tokens. Refresh tokens are also
// persisted verbatim and are only valid while the stored copy matches.
type RefreshPayload struct {
	Subject     string `json:"sub"`
	Fingerprint string `json:"fingerprint"`
	Exp         string `json:"exp"`
	ID          string `json:"jti,omitempty"`
}

// NewRefreshPayload builds a refresh payload expiring at exp.
func NewRefreshPayload(subject, fingerprint string, exp time.Time) RefreshPayload {
	return RefreshPayload{
		Subject:     subject,
		Fingerprint: fingerprint,
		Exp:         FormatExp(exp),
		ID:          NewJTI(),
	}
}

func (p *RefreshPayload) Validate() error {
	if p.Subject == "" || p.Fingerprint == "" || p.Exp == "" {
		return errMissingClaim
	}
	return nil
}

func (p *RefreshPayload) ExpiresAt() (time.Time, error) { return ParseExp(p.Exp) }

// FormatExp renders t as a decimal Unix timestamp with microsecond precision.
func FormatExp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}

// maxExpSeconds bounds exp so the microsecond conversion cannot overflow.
const maxExpSeconds = math.MaxInt64 / 1e6

// ParseExp is the inverse of FormatExp. Any finite decimal within
// maxExpSeconds of the epoch is accepted.
func ParseExp(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxExpSeconds {
		return time.Time{}, errors.New("jwtx: exp out of range")
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond)), nil
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	id, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return id
}
