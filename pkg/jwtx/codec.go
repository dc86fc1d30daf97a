package jwtx

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Header is the first segment of every token. Field order is part of the
// wire format: the signature covers the encoded bytes.
type Header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// DefaultHeader is the only header this package issues.
var DefaultHeader = Header{Typ: "JWT", Alg: "HS256"}

// Payload is implemented by the token bodies the codec can decode.
type Payload interface {
	// Validate reports whether the required fields are present.
	Validate() error
	// ExpiresAt parses the exp claim.
	ExpiresAt() (time.Time, error)
}

// Codec encodes, signs and verifies the three segment token format
//
//	base64(header) "." base64(payload) "." hex(HMAC-SHA256(secret, base64(header) "." base64(payload)))
//
// A Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC

	// Now is the clock used for expiry checks.
	Now func() time.Time
}

// NewCodec builds a codec around the server-held signing secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{
		secret: key,
		method: jwt.SigningMethodHS256,
		Now:    time.Now,
	}, nil
}

// Encode serialises header and payload, signs them and returns the token.
func (c *Codec) Encode(header Header, payload any) (string, error) {
	h, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jwtx: marshal header: %w", err)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("jwtx: marshal payload: %w", err)
	}

	signingString := base64.StdEncoding.EncodeToString(h) + "." + base64.StdEncoding.EncodeToString(p)
	sig, err := c.method.Sign(signingString, c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signingString + "." + hex.EncodeToString(sig), nil
}

// Verify checks the token structure and its signature. It does not look at
// the payload.
func (c *Codec) Verify(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	sig, err := hex.DecodeString(parts[2])
	if err != nil {
		return ErrInvalidToken
	}
	// Upper case hex decodes to the same bytes; only the canonical form is accepted.
	if hex.EncodeToString(sig) != parts[2] {
		return ErrInvalidToken
	}

	if err := c.method.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// DecodePayload parses the payload segment into dst and checks expiry.
// The signature is not checked; call Verify first when that matters.
func (c *Codec) DecodePayload(token string, dst Payload) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrInvalidToken
	}
	if err := dst.Validate(); err != nil {
		return ErrInvalidToken
	}

	exp, err := dst.ExpiresAt()
	if err != nil {
		return ErrInvalidToken
	}
	if exp.Before(c.Now()) {
		return ErrExpiredToken
	}
	return nil
}
