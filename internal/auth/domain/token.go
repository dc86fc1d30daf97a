package domain

import "time"

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

// Credentials are submitted on login.
type Credentials struct {
	Login    string
	Password string
}

// Fingerprint identifies one device of a user. RefreshToken is nil when the
// device has no live session.
type Fingerprint struct {
	ID           string
	UserID       string
	Value        string
	RefreshToken *RefreshToken
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is the durable session record of a device. Token is the
// refresh token string as issued to the client.
type RefreshToken struct {
	ID            string
	UserID        string
	FingerprintID string
	Token         string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
