package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// refreshBuffer is subtracted from expires_in so the session refreshes
// before the server starts rejecting the access token.
const refreshBuffer = 30 * time.Second

// SDKClient is a client for the auth service.
// It calls the public endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Fingerprint identifies this device on login. Empty lets the server
	// derive one from request headers.
	Fingerprint string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for a token pair and wraps it in a Session.
func (c *SDKClient) Login(ctx context.Context, login, password string) (*Session, error) {
	form := url.Values{}
	form.Set("username", login)
	form.Set("password", password)

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	if c.Fingerprint != "" {
		headers[HeaderDeviceFingerprint] = c.Fingerprint
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()), headers)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tokens), nil
}

// Refresh trades a refresh token for a new pair. The presented token is
// invalid once this returns successfully.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh",
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates a user account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	body, err := encodeJSON(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/profile/register", body,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// NewSessionFromTokens wraps an existing pair, e.g. one restored from disk.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	})
}
