package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

// AuthHandler serves the session endpoints under /api/v1/auth.
// Login and refresh accept application/x-www-form-urlencoded bodies.
type AuthHandler struct {
	Sessions *service.SessionService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges a login and password for an access and refresh token pair bound to the calling device.
//	@Description	The device is identified by the X-Device-Fingerprint header, or derived from User-Agent and Accept-Language.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username				formData	string					true	"Login"
//	@Param			password				formData	string					true	"Password"
//	@Param			X-Device-Fingerprint	header		string					false	"Device identifier"
//	@Success		200						{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400						{object}	authsdk.ErrorResponse	"malformed request"
//	@Failure		401						{object}	authsdk.ErrorResponse	"invalid user or password"
//	@Failure		409						{object}	authsdk.ErrorResponse	"concurrent login for the same device"
//	@Failure		429						{object}	authsdk.ErrorResponse	"rate limited"
//	@Failure		503						{object}	authsdk.ErrorResponse	"backing service unavailable"
//	@Router			/api/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	creds := domain.Credentials{
		Login:    r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	pair, err := h.Sessions.Login(r.Context(), creds, DeviceFingerprint(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates a refresh token. The presented token stops working once a new pair is returned.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			refresh_token	formData	string					true	"Refresh token"
//	@Success		200				{object}	authsdk.TokenResponse	"new token pair"
//	@Failure		400				{object}	authsdk.ErrorResponse	"malformed request"
//	@Failure		401				{object}	authsdk.ErrorResponse	"token invalid, expired or no longer active"
//	@Failure		404				{object}	authsdk.ErrorResponse	"user not found"
//	@Failure		410				{object}	authsdk.ErrorResponse	"user deleted"
//	@Failure		503				{object}	authsdk.ErrorResponse	"backing service unavailable"
//	@Router			/api/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("refresh_token"))
	if token == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Ends the session of the device the access token was issued to, or all sessions of the user.
//	@Description	The access token is rejected from then on.
//	@Tags			Auth
//	@Param			logout_everywhere	query	bool	false	"End every session of the user"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"malformed request"
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing or invalid token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"no session for this device"
//	@Failure		503	{object}	authsdk.ErrorResponse	"backing service unavailable"
//	@Security		BearerAuth
//	@Router			/api/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		httpx.WriteBearerError(w, "missing bearer token")
		return
	}

	everywhere := false
	if v := r.URL.Query().Get("logout_everywhere"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "logout_everywhere must be a boolean")
			return
		}
		everywhere = b
	}

	if err := h.Sessions.Logout(r.Context(), token, everywhere); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// parseForm checks the content type and parses the body. It writes the error
// response and returns false on failure.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeBadRequest(w, "content type must be application/x-www-form-urlencoded")
		return false
	}
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return false
	}
	return true
}

func tokenResponse(p domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}
