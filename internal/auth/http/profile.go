package http

import (
	"net/http"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

// ProfileHandler serves registration and the caller's own profile.
type ProfileHandler struct {
	Users    *service.UserService
	Sessions *service.SessionService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates a user account.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.UserResponse	"created user"
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse	"login or email taken"
//	@Router			/api/v1/profile/register [post].
func (h *ProfileHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := h.Users.Register(r.Context(), service.RegisterUser{
		Login:     req.Login,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

// HandleGet godoc
//
//	@Summary		Get own profile
//	@Tags			Profile
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing or invalid token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"user not found"
//	@Security		BearerAuth
//	@Router			/api/v1/profile/personal [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetByLogin(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleUpdate godoc
//
//	@Summary		Update own profile
//	@Description	Changes email, names or password. Omitted fields are kept.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.UpdateProfileRequest	true	"Changes"
//	@Success		200		{object}	authsdk.UserResponse			"updated profile"
//	@Failure		400		{object}	authsdk.ErrorResponse			"validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse			"missing or invalid token"
//	@Failure		409		{object}	authsdk.ErrorResponse			"email taken"
//	@Security		BearerAuth
//	@Router			/api/v1/profile/personal [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := h.Users.Update(r.Context(), httpx.SubjectFromContext(r.Context()), domain.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleDelete godoc
//
//	@Summary		Delete own account
//	@Description	Ends every session of the caller, then anonymises the account.
//	@Tags			Profile
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing or invalid token"
//	@Failure		503	{object}	authsdk.ErrorResponse	"backing service unavailable"
//	@Security		BearerAuth
//	@Router			/api/v1/profile/personal [delete].
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Logout(ctx, httpx.AccessTokenFromContext(ctx), true); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.Users.Delete(ctx, httpx.SubjectFromContext(ctx)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

func userResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
