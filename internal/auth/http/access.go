package http

import (
	"net/http"

	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

// AccessHandler manages role grants. Every route requires the admin role.
type AccessHandler struct {
	Access *service.AccessService
}

// HandleAssign godoc
//
//	@Summary		Grant role
//	@Tags			Access
//	@Accept			json
//	@Param			body	body	authsdk.AccessRequest	true	"User and role"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"user or role not found"
//	@Failure		409	{object}	authsdk.ErrorResponse	"already granted"
//	@Security		BearerAuth
//	@Router			/api/v1/access/assign [post].
func (h *AccessHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AccessRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.Access.Assign(r.Context(), req.Login, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove godoc
//
//	@Summary		Revoke role
//	@Tags			Access
//	@Accept			json
//	@Param			body	body	authsdk.AccessRequest	true	"User and role"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"user, role or grant not found"
//	@Security		BearerAuth
//	@Router			/api/v1/access/remove [post].
func (h *AccessHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AccessRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.Access.Remove(r.Context(), req.Login, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify godoc
//
//	@Summary		Check grant
//	@Tags			Access
//	@Produce		json
//	@Param			login	query		string							true	"Login"
//	@Param			role	query		string							true	"Role title"
//	@Success		200		{object}	authsdk.VerifyAccessResponse	"grant status"
//	@Failure		404		{object}	authsdk.ErrorResponse			"user or role not found"
//	@Security		BearerAuth
//	@Router			/api/v1/access/verify [get].
func (h *AccessHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	login, role := q.Get("login"), q.Get("role")

	ok, err := h.Access.Verify(r.Context(), login, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyAccessResponse{Login: login, Role: role, Granted: ok})
}

// HandleUserRoles godoc
//
//	@Summary		List a user's roles
//	@Tags			Access
//	@Produce		json
//	@Param			login	path		string						true	"Login"
//	@Success		200		{object}	authsdk.UserRolesResponse	"role titles"
//	@Failure		404		{object}	authsdk.ErrorResponse		"user not found"
//	@Security		BearerAuth
//	@Router			/api/v1/access/users/{login}/roles [get].
func (h *AccessHandler) HandleUserRoles(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")
	roles, err := h.Access.UserRoles(r.Context(), login)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserRolesResponse{Login: login, Roles: roles})
}
