package http

import (
	"net/http"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

type RolesHandler struct {
	Roles *service.RolesService
}

// HandleList godoc
//
//	@Summary		List roles
//	@Description	Returns every role ordered by title. Requires the admin role.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	authsdk.ListRolesResponse	"roles"
//	@Failure		401	{object}	authsdk.ErrorResponse		"missing or invalid token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"missing admin role"
//	@Security		BearerAuth
//	@Router			/api/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Roles.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.ListRolesResponse{Roles: make([]authsdk.RoleInfo, len(roles))}
	for i, role := range roles {
		resp.Roles[i] = roleInfo(role)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary		Create role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CreateRoleRequest	true	"Role"
//	@Success		201		{object}	authsdk.RoleInfo			"created role"
//	@Failure		400		{object}	authsdk.ErrorResponse		"validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse		"title taken"
//	@Security		BearerAuth
//	@Router			/api/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	role, err := h.Roles.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, roleInfo(role))
}

// HandleGet godoc
//
//	@Summary		Get role
//	@Tags			Roles
//	@Produce		json
//	@Param			title	path		string					true	"Role title"
//	@Success		200		{object}	authsdk.RoleInfo		"role"
//	@Failure		404		{object}	authsdk.ErrorResponse	"role not found"
//	@Security		BearerAuth
//	@Router			/api/v1/roles/{title} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, err := h.Roles.Get(r.Context(), r.PathValue("title"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, roleInfo(role))
}

// HandleUpdate godoc
//
//	@Summary		Update role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			title	path		string						true	"Role title"
//	@Param			body	body		authsdk.UpdateRoleRequest	true	"Changes"
//	@Success		200		{object}	authsdk.RoleInfo			"updated role"
//	@Failure		404		{object}	authsdk.ErrorResponse		"role not found"
//	@Failure		409		{object}	authsdk.ErrorResponse		"title taken"
//	@Security		BearerAuth
//	@Router			/api/v1/roles/{title} [patch].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	role, err := h.Roles.Update(r.Context(), r.PathValue("title"), service.RoleUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, roleInfo(role))
}

// HandleDelete godoc
//
//	@Summary		Delete role
//	@Description	Deletes the role and every grant of it.
//	@Tags			Roles
//	@Param			title	path	string	true	"Role title"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"role not found"
//	@Security		BearerAuth
//	@Router			/api/v1/roles/{title} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Roles.Delete(r.Context(), r.PathValue("title")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func roleInfo(r domain.Role) authsdk.RoleInfo {
	return authsdk.RoleInfo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
