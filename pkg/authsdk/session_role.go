package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListRoles lists every role. Requires the admin role.
func (s *Session) ListRoles(ctx context.Context) ([]RoleInfo, error) {
	var resp ListRolesResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/api/v1/roles", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

// GetRole fetches a role by title.
func (s *Session) GetRole(ctx context.Context, title string) (*RoleInfo, error) {
	var role RoleInfo
	if err := s.doAuthJSON(ctx, http.MethodGet, rolePath(title), nil, &role, http.StatusOK); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole creates a role.
func (s *Session) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleInfo, error) {
	var role RoleInfo
	if err := s.doAuthJSON(ctx, http.MethodPost, "/api/v1/roles", req, &role, http.StatusCreated); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole renames a role or changes its description.
func (s *Session) UpdateRole(ctx context.Context, title string, req UpdateRoleRequest) (*RoleInfo, error) {
	var role RoleInfo
	if err := s.doAuthJSON(ctx, http.MethodPatch, rolePath(title), req, &role, http.StatusOK); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole deletes a role along with its grants.
func (s *Session) DeleteRole(ctx context.Context, title string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, rolePath(title), nil, nil, http.StatusNoContent)
}

func rolePath(title string) string {
	return "/api/v1/roles/" + url.PathEscape(title)
}
