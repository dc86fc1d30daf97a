package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// AssignRole grants role to the user with login. Requires the admin role.
// Role changes reach the user's tokens on their next refresh.
func (s *Session) AssignRole(ctx context.Context, login, role string) error {
	return s.doAuthJSON(ctx, http.MethodPost, "/api/v1/access/assign",
		AccessRequest{Login: login, Role: role}, nil, http.StatusNoContent)
}

// RemoveRole revokes role from the user with login.
func (s *Session) RemoveRole(ctx context.Context, login, role string) error {
	return s.doAuthJSON(ctx, http.MethodPost, "/api/v1/access/remove",
		AccessRequest{Login: login, Role: role}, nil, http.StatusNoContent)
}

// VerifyAccess reports whether the user with login holds role.
func (s *Session) VerifyAccess(ctx context.Context, login, role string) (bool, error) {
	q := url.Values{}
	q.Set("login", login)
	q.Set("role", role)

	var resp VerifyAccessResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/api/v1/access/verify?"+q.Encode(), nil, &resp, http.StatusOK); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

// UserRoles lists the role titles held by the user with login.
func (s *Session) UserRoles(ctx context.Context, login string) ([]string, error) {
	var resp UserRolesResponse
	path := "/api/v1/access/users/" + url.PathEscape(login) + "/roles"
	if err := s.doAuthJSON(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}
