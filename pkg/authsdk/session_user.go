package authsdk

import (
	"context"
	"net/http"
)

// Profile returns the caller's profile.
func (s *Session) Profile(ctx context.Context) (*UserResponse, error) {
	var user UserResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/api/v1/profile/personal", nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the fields set in req.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	var user UserResponse
	if err := s.doAuthJSON(ctx, http.MethodPatch, "/api/v1/profile/personal", req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteProfile deletes the caller's account and ends all of its sessions.
func (s *Session) DeleteProfile(ctx context.Context) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/api/v1/profile/personal", nil, nil, http.StatusNoContent)
}
