package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/idx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

type RolesService struct {
	Store store.Store
}

// RoleUpdate holds the role fields an update may change.
type RoleUpdate struct {
	Title       *string
	Description *string
}

// List returns all roles ordered by title.
func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.Store.Roles().ListAll(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return roles, nil
}

// Get fetches a role by its title.
func (s *RolesService) Get(ctx context.Context, title string) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByTitle(ctx, title)
	if err != nil {
		return domain.Role{}, mapStoreErr(err, ErrRoleNotFound)
	}
	return role, nil
}

func (s *RolesService) Create(ctx context.Context, title, description string) (domain.Role, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Role{}, ErrInvalidRequest
	}
	role := domain.Role{ID: idx.New().String(), Title: title, Description: description}
	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		return domain.Role{}, mapStoreErr(err, ErrRoleNotFound)
	}
	slogx.FromContext(ctx).Info("role created", slog.String("role", title))
	return s.Get(ctx, title)
}

func (s *RolesService) Update(ctx context.Context, title string, upd RoleUpdate) (domain.Role, error) {
	role, err := s.Get(ctx, title)
	if err != nil {
		return domain.Role{}, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return domain.Role{}, ErrInvalidRequest
		}
		role.Title = t
	}
	if upd.Description != nil {
		role.Description = *upd.Description
	}
	if err := s.Store.Roles().UpdateRole(ctx, role); err != nil {
		return domain.Role{}, mapStoreErr(err, ErrRoleNotFound)
	}
	return s.Get(ctx, role.Title)
}

// Delete removes the role and every grant of it.
func (s *RolesService) Delete(ctx context.Context, title string) error {
	role, err := s.Get(ctx, title)
	if err != nil {
		return err
	}
	if err := s.Store.Roles().DeleteRole(ctx, role.ID); err != nil {
		return mapStoreErr(err, ErrRoleNotFound)
	}
	slogx.FromContext(ctx).Info("role deleted", slog.String("role", title))
	return nil
}
