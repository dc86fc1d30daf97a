package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/idx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

// AccessService manages the grants linking users to roles. It also resolves
// the role titles embedded into access tokens.
type AccessService struct {
	Store store.Store
}

// ListRoleTitles returns the sorted titles of the roles granted to login.
func (s *AccessService) ListRoleTitles(ctx context.Context, login string) ([]string, error) {
	user, err := s.activeUser(ctx, login)
	if err != nil {
		return nil, err
	}
	titles, err := s.Store.Grants().ListRoleTitles(ctx, user.ID)
	if err != nil {
		return nil, unavailable(err)
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

// UserRoles is ListRoleTitles under the name the access API uses.
func (s *AccessService) UserRoles(ctx context.Context, login string) ([]string, error) {
	return s.ListRoleTitles(ctx, login)
}

// Assign grants role title to login. A grant that already exists gives
// ErrAlreadyExists.
func (s *AccessService) Assign(ctx context.Context, login, title string) error {
	user, role, err := s.resolve(ctx, login, title)
	if err != nil {
		return err
	}
	err = s.Store.Grants().CreateGrant(ctx, domain.Grant{
		ID:     idx.New().String(),
		UserID: user.ID,
		RoleID: role.ID,
	})
	if err != nil {
		return mapStoreErr(err, ErrAccessNotFound)
	}
	slogx.FromContext(ctx).Info("role assigned", slog.String("login", login), slog.String("role", title))
	return nil
}

// Remove revokes role title from login. A missing grant gives
// ErrAccessNotFound.
func (s *AccessService) Remove(ctx context.Context, login, title string) error {
	user, role, err := s.resolve(ctx, login, title)
	if err != nil {
		return err
	}
	if err := s.Store.Grants().DeleteGrant(ctx, user.ID, role.ID); err != nil {
		return mapStoreErr(err, ErrAccessNotFound)
	}
	slogx.FromContext(ctx).Info("role removed", slog.String("login", login), slog.String("role", title))
	return nil
}

// Verify reports whether login holds role title.
func (s *AccessService) Verify(ctx context.Context, login, title string) (bool, error) {
	user, role, err := s.resolve(ctx, login, title)
	if err != nil {
		return false, err
	}
	ok, err := s.Store.Grants().HasGrant(ctx, user.ID, role.ID)
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (s *AccessService) resolve(ctx context.Context, login, title string) (domain.User, domain.Role, error) {
	if login == "" || title == "" {
		return domain.User{}, domain.Role{}, ErrInvalidRequest
	}
	user, err := s.activeUser(ctx, login)
	if err != nil {
		return domain.User{}, domain.Role{}, err
	}
	role, err := s.Store.Roles().GetRoleByTitle(ctx, title)
	if err != nil {
		return domain.User{}, domain.Role{}, mapStoreErr(err, ErrRoleNotFound)
	}
	return user, role, nil
}

func (s *AccessService) activeUser(ctx context.Context, login string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, unavailable(err)
	}
	if !user.IsActive {
		return domain.User{}, ErrUserDeleted
	}
	return user, nil
}
