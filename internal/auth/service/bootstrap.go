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

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")
)

// BootstrapAdmin describes the first administrator.
type BootstrapAdmin struct {
	Login    string
	Password string
	Email    string
	Role     string
}

// BootstrapService seeds an empty database with an admin role and a user
// holding it.
type BootstrapService struct {
	Store     store.Store
	Passwords PasswordHasher
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, unavailable(err)
	}
	return !empty, nil
}

// Bootstrap creates the admin role, the admin user and the grant between
// them in one transaction. It returns ErrBootstrapAlready when any user
// exists.
func (s *BootstrapService) Bootstrap(ctx context.Context, admin BootstrapAdmin) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if admin.Login == "" || admin.Password == "" || admin.Role == "" {
		return domain.User{}, ErrInvalidRequest
	}
	if admin.Email == "" {
		admin.Email = admin.Login + "@localhost.invalid"
	}

	if done, err := s.IsBootstrapped(ctx); err != nil {
		return domain.User{}, err
	} else if done {
		return domain.User{}, ErrBootstrapAlready
	}

	hash, err := s.Passwords.Hash(admin.Password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, ErrBootstrapFailedToCreateAdmin
	}

	user := domain.User{
		ID:           idx.New().String(),
		Login:        admin.Login,
		Email:        admin.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByTitle(ctx, admin.Role)
		if errors.Is(err, store.ErrNotFound) {
			role = domain.Role{ID: idx.New().String(), Title: admin.Role, Description: "Administrator"}
			err = tx.Roles().CreateRole(ctx, role)
		}
		if err != nil {
			l.Error("failed to create admin role", slog.String("role", admin.Role), slog.Any("error", err))
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			l.Error("failed to create admin user", slog.String("user_id", user.ID), slog.Any("error", err))
			return ErrBootstrapFailedToCreateAdmin
		}

		return tx.Grants().CreateGrant(ctx, domain.Grant{
			ID:     idx.New().String(),
			UserID: user.ID,
			RoleID: role.ID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapFailedToCreateAdmin) {
			return domain.User{}, err
		}
		return domain.User{}, mapStoreErr(err, ErrRoleNotFound)
	}

	l.Info("successfully bootstrapped system",
		slog.String("admin_login", user.Login),
		slog.String("admin_role", admin.Role),
	)
	return user, nil
}
