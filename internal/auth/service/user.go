package service

import (
	"context"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/idx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

// MinPasswordLength is enforced on registration and password change.
const MinPasswordLength = 8

// PasswordHasher produces and checks password hashes.
type PasswordHasher interface {
	PasswordVerifier
	Hash(password string) (string, error)
}

// RegisterUser is the input of UserService.Register.
type RegisterUser struct {
	Login     string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UserService struct {
	Store        store.Store
	Passwords    PasswordHasher
	LoginPattern *regexp.Regexp
}

func (s *UserService) validLogin(login string) bool {
	p := s.LoginPattern
	if p == nil {
		p = DefaultLoginPattern
	}
	return p.MatchString(login)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register creates an active user. A taken login or email gives
// ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterUser) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if !s.validLogin(in.Login) || !validEmail(in.Email) || len(in.Password) < MinPasswordLength {
		return domain.User{}, ErrInvalidRequest
	}

	hash, err := s.Passwords.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, mapStoreErr(err, ErrUserNotFound)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("login", u.Login))
	return s.GetByLogin(ctx, u.Login)
}

// GetByLogin returns an active user.
func (s *UserService) GetByLogin(ctx context.Context, login string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByLogin(ctx, login)
	if err != nil {
		return domain.User{}, mapStoreErr(err, ErrUserNotFound)
	}
	if !u.IsActive {
		return domain.User{}, ErrUserDeleted
	}
	return u, nil
}

// Update applies patch to the profile of login.
func (s *UserService) Update(ctx context.Context, login string, patch domain.UserPatch) (domain.User, error) {
	u, err := s.GetByLogin(ctx, login)
	if err != nil {
		return domain.User{}, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if !validEmail(email) {
			return domain.User{}, ErrInvalidRequest
		}
		u.Email = email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Password != nil {
		if len(*patch.Password) < MinPasswordLength {
			return domain.User{}, ErrInvalidRequest
		}
		hash, err := s.Passwords.Hash(*patch.Password)
		if err != nil {
			return domain.User{}, err
		}
		u.PasswordHash = hash
	}

	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return domain.User{}, mapStoreErr(err, ErrUserNotFound)
	}
	return s.GetByLogin(ctx, login)
}

// Delete anonymises the user and ends all of their sessions. The row is kept
// so that login and email stay unique across deleted accounts; both are
// rewritten to free the originals for reuse.
func (s *UserService) Delete(ctx context.Context, login string) error {
	u, err := s.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	tag := idx.New().Lower()
	u.Login = "deleted-" + tag
	u.Email = tag + "@deleted.invalid"
	u.IsActive = false

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return err
		}
		_, err := tx.RefreshTokens().DeleteUserRefreshTokens(ctx, u.ID)
		return err
	})
	if err != nil {
		return mapStoreErr(err, ErrUserNotFound)
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("login", login), slog.String("user_id", u.ID))
	return nil
}
