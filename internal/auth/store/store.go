package store

import (
	"context"
	"errors"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so that a Tx hands
// out repositories bound to the same transaction.
type Store interface {
	Users() Users
	Roles() Roles
	Grants() Grants
	Fingerprints() Fingerprints
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin matches active and inactive users alike.
	GetUserByLogin(ctx context.Context, login string) (domain.User, error)

	// CreateUser inserts a new user. A taken login or email gives ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser overwrites the mutable columns of u (login, email, names,
	// password hash, active flag) and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// IsEmpty reports whether the users table has no rows.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetRoleByTitle(ctx context.Context, title string) (domain.Role, error)

	// ListAll returns every role ordered by title.
	ListAll(ctx context.Context) ([]domain.Role, error)

	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole overwrites title and description of the role with r.ID.
	UpdateRole(ctx context.Context, r domain.Role) error

	// DeleteRole removes the role and, by cascade, its grants.
	DeleteRole(ctx context.Context, id string) error
}

type Grants interface {
	CreateGrant(ctx context.Context, g domain.Grant) error
	DeleteGrant(ctx context.Context, userID, roleID string) error
	HasGrant(ctx context.Context, userID, roleID string) (bool, error)

	// ListRoleTitles returns the titles of the roles granted to a user, sorted.
	ListRoleTitles(ctx context.Context, userID string) ([]string, error)
}

type Fingerprints interface {
	// GetFingerprint looks up the (user, fingerprint) row with its refresh
	// token joined in. Inside a transaction the fingerprint row is locked
	// where the backend supports it.
	GetFingerprint(ctx context.Context, userID, value string) (domain.Fingerprint, error)

	// CreateFingerprint inserts a new row. A duplicate (user, fingerprint)
	// gives ErrAlreadyExists.
	CreateFingerprint(ctx context.Context, f domain.Fingerprint) error
}

type RefreshTokens interface {
	// CreateRefreshToken inserts the session record of a fingerprint. A
	// second record for the same fingerprint gives ErrAlreadyExists.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByToken returns the record holding exactly token.
	GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error)

	// ReplaceRefreshToken overwrites the token string of record id.
	ReplaceRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error

	// RotateRefreshToken overwrites the token string of record id only if it
	// still holds oldToken. Otherwise it returns ErrNotFound.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) error

	DeleteRefreshToken(ctx context.Context, id string) error

	// DeleteUserRefreshTokens removes every session of the user in one
	// statement and returns the number of rows removed.
	DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredRefreshTokens removes records that expired before now.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	// CountUserRefreshTokens returns the number of live session records of a user.
	CountUserRefreshTokens(ctx context.Context, userID string) (int, error)
}
