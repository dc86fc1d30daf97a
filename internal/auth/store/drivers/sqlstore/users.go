package sqlstore

import (
	"context"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

const userColumns = `id, login, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

type usersRepo struct{ q queries }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, r.q.mapErr(err)
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE login = ?`, login))
	return u, r.q.mapErr(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Login, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive, now, now)
	return err
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	return r.q.execOne(ctx, `
		UPDATE users
		SET login = ?, email = ?, password_hash = ?, first_name = ?, last_name = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		u.Login, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive, time.Now().UTC(), u.ID)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.q.count(ctx, `SELECT COUNT(*) FROM users`)
	return n == 0, err
}
