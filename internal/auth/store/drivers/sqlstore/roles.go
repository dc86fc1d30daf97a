package sqlstore

import (
	"context"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

const roleColumns = `id, title, description, created_at, updated_at`

type rolesRepo struct{ q queries }

func scanRole(row rowScanner) (domain.Role, error) {
	var r domain.Role
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *rolesRepo) GetRoleByTitle(ctx context.Context, title string) (domain.Role, error) {
	role, err := scanRole(r.q.queryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE title = ?`, title))
	return role, r.q.mapErr(err)
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `INSERT INTO roles (`+roleColumns+`) VALUES (?, ?, ?, ?, ?)`,
		role.ID, role.Title, role.Description, now, now)
	return err
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	return r.q.execOne(ctx, `UPDATE roles SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		role.Title, role.Description, time.Now().UTC(), role.ID)
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM roles WHERE id = ?`, id)
}
