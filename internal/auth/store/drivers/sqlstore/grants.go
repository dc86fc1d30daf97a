package sqlstore

import (
	"context"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

type grantsRepo struct{ q queries }

func (r *grantsRepo) CreateGrant(ctx context.Context, g domain.Grant) error {
	_, err := r.q.exec(ctx, `INSERT INTO user_roles (id, user_id, role_id, created_at) VALUES (?, ?, ?, ?)`,
		g.ID, g.UserID, g.RoleID, time.Now().UTC())
	return err
}

func (r *grantsRepo) DeleteGrant(ctx context.Context, userID, roleID string) error {
	return r.q.execOne(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
}

func (r *grantsRepo) HasGrant(ctx context.Context, userID, roleID string) (bool, error) {
	n, err := r.q.count(ctx, `SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
	return n > 0, err
}

func (r *grantsRepo) ListRoleTitles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.query(ctx, `
		SELECT r.title
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.title`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
