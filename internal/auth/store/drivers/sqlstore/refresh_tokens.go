package sqlstore

import (
	"context"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

type refreshTokensRepo struct{ q queries }

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, fingerprint_id, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.FingerprintID, t.Token, t.ExpiresAt.UTC(), now, now)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.q.queryRow(ctx, `
		SELECT id, user_id, fingerprint_id, refresh_token, expires_at, created_at, updated_at
		FROM refresh_tokens
		WHERE refresh_token = ?`, token).
		Scan(&t.ID, &t.UserID, &t.FingerprintID, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	return t, r.q.mapErr(err)
}

func (r *refreshTokensRepo) ReplaceRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.q.execOne(ctx, `
		UPDATE refresh_tokens SET refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		token, expiresAt.UTC(), time.Now().UTC(), id)
}

func (r *refreshTokensRepo) RotateRefreshToken(
	ctx context.Context,
	id, oldToken, newToken string,
	expiresAt time.Time,
) error {
	return r.q.execOne(ctx, `
		UPDATE refresh_tokens SET refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND refresh_token = ?`,
		newToken, expiresAt.UTC(), time.Now().UTC(), id, oldToken)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM refresh_tokens WHERE id = ?`, id)
}

func (r *refreshTokensRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) CountUserRefreshTokens(ctx context.Context, userID string) (int, error) {
	return r.q.count(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ?`, userID)
}
