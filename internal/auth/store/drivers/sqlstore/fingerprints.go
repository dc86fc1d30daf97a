package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
)

type fingerprintsRepo struct{ q queries }

func (r *fingerprintsRepo) GetFingerprint(ctx context.Context, userID, value string) (domain.Fingerprint, error) {
	query := `
		SELECT f.id, f.user_id, f.fingerprint, f.created_at, f.updated_at,
		       t.id, t.refresh_token, t.expires_at, t.created_at, t.updated_at
		FROM fingerprints f
		LEFT JOIN refresh_tokens t ON t.fingerprint_id = f.id
		WHERE f.user_id = ? AND f.fingerprint = ?`
	if r.q.inTx {
		query += r.q.d.LockFingerprint()
	}

	var (
		f                   domain.Fingerprint
		tokenID, token      sql.NullString
		expiresAt, tCreated sql.NullTime
		tUpdated            sql.NullTime
	)
	err := r.q.queryRow(ctx, query, userID, value).Scan(
		&f.ID, &f.UserID, &f.Value, &f.CreatedAt, &f.UpdatedAt,
		&tokenID, &token, &expiresAt, &tCreated, &tUpdated,
	)
	if err != nil {
		return domain.Fingerprint{}, r.q.mapErr(err)
	}

	if tokenID.Valid {
		f.RefreshToken = &domain.RefreshToken{
			ID:            tokenID.String,
			UserID:        f.UserID,
			FingerprintID: f.ID,
			Token:         token.String,
			ExpiresAt:     expiresAt.Time,
			CreatedAt:     tCreated.Time,
			UpdatedAt:     tUpdated.Time,
		}
	}
	return f, nil
}

func (r *fingerprintsRepo) CreateFingerprint(ctx context.Context, f domain.Fingerprint) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO fingerprints (id, user_id, fingerprint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Value, now, now)
	return err
}
