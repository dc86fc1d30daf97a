package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	d := dialect{}
	require.Equal(t, "SELECT 1", d.Rebind("SELECT 1"))
	require.Equal(t,
		"UPDATE t SET a = $1 WHERE id = $2 AND b = $3",
		d.Rebind("UPDATE t SET a = ? WHERE id = ? AND b = ?"))
}

func TestIsUniqueViolation(t *testing.T) {
	d := dialect{}
	require.True(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, d.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23503"}), "foreign key violation")
	require.False(t, d.IsUniqueViolation(errors.New("boom")))
}
