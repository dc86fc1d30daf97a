package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bormonoff/Auth-Service/internal/auth/revocation"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/internal/auth/store/drivers/sqlite"
	"github.com/bormonoff/Auth-Service/pkg/cryptox"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	adminLogin    = "superuser"
	adminPassword = "superuser"
	adminRole     = "admin"
)

type env struct {
	store     store.Store
	redis     *miniredis.Miniredis
	codec     *jwtx.Codec
	hasher    *cryptox.Argon2Hasher
	sessions  *service.SessionService
	access    *service.AccessService
	users     *service.UserService
	roles     *service.RolesService
	bootstrap *service.BootstrapService
}

// newEnv wires the services over sqlite and miniredis and bootstraps the
// superuser account.
func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	mr := miniredis.RunT(t)
	rdb := revocation.NewRedisClient(revocation.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codec, err := jwtx.NewCodec([]byte("service-test-secret"))
	require.NoError(t, err)

	hasher := cryptox.NewArgon2Hasher("pepper")
	access := &service.AccessService{Store: s}

	e := &env{
		store:  s,
		redis:  mr,
		codec:  codec,
		hasher: hasher,
		sessions: &service.SessionService{
			Codec:       codec,
			Store:       s,
			Roles:       access,
			Passwords:   hasher,
			Revocations: revocation.NewRedisCache(rdb, ""),
			AccessTTL:   time.Hour,
			RefreshTTL:  240 * time.Hour,
		},
		access:    access,
		users:     &service.UserService{Store: s, Passwords: hasher},
		roles:     &service.RolesService{Store: s},
		bootstrap: &service.BootstrapService{Store: s, Passwords: hasher},
	}

	_, err = e.bootstrap.Bootstrap(context.Background(), service.BootstrapAdmin{
		Login:    adminLogin,
		Password: adminPassword,
		Role:     adminRole,
	})
	require.NoError(t, err)
	return e
}

func (e *env) countSessions(t *testing.T, login string) int {
	t.Helper()
	u, err := e.store.Users().GetUserByLogin(context.Background(), login)
	require.NoError(t, err)
	n, err := e.store.RefreshTokens().CountUserRefreshTokens(context.Background(), u.ID)
	require.NoError(t, err)
	return n
}
