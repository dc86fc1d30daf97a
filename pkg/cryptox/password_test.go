package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T) *Argon2Hasher {
	t.Helper()
	pepper, err := LoadOrGeneratePepper(filepath.Join(t.TempDir(), "pepper"))
	require.NoError(t, err)
	return NewArgon2Hasher(pepper)
}

func TestHash(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt")
			require.NotEmpty(t, parts[5], "hash")

			require.NoError(t, h.Verify(hash, tt.password))
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "hashes should differ due to unique salts")
}

func TestVerify_WrongPassword(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	for _, pw := range []string{"correct hors", "Correct horse", "correct horse ", ""} {
		require.ErrorIs(t, h.Verify(hash, pw), ErrPasswordMismatch, pw)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	a := NewArgon2Hasher("pepper-a")
	b := NewArgon2Hasher("pepper-b")

	hash, err := a.Hash("secret")
	require.NoError(t, err)
	require.NoError(t, a.Verify(hash, "secret"))
	require.ErrorIs(t, b.Verify(hash, "secret"), ErrPasswordMismatch)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	h := newTestHasher(t)

	cases := map[string]string{
		"empty":         "",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"wrong variant": "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"wrong version": "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"bad params":    "$argon2id$v=19$m=x,t=2,p=1$c2FsdA$aGFzaA",
		"bad salt":      "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"empty hash":    "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify(in, "pw"), ErrInvalidHash)
		})
	}
}

func TestLoadOrGeneratePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "pepper must be stable across restarts")

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	_, err = LoadOrGeneratePepper(path)
	require.Error(t, err)

	_, err = LoadOrGeneratePepper("")
	require.Error(t, err)
}
