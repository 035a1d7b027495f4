package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"portfolio/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewService(repo)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Anna", "Muster", "anna", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, registered.ID)
	assert.NotEqual(t, "pw1", registered.PasswordHash, "password must not be stored in plaintext")

	user, err := svc.Login(ctx, "anna", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "Anna", user.FirstName)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Anna", "Muster", "anna", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "Person", "anna", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Anna", "Muster", "anna", "pw1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "anna", "nope")
	_, unknownUser := svc.Login(ctx, "ghost", "nope")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error(),
		"login errors must not reveal whether the username exists")
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "B", "", "pw")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "A", "B", "user", "")
	assert.Error(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef")
	user := SessionUser{ID: 7, Username: "anna", FirstName: "Anna", LastName: "Muster"}

	tok, err := GenerateToken(user, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "anna", claims.Username)

	_, err = ParseToken(tok, []byte("another-secret-key"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(user, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
