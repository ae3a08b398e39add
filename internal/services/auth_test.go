package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	svc := NewAuthService(newTestDB(t), "test-secret", zerolog.Nop())
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuth(t)

	user, token, err := svc.Register(context.Background(), " Ana@Example.com ", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "secreto1", user.Password)

	who, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, who.UserID)

	again, token, err := svc.Login(context.Background(), "ANA@example.com", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterRejections(t *testing.T) {
	svc := newTestAuth(t)

	_, _, err := svc.Register(context.Background(), "no-at-sign", "secreto1")
	assert.True(t, errors.Is(err, ErrInvalid))

	_, _, err = svc.Register(context.Background(), "a@b.c", "123")
	assert.True(t, errors.Is(err, ErrInvalid))

	_, _, err = svc.Register(context.Background(), "a@b.c", "secreto1")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "A@B.C", "otro-secreto")
	assert.True(t, errors.Is(err, ErrEmailTaken))
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestAuth(t)
	_, _, err := svc.Register(context.Background(), "a@b.c", "secreto1")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@b.c", "incorrecto")
	assert.True(t, errors.Is(err, ErrBadCredentials))

	_, _, err = svc.Login(context.Background(), "nadie@b.c", "secreto1")
	assert.True(t, errors.Is(err, ErrBadCredentials))
}

func TestParseTokenRejects(t *testing.T) {
	svc := newTestAuth(t)

	other := NewAuthService(nil, "other-secret", zerolog.Nop())
	forged, err := other.IssueToken("u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * tokenTTL) }
	expired, err := svc.IssueToken("u1")
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":    "not.a.token",
		"empty":      "",
		"bad secret": forged,
		"expired":    expired,
	} {
		t.Run(name, func(t *testing.T) {
			who, err := svc.ParseToken(raw)
			assert.True(t, errors.Is(err, ErrUnauthorized))
			assert.True(t, who.IsAnonymous())
		})
	}
}
