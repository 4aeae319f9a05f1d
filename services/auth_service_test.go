package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paldeck_server/store"
)

func newAuth() *AuthService {
	return NewAuthService(store.NewMemoryStore(), "test-secret", time.Hour, zap.NewNop())
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	session, err := auth.SignUp(ctx, " Alex@Example.com ", "correct horse", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", session.User.Email)
	assert.NotEmpty(t, session.User.ID)
	assert.NotEmpty(t, session.Token)

	claims, err := auth.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.Subject)

	again, err := auth.SignIn(ctx, "alex@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		field    string
	}{
		{"missing email", "", "password1", "password1", "email"},
		{"bad email", "not-an-email", "password1", "password1", "email"},
		{"missing password", "a@b.co", "", "", "password"},
		{"mismatch", "a@b.co", "password1", "password2", "passwordConfirm"},
		{"too short", "a@b.co", "short", "short", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.SignUp(ctx, tt.email, tt.password, tt.confirm)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	_, err := auth.SignUp(ctx, "sam@example.com", "password1", "password1")
	require.NoError(t, err)
	_, err = auth.SignUp(ctx, "SAM@example.com", "password2", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	_, err := auth.SignUp(ctx, "sam@example.com", "password1", "password1")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.SignIn(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	session, err := auth.SignUp(ctx, "sam@example.com", "password1", "password1")
	require.NoError(t, err)
	claims, err := auth.Verify(session.Token)
	require.NoError(t, err)

	auth.SignOut(claims)
	_, err = auth.Verify(session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	session, err := auth.SignUp(ctx, "sam@example.com", "password1", "password1")
	require.NoError(t, err)

	other := NewAuthService(store.NewMemoryStore(), "other-secret", time.Hour, zap.NewNop())
	_, err = other.Verify(session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.Verify(session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Verify("garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
