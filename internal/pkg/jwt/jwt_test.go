package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")
	caller := user.Caller{UserID: "u-1", OrganizationID: "org-1", Role: user.RoleManager, IsAdmin: true}

	tokenString, expiresAt, err := svc.GenerateAccessToken(caller)
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	got, err := CallerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestGenerateAccessToken_BadDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "forever")
	_, _, err := svc.GenerateAccessToken(user.Caller{UserID: "u-1"})
	assert.Error(t, err)
}

func TestCallerFromContext_MissingToken(t *testing.T) {
	_, err := CallerFromContext(context.Background())
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
