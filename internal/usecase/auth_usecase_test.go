package usecase

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterbox-im/chatterbox/internal/config"
)

func newTestAuth() AuthUsecase {
	return NewAuthUsecase(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret"},
	})
}

func TestIssueAndValidateToken(t *testing.T) {
	auth := newTestAuth()
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, "user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestValidateTokenRejectsEmpty(t *testing.T) {
	_, err := newTestAuth().ValidateToken(context.Background(), "")
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := newTestAuth().ValidateToken(context.Background(), "not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	other := NewAuthUsecase(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "other-secret"},
	})
	token, err := other.IssueToken(context.Background(), "user-42")
	require.NoError(t, err)

	_, err = newTestAuth().ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestAuth().ValidateToken(context.Background(), signed)
	assert.Error(t, err)
}
