package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "commerce-core",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestInput() TokenInput {
	return TokenInput{
		StoreID:     uuid.New(),
		ActorID:     uuid.New(),
		Permissions: []string{PermissionOrdersRead, PermissionRefundsWrite},
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, input.StoreID, claims.StoreUUID())
	assert.Equal(t, input.ActorID, claims.ActorUUID())
	assert.Equal(t, input.ActorID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)
	assert.False(t, claims.IssuedAtTime().IsZero())
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "commerce-core", AccessTokenExpiration: time.Minute})
		token, _, err := other.GenerateAccessToken(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else", AccessTokenExpiration: time.Minute})
		token, _, err := other.GenerateAccessToken(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "commerce-core", AccessTokenExpiration: -time.Minute})
		token, _, err := expired.GenerateAccessToken(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("missing store", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "commerce-core",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			ActorID: uuid.NewString(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-at-least-32-chars"))
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMissingStoreID)
	})

	t.Run("non HMAC signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{StoreID: uuid.NewString(), ActorID: uuid.NewString()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Permissions(t *testing.T) {
	claims := &Claims{Permissions: []string{PermissionOrdersRead, PermissionRefundsWrite}}
	assert.True(t, claims.HasPermission(PermissionOrdersRead))
	assert.False(t, claims.HasPermission(PermissionOutboxAdmin))
	assert.True(t, claims.HasAnyPermission(PermissionOutboxAdmin, PermissionRefundsWrite))
	assert.False(t, claims.HasAnyPermission())

	admin := &Claims{Permissions: []string{PermissionAll}}
	assert.True(t, admin.HasPermission(PermissionOutboxAdmin))
}
