package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
)

// Permissions carried by staff tokens
const (
	PermissionAll            = "*"
	PermissionOrdersRead     = "orders:read"
	PermissionOrdersWrite    = "orders:write"
	PermissionPaymentsWrite  = "payments:write"
	PermissionRefundsWrite   = "refunds:write"
	PermissionFulfillWrite   = "fulfillments:write"
	PermissionReturnsWrite   = "returns:write"
	PermissionInventoryRead  = "inventory:read"
	PermissionInventoryWrite = "inventory:write"
	PermissionOutboxAdmin    = "outbox:admin"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingStoreID   = errors.New("missing store_id in claims")
	ErrMissingActorID   = errors.New("missing actor_id in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims identify the store a request acts on and the staff member or
// integration acting
type Claims struct {
	jwt.RegisteredClaims
	StoreID     string   `json:"store_id"`
	ActorID     string   `json:"actor_id"`
	Permissions []string `json:"permissions,omitempty"`
}

// JWTService signs and validates HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// TokenInput describes the token to issue
type TokenInput struct {
	StoreID     uuid.UUID
	ActorID     uuid.UUID
	Permissions []string
}

// GenerateAccessToken issues a signed token and returns it with its expiry
func (s *JWTService) GenerateAccessToken(input TokenInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.ActorID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		StoreID:     input.StoreID.String(),
		ActorID:     input.ActorID.String(),
		Permissions: input.Permissions,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccessToken verifies signature, validity window, issuer and the
// store and actor claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if _, err := uuid.Parse(claims.StoreID); err != nil {
		return nil, ErrMissingStoreID
	}
	if _, err := uuid.Parse(claims.ActorID); err != nil {
		return nil, ErrMissingActorID
	}
	return claims, nil
}

// StoreUUID parses the store claim
func (c *Claims) StoreUUID() uuid.UUID {
	id, _ := uuid.Parse(c.StoreID)
	return id
}

// ActorUUID parses the actor claim
func (c *Claims) ActorUUID() uuid.UUID {
	id, _ := uuid.Parse(c.ActorID)
	return id
}

// HasPermission reports whether the token grants permission. "*" grants all.
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, PermissionAll) || slices.Contains(c.Permissions, permission)
}

// HasAnyPermission reports whether any of permissions is granted
func (c *Claims) HasAnyPermission(permissions ...string) bool {
	return slices.ContainsFunc(permissions, c.HasPermission)
}

// IssuedAtTime returns the iat claim
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
