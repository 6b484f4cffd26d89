package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiendatech/storefront/internal/entities"
)

// MinSecretLength is the minimum signing secret size in bytes. HS256 keys
// shorter than the hash output weaken the HMAC security margin.
const MinSecretLength = 32

var (
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 bytes")

	// ErrTokenInvalid covers malformed, tampered and expired tokens alike.
	// Callers must not distinguish between them.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload carried by a session token. Unknown shapes (zero
// user id, role outside the enum) are rejected at verification time.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint              `json:"userId"`
	Role   entities.UserRole `json:"role"`
}

// TokenCodec signs and verifies session tokens. The secret is fixed at
// construction and never rotated at runtime; rotation would invalidate all
// outstanding tokens.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenCodec creates a codec with the given signing secret and token
// lifetime. A lifetime of zero defaults to 24 hours.
func NewTokenCodec(secret string, lifetime time.Duration) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &TokenCodec{
		secret:   []byte(secret),
		lifetime: lifetime,
	}, nil
}

// Issue signs a token carrying the user id and role, with issued-at set to
// now and expiry after the configured lifetime.
func (c *TokenCodec) Issue(userID uint, role entities.UserRole) (string, error) {
	if userID == 0 {
		return "", errors.New("user id is required")
	}
	if !role.Valid() {
		return "", errors.New("unknown role")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
		UserID: userID,
		Role:   role,
	})

	return token.SignedString(c.secret)
}

// Verify parses and validates a token string. It never panics and never
// returns partial claims: any failure (malformed input, wrong signature,
// wrong algorithm, expired, unknown payload shape) yields ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// Reject payloads that parse but do not look like ours.
	if claims.UserID == 0 || !claims.Role.Valid() || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Refresh reissues a token from already-verified claims with a fresh expiry.
// The caller is expected to have obtained the claims from Verify.
func (c *TokenCodec) Refresh(claims *Claims) (string, error) {
	if claims == nil {
		return "", ErrTokenInvalid
	}
	return c.Issue(claims.UserID, claims.Role)
}

// Lifetime returns the configured token validity window.
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}
