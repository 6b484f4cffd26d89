package auth

import (
	"net/http"
	"strings"

	"github.com/tiendatech/storefront/internal/entities"
)

// Principal is the authenticated identity derived from a verified token.
type Principal struct {
	UserID uint
	Role   entities.UserRole
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == entities.UserRoleAdmin
}

// SessionResolver locates a session token on an incoming request and
// resolves it to a principal. Resolution is read-only: no token refresh,
// no store access.
type SessionResolver struct {
	codec      *TokenCodec
	cookieName string
}

// NewSessionResolver creates a resolver reading the named cookie first and
// falling back to the Authorization header.
func NewSessionResolver(codec *TokenCodec, cookieName string) *SessionResolver {
	return &SessionResolver{
		codec:      codec,
		cookieName: cookieName,
	}
}

// CookieName returns the configured session cookie name.
func (r *SessionResolver) CookieName() string {
	return r.cookieName
}

// TokenFromRequest extracts the raw token string, or "" if absent.
func (r *SessionResolver) TokenFromRequest(req *http.Request) string {
	if cookie, err := req.Cookie(r.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Resolve returns the principal for the request, or nil for anonymous.
// An invalid or expired token resolves to nil, not an error: anonymous
// requests are legal for unprotected routes, and callers that require
// authentication treat nil as unauthenticated.
func (r *SessionResolver) Resolve(req *http.Request) *Principal {
	token := r.TokenFromRequest(req)
	if token == "" {
		return nil
	}

	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil
	}

	return &Principal{
		UserID: claims.UserID,
		Role:   claims.Role,
	}
}

// ResolveClaims is like Resolve but returns the full verified claims,
// for callers that need the expiry (token refresh).
func (r *SessionResolver) ResolveClaims(req *http.Request) *Claims {
	token := r.TokenFromRequest(req)
	if token == "" {
		return nil
	}
	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}
