package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/entities"
)

// Context keys for the resolved principal
const (
	ContextKeyPrincipal = "auth_principal"
	ContextKeyUserID    = "auth_user_id"
	ContextKeyRole      = "auth_role"
)

// PrefixKind classifies how a protected prefix denies access. The source
// of truth is configuration, never the URL shape.
type PrefixKind string

const (
	// PrefixPage serves browser-rendered pages; denial redirects to the
	// login page.
	PrefixPage PrefixKind = "page"
	// PrefixAPI serves JSON; denial returns a structured 401/403 error.
	PrefixAPI PrefixKind = "api"
)

// ProtectedPrefix guards a path prefix so only principals with the required
// role may pass.
type ProtectedPrefix struct {
	Path string
	Kind PrefixKind
	Role entities.UserRole

	// LoginPath is reachable without a token even inside a page prefix,
	// so unauthenticated users can actually log in. Empty for API prefixes.
	LoginPath string

	// HomePath is where an already-authenticated request to LoginPath is
	// sent instead of the login form.
	HomePath string
}

// DefaultProtectedPrefixes returns the storefront's gate configuration:
// the admin pages and the admin API, both ADMIN-only.
func DefaultProtectedPrefixes() []ProtectedPrefix {
	return []ProtectedPrefix{
		{
			Path:      "/admin",
			Kind:      PrefixPage,
			Role:      entities.UserRoleAdmin,
			LoginPath: "/admin/login",
			HomePath:  "/admin/dashboard",
		},
		{
			Path: "/api/admin",
			Kind: PrefixAPI,
			Role: entities.UserRoleAdmin,
		},
	}
}

// Gate is the edge middleware deciding allow/deny per request. It holds no
// mutable state: re-running it on the same request with the same token
// yields the same decision, modulo token expiry.
type Gate struct {
	resolver *SessionResolver
	prefixes []ProtectedPrefix
}

// NewGate creates the authorization gate for the given protected prefixes.
func NewGate(resolver *SessionResolver, prefixes []ProtectedPrefix) *Gate {
	return &Gate{
		resolver: resolver,
		prefixes: prefixes,
	}
}

// Handler returns the Gin middleware enforcing the gate.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		prefix := g.match(c.Request.URL.Path)
		if prefix == nil {
			// Unprotected route. Still resolve the principal so handlers
			// outside the gate (profile, change-password) can use it.
			if principal := g.resolver.Resolve(c.Request); principal != nil {
				setPrincipal(c, principal)
			}
			c.Next()
			return
		}

		principal := g.resolver.Resolve(c.Request)

		// The login page is reachable without a token. A request that
		// already carries a valid token with the required role is sent to
		// the dashboard instead of the login form.
		if prefix.LoginPath != "" && c.Request.URL.Path == prefix.LoginPath {
			if principal != nil && principal.Role == prefix.Role {
				c.Redirect(http.StatusFound, prefix.HomePath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if principal == nil {
			g.deny(c, prefix, http.StatusUnauthorized, "authentication required")
			return
		}
		if principal.Role != prefix.Role {
			g.deny(c, prefix, http.StatusForbidden, "insufficient permissions")
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// deny aborts the request according to the prefix kind. Page prefixes
// redirect to the login page regardless of whether the failure was a
// missing token or a role mismatch.
func (g *Gate) deny(c *gin.Context, prefix *ProtectedPrefix, status int, message string) {
	if prefix.Kind == PrefixPage {
		c.Redirect(http.StatusFound, prefix.LoginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// match returns the protected prefix covering the path, or nil.
func (g *Gate) match(path string) *ProtectedPrefix {
	for i := range g.prefixes {
		p := &g.prefixes[i]
		if path == p.Path || strings.HasPrefix(path, p.Path+"/") {
			return p
		}
	}
	return nil
}

func setPrincipal(c *gin.Context, principal *Principal) {
	c.Set(ContextKeyPrincipal, principal)
	c.Set(ContextKeyUserID, principal.UserID)
	c.Set(ContextKeyRole, principal.Role)
}

// Helper functions to extract auth data from the Gin context

// GetPrincipal retrieves the resolved principal, or nil for anonymous.
func GetPrincipal(c *gin.Context) *Principal {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if principal, ok := v.(*Principal); ok {
			return principal
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID, or 0 for anonymous.
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := v.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserRole retrieves the authenticated user's role, or "" for anonymous.
func GetUserRole(c *gin.Context) entities.UserRole {
	if v, exists := c.Get(ContextKeyRole); exists {
		if role, ok := v.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}
