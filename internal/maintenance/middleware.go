package maintenance

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations while maintenance mode is active.
// Read-only operations (GET) are always allowed, so the catalog stays
// browsable during migrations or restores.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a maintenance mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether maintenance mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// Always allow GET requests (read-only)
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		// Allow HEAD and OPTIONS for CORS/preflight
		if c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// Check if path is in the allowlist for non-GET methods
		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// isAllowedPath checks if a path is allowed for write operations during
// maintenance. Intentionally restrictive - only explicitly allowed paths
// pass through.
func (m *Middleware) isAllowedPath(path string) bool {
	allowedPaths := []string{
		// Admins still need to sign in and out to inspect the system
		"/api/auth/login",
		"/api/auth/logout",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// respondBlocked sends a 503 response with an appropriate message.
func (m *Middleware) respondBlocked(c *gin.Context) {
	message := "This action is unavailable during maintenance"

	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.Header("Retry-After", "300")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":       message,
			"maintenance": true,
		})
		c.Abort()
		return
	}

	c.Header("Retry-After", "300")
	c.String(http.StatusServiceUnavailable, message)
	c.Abort()
}
