package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for the CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFMiddleware creates a Gin middleware for CSRF protection on
// cookie-authenticated requests. Requests authenticated with a valid
// Bearer token skip the check: header credentials are not attached by the
// browser, so they carry no CSRF risk.
func CSRFMiddleware(secret []byte, secure bool, resolver *SessionResolver) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c.Request, resolver) {
			c.Next()
			return
		}

		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Expose the token so clients can echo it back on mutations.
			// Safe requests also get it as a response header, which is how
			// the frontend obtains it before its first POST.
			token := csrf.Token(r)
			c.Set("csrf_token", token)
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Header(CSRFTokenHeader, token)
			}
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// GetCSRFToken returns the CSRF token for the current request, if any.
func GetCSRFToken(c *gin.Context) string {
	if v, exists := c.Get("csrf_token"); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

// hasValidBearer reports whether the request carries a verifiable token in
// the Authorization header specifically (not the cookie).
func hasValidBearer(r *http.Request, resolver *SessionResolver) bool {
	if resolver == nil {
		return false
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}

	stripped := r.Clone(r.Context())
	stripped.Header.Del("Cookie")
	return resolver.Resolve(stripped) != nil
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
}
