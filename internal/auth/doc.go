// Package auth provides authentication and authorization for the storefront.
//
// Sessions are stateless: a signed HS256 token carries the user id and role,
// and validity is determined entirely by signature and expiry at verification
// time. There is no server-side session table and no revocation list; logout
// only discards the client cookie.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<min-32-bytes>   # HS256 signing secret (required)
//	AUTH_TOKEN_LIFETIME=24h          # Token validity window
//	AUTH_COOKIE_NAME=adminToken      # Session cookie name
//	AUTH_BCRYPT_COST=10              # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true         # HTTPS-only cookies
//
// # Usage
//
// Initialize in entrypoint:
//
//	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
//	resolver := auth.NewSessionResolver(codec, cfg.Auth.CookieName)
//	gate := auth.NewGate(resolver, auth.DefaultProtectedPrefixes())
//	router.Use(gate.Handler())
//
// Extract the principal in handlers:
//
//	principal := auth.GetPrincipal(c) // nil for anonymous requests
package auth
