package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./storefront.db"

	// DefaultCookieName is the cookie carrying the session token.
	// Matches the name browsers already hold from earlier deployments.
	DefaultCookieName = "adminToken"
)
