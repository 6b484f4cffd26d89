package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/auth"
	"github.com/tiendatech/storefront/internal/database"
	"github.com/tiendatech/storefront/internal/maintenance"
)

// RouterConfig carries all dependencies for route construction, improving
// testability and reducing parameter count.
type RouterConfig struct {
	Database        *database.Database
	AuthController  *auth.AuthController
	SessionResolver *auth.SessionResolver
	Gate            *auth.Gate
	ProductStore    ProductStore
	Auditor         ProductAuditor
	Maintenance     *maintenance.Middleware
	CSRFSecret      []byte
	SecureCookies   bool
	Version         string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Maintenance mode blocks mutations while keeping reads and login open
	if cfg.Maintenance != nil {
		router.Use(cfg.Maintenance.Handler())
	}

	// CSRF protection for cookie-authenticated mutations. Bearer-token API
	// clients are exempt.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.SessionResolver))
	}

	// The authorization gate guards the admin page and API prefixes and
	// forwards the resolved principal to downstream handlers.
	if cfg.Gate != nil {
		router.Use(cfg.Gate.Handler())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Authentication and account routes
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	// Product catalog
	if cfg.ProductStore != nil {
		productsController := NewProductsController(cfg.ProductStore, cfg.Auditor)
		productsController.RegisterRoutes(router)
	}

	// Admin pages
	adminController := NewAdminController()
	adminController.RegisterRoutes(router)

	return router
}
