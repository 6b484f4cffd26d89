package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/audit"
	"github.com/tiendatech/storefront/internal/auth"
	"github.com/tiendatech/storefront/internal/config"
	"github.com/tiendatech/storefront/internal/database"
	auditdb "github.com/tiendatech/storefront/internal/database/audit"
	"github.com/tiendatech/storefront/internal/database/products"
	"github.com/tiendatech/storefront/internal/database/users"
	"github.com/tiendatech/storefront/internal/entities"
	http_controllers "github.com/tiendatech/storefront/internal/http"
	"github.com/tiendatech/storefront/internal/maintenance"
	"github.com/tiendatech/storefront/internal/scheduler"
	"github.com/tiendatech/storefront/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Storefront v%s", version)

	// The signing secret is mandatory: tokens minted with an ephemeral
	// secret would be invalidated on every restart.
	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("AUTH_JWT_SECRET is not set. Generate one with: openssl rand -hex 32")
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		log.Fatalf("Failed to initialize token codec: %v", err)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	usersRepo := users.NewRepository(db.DB)
	productsRepo := products.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)

	auditService := audit.NewService(auditRepo)

	// Session resolution and the authorization gate
	resolver := auth.NewSessionResolver(codec, cfg.Auth.CookieName)
	gate := auth.NewGate(resolver, auth.DefaultProtectedPrefixes())

	authService := auth.NewService(usersRepo, codec, cfg.Auth)
	authController := auth.NewAuthController(authService, resolver, auditService, cfg.Auth)
	defer authController.Stop()

	if admins, err := usersRepo.CountByRole(entities.UserRoleAdmin); err == nil && admins == 0 {
		log.Printf("No administrator accounts found. Create one with: %s create-admin", os.Args[0])
	}

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.CSRFSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.CSRFSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.CSRFSecret)
		}
	} else {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated CSRF secret (set AUTH_CSRF_SECRET to persist)")
	}

	// Initialize task queue and the audit retention scheduler if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var auditScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		auditScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit)
		if err := auditScheduler.Start(); err != nil {
			log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
		}
	}

	var maintenanceMiddleware *maintenance.Middleware
	if cfg.Global.MaintenanceMode {
		log.Printf("Maintenance mode enabled - write operations will be blocked")
		maintenanceMiddleware = maintenance.NewMiddleware(true)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		AuthController:  authController,
		SessionResolver: resolver,
		Gate:            gate,
		ProductStore:    productsRepo,
		Auditor:         auditService,
		Maintenance:     maintenanceMiddleware,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if auditScheduler != nil {
			auditScheduler.Stop()
		}
		if taskClient != nil {
			log.Printf("Stopping task queue workers...")
			if !taskClient.Stop(ctx) {
				log.Printf("Task queue workers did not stop cleanly within timeout")
			}
		}
		if taskCtxCancel != nil {
			taskCtxCancel()
		}
	})
}
