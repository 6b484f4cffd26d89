package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/config"
	"github.com/tiendatech/storefront/internal/entities"
)

// AuthAuditor records authentication events. Implemented by the audit
// service; nil disables recording.
type AuthAuditor interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
	LogAccount(userID uint, action, description string)
}

// UserResponse is the user shape returned to clients. The password hash
// never leaves the server.
type UserResponse struct {
	ID    uint              `json:"id"`
	Email string            `json:"email"`
	Name  string            `json:"name"`
	Role  entities.UserRole `json:"role"`
}

func toUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service     *Service
	resolver    *SessionResolver
	rateLimiter *RateLimiter
	auditor     AuthAuditor
	cfg         config.Auth
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, resolver *SessionResolver, auditor AuthAuditor, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:     service,
		resolver:    resolver,
		rateLimiter: rateLimiter,
		auditor:     auditor,
		cfg:         cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
// /api/admin/create sits under the gated admin API prefix; the others are
// reachable anonymously and enforce authentication themselves where needed.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.POST("/api/auth/register", ac.Register)
	router.POST("/api/auth/change-password", ac.ChangePassword)
	router.GET("/api/auth/refresh", ac.Refresh)
	router.GET("/api/auth/me", ac.Me)
	router.PUT("/api/user/profile", ac.UpdateProfile)
	router.POST("/api/admin/create", ac.CreateAdmin)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, issues a token and sets the session cookie.
// The token is also returned in the body for non-cookie clients.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
	}

	user, token, err := ac.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if ac.rateLimiter != nil {
				ac.rateLimiter.RecordFailure(clientIP, req.Email)
			}
			if ac.auditor != nil {
				ac.auditor.LogAuth(0, "login", clientIP, c.Request.UserAgent(), false)
			}
			// Identical body and status for unknown email and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}
	if ac.auditor != nil {
		ac.auditor.LogAuth(user.ID, "login", clientIP, c.Request.UserAgent(), true)
	}

	ac.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"user":  toUserResponse(user),
		"token": token,
	})
}

// Logout deletes the session cookie. The token itself stays valid until
// its natural expiry; there is no server-side revocation.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.auditor != nil {
		if principal := ac.resolver.Resolve(c.Request); principal != nil {
			ac.auditor.LogAuth(principal.UserID, "logout", c.ClientIP(), c.Request.UserAgent(), true)
		}
	}
	ac.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// Register creates a USER account and logs it in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := ac.service.Register(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		case errors.Is(err, ErrEmailInvalid), errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	if ac.auditor != nil {
		ac.auditor.LogAuth(user.ID, "register", c.ClientIP(), c.Request.UserAgent(), true)
	}

	ac.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"user":  toUserResponse(user),
		"token": token,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword verifies the current password and stores a new hash for
// the authenticated user.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	principal := ac.resolver.Resolve(c.Request)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current and new passwords are required"})
		return
	}

	err := ac.service.ChangePassword(principal.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Password change failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	if ac.auditor != nil {
		ac.auditor.LogAuth(principal.UserID, "password_change", c.ClientIP(), c.Request.UserAgent(), true)
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Refresh reissues a token with a fresh expiry from the verified claims of
// the presented one, and resets the cookie.
func (ac *AuthController) Refresh(c *gin.Context) {
	claims := ac.resolver.ResolveClaims(c.Request)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	token, err := ac.service.Codec().Refresh(claims)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the authenticated user's record.
func (ac *AuthController) Me(c *gin.Context) {
	principal := ac.resolver.Resolve(c.Request)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := ac.service.GetUserByID(principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("Failed to load user %d: %v", principal.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateProfile updates the authenticated user's display name.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	principal := ac.resolver.Resolve(c.Request)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	user, err := ac.service.UpdateProfile(principal.UserID, req.Name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("Profile update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.auditor != nil {
		ac.auditor.LogAccount(principal.UserID, "profile_update", "Updated profile name")
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type createAdminRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// CreateAdmin creates a new ADMIN account. The route lives under the gated
// admin API prefix, so only an authenticated ADMIN reaches this handler.
func (ac *AuthController) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and name are required"})
		return
	}

	admin, err := ac.service.CreateAdmin(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		case errors.Is(err, ErrEmailInvalid), errors.Is(err, ErrNameRequired),
			errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Admin creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	if ac.auditor != nil {
		ac.auditor.LogAccount(GetUserID(c), "admin_create", "Created admin account "+admin.Email)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "admin created",
		"admin":   toUserResponse(admin),
	})
}

// setSessionCookie attaches the token as an httpOnly, lax cookie scoped to
// "/" with max-age equal to the token lifetime.
func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(ac.service.Codec().Lifetime().Seconds())
	c.SetCookie(ac.cfg.CookieName, token, maxAge, "/", "", ac.cfg.SecureCookies, true)
}

// clearSessionCookie deletes the session cookie.
func (ac *AuthController) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cfg.CookieName, "", -1, "/", "", ac.cfg.SecureCookies, true)
}
