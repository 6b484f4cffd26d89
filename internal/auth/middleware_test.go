package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupGateRouter(t *testing.T) (*gin.Engine, *TokenCodec) {
	t.Helper()
	resolver, codec := newTestResolver(t)
	gate := NewGate(resolver, DefaultProtectedPrefixes())

	router := gin.New()
	router.Use(gate.Handler())

	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	}
	router.GET("/", ok)
	router.GET("/api/products", ok)
	router.GET("/admin/login", ok)
	router.GET("/admin/dashboard", ok)
	router.GET("/admin/settings/security", ok)
	router.GET("/api/admin/products", ok)
	router.GET("/administrator", ok)

	return router, codec
}

func gateRequest(t *testing.T, router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "adminToken", Value: token})
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGate_PagePrefix(t *testing.T) {
	router, codec := setupGateRouter(t)

	adminToken, err := codec.Issue(1, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	userToken, err := codec.Issue(2, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{"anonymous redirected to login", "/admin/dashboard", "", http.StatusFound, "/admin/login"},
		{"invalid token redirected to login", "/admin/dashboard", "garbage", http.StatusFound, "/admin/login"},
		{"user role redirected to login", "/admin/dashboard", userToken, http.StatusFound, "/admin/login"},
		{"admin allowed", "/admin/dashboard", adminToken, http.StatusOK, ""},
		{"nested path covered", "/admin/settings/security", "", http.StatusFound, "/admin/login"},
		{"login page reachable anonymously", "/admin/login", "", http.StatusOK, ""},
		{"login page reachable with invalid token", "/admin/login", "garbage", http.StatusOK, ""},
		{"admin on login page sent to dashboard", "/admin/login", adminToken, http.StatusFound, "/admin/dashboard"},
		{"user on login page sees the form", "/admin/login", userToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := gateRequest(t, router, tt.path, tt.token)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" {
				if got := rr.Header().Get("Location"); got != tt.wantLocation {
					t.Errorf("Location = %q, want %q", got, tt.wantLocation)
				}
			}
		})
	}
}

func TestGate_APIPrefix(t *testing.T) {
	router, codec := setupGateRouter(t)

	adminToken, err := codec.Issue(1, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	userToken, err := codec.Issue(2, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"anonymous gets 401", "", http.StatusUnauthorized},
		{"invalid token gets 401", "garbage", http.StatusUnauthorized},
		{"user role gets 403", userToken, http.StatusForbidden},
		{"admin allowed", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := gateRequest(t, router, "/api/admin/products", tt.token)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			// Denials are JSON, never redirects.
			if rr.Code != http.StatusOK {
				if loc := rr.Header().Get("Location"); loc != "" {
					t.Errorf("API denial must not redirect, got Location %q", loc)
				}
			}
		})
	}
}

func TestGate_PrefixMatchesSegmentsOnly(t *testing.T) {
	router, _ := setupGateRouter(t)

	// "/administrator" shares the "/admin" byte prefix but is a different
	// path segment; it must stay unprotected.
	rr := gateRequest(t, router, "/administrator", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for path outside the prefix", rr.Code)
	}
}

func TestGate_UnprotectedRoutesStillResolvePrincipal(t *testing.T) {
	router, codec := setupGateRouter(t)

	token, err := codec.Issue(7, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rr := gateRequest(t, router, "/api/products", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := rr.Body.String(); body != `{"user_id":7}` {
		t.Errorf("body = %s, want principal forwarded to handler", body)
	}

	// Anonymous requests pass through untouched.
	rr = gateRequest(t, router, "/api/products", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for anonymous unprotected request", rr.Code)
	}
}

func TestGetPrincipalHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetPrincipal(c) != nil {
		t.Error("GetPrincipal() on empty context should be nil")
	}
	if GetUserID(c) != 0 {
		t.Error("GetUserID() on empty context should be 0")
	}
	if GetUserRole(c) != "" {
		t.Error("GetUserRole() on empty context should be empty")
	}

	setPrincipal(c, &Principal{UserID: 5, Role: entities.UserRoleAdmin})

	if p := GetPrincipal(c); p == nil || p.UserID != 5 || !p.IsAdmin() {
		t.Errorf("GetPrincipal() = %+v, want admin principal with id 5", p)
	}
	if GetUserID(c) != 5 {
		t.Errorf("GetUserID() = %d, want 5", GetUserID(c))
	}
	if GetUserRole(c) != entities.UserRoleAdmin {
		t.Errorf("GetUserRole() = %s, want ADMIN", GetUserRole(c))
	}
}
