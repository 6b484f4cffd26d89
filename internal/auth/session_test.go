package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tiendatech/storefront/internal/entities"
)

func newTestResolver(t *testing.T) (*SessionResolver, *TokenCodec) {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return NewSessionResolver(codec, "adminToken"), codec
}

func TestSessionResolver_CookieFirst(t *testing.T) {
	resolver, codec := newTestResolver(t)

	cookieToken, err := codec.Issue(1, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	headerToken, err := codec.Issue(2, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Both carriers present: the cookie wins.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "adminToken", Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)

	principal := resolver.Resolve(req)
	if principal == nil {
		t.Fatal("Resolve() = nil, want principal")
	}
	if principal.UserID != 1 {
		t.Errorf("UserID = %d, want 1 (cookie token)", principal.UserID)
	}
}

func TestSessionResolver_BearerFallback(t *testing.T) {
	resolver, codec := newTestResolver(t)

	token, err := codec.Issue(2, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   uint
	}{
		{"standard bearer", "Bearer " + token, 2},
		{"lowercase scheme", "bearer " + token, 2},
		{"uppercase scheme", "BEARER " + token, 2},
		{"wrong scheme", "Basic " + token, 0},
		{"no scheme", token, 0},
		{"empty header", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			principal := resolver.Resolve(req)
			if tt.want == 0 {
				if principal != nil {
					t.Errorf("Resolve() = %+v, want nil", principal)
				}
				return
			}
			if principal == nil {
				t.Fatal("Resolve() = nil, want principal")
			}
			if principal.UserID != tt.want {
				t.Errorf("UserID = %d, want %d", principal.UserID, tt.want)
			}
		})
	}
}

func TestSessionResolver_InvalidTokensResolveToNil(t *testing.T) {
	resolver, _ := newTestResolver(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "adminToken", Value: "garbage"})

	if principal := resolver.Resolve(req); principal != nil {
		t.Errorf("Resolve() with invalid cookie = %+v, want nil", principal)
	}
}

func TestSessionResolver_EmptyCookieFallsThroughToHeader(t *testing.T) {
	resolver, codec := newTestResolver(t)

	token, err := codec.Issue(3, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "adminToken", Value: ""})
	req.Header.Set("Authorization", "Bearer "+token)

	principal := resolver.Resolve(req)
	if principal == nil {
		t.Fatal("Resolve() = nil, want principal from header")
	}
	if principal.UserID != 3 {
		t.Errorf("UserID = %d, want 3", principal.UserID)
	}
}

func TestSessionResolver_ResolveClaims(t *testing.T) {
	resolver, codec := newTestResolver(t)

	token, err := codec.Issue(4, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "adminToken", Value: token})

	claims := resolver.ResolveClaims(req)
	if claims == nil {
		t.Fatal("ResolveClaims() = nil, want claims")
	}
	if claims.UserID != 4 || claims.ExpiresAt == nil {
		t.Errorf("claims = %+v, want user 4 with expiry", claims)
	}

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims := resolver.ResolveClaims(anonymous); claims != nil {
		t.Errorf("ResolveClaims() on anonymous request = %+v, want nil", claims)
	}
}
