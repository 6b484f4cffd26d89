package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiendatech/storefront/internal/entities"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec
}

func TestNewTokenCodec(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		lifetime time.Duration
		wantErr  error
	}{
		{
			name:     "valid secret",
			secret:   testSecret,
			lifetime: time.Hour,
			wantErr:  nil,
		},
		{
			name:    "empty secret",
			secret:  "",
			wantErr: ErrSecretTooShort,
		},
		{
			name:    "secret below minimum",
			secret:  strings.Repeat("a", MinSecretLength-1),
			wantErr: ErrSecretTooShort,
		},
		{
			name:     "zero lifetime defaults to 24h",
			secret:   testSecret,
			lifetime: 0,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewTokenCodec(tt.secret, tt.lifetime)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewTokenCodec() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && tt.lifetime == 0 && codec.Lifetime() != 24*time.Hour {
				t.Errorf("Lifetime() = %v, want 24h default", codec.Lifetime())
			}
		})
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(42, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != entities.UserRoleAdmin {
		t.Errorf("Role = %s, want ADMIN", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected both issued-at and expiry to be set")
	}

	gotLifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if gotLifetime != time.Hour {
		t.Errorf("expiry window = %v, want %v", gotLifetime, time.Hour)
	}
}

func TestTokenCodec_IssueRejectsUnknownShapes(t *testing.T) {
	codec := newTestCodec(t)

	if _, err := codec.Issue(0, entities.UserRoleUser); err == nil {
		t.Error("Issue() with zero user id should fail")
	}
	if _, err := codec.Issue(1, "SUPERUSER"); err == nil {
		t.Error("Issue() with unknown role should fail")
	}
}

func TestTokenCodec_VerifyTampered(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(7, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in each segment of the token.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	for i, segment := range parts {
		mutated := make([]string, 3)
		copy(mutated, parts)

		c := segment[len(segment)/2]
		replacement := byte('A')
		if c == 'A' {
			replacement = 'B'
		}
		mutated[i] = segment[:len(segment)/2] + string(replacement) + segment[len(segment)/2+1:]

		if _, err := codec.Verify(strings.Join(mutated, ".")); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify() on token with mutated segment %d: error = %v, want ErrTokenInvalid", i, err)
		}
	}
}

func TestTokenCodec_VerifyWrongSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewTokenCodec(strings.Repeat("x", MinSecretLength), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}

	token, err := other.Issue(7, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() with wrong secret: error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodec_VerifyExpired(t *testing.T) {
	// Construct directly to mint an already-expired token.
	expired := &TokenCodec{secret: []byte(testSecret), lifetime: -time.Hour}

	token, err := expired.Issue(7, entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	codec := newTestCodec(t)
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() on expired token: error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodec_VerifyGarbage(t *testing.T) {
	codec := newTestCodec(t)

	inputs := []string{
		"",
		".",
		"..",
		"not-a-token",
		"a.b.c",
		strings.Repeat("A", 10000),
		"eyJhbGciOiJIUzI1NiJ9",
		"\x00\x01\x02",
	}

	for _, input := range inputs {
		if _, err := codec.Verify(input); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%q): error = %v, want ErrTokenInvalid", input, err)
		}
	}
}

func TestTokenCodec_VerifyRejectsNoneAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 7,
		Role:   entities.UserRoleAdmin,
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() on alg=none token: error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodec_VerifyRejectsForeignClaims(t *testing.T) {
	codec := newTestCodec(t)

	// Correctly signed tokens whose payload does not look like a session.
	tests := []struct {
		name   string
		claims Claims
	}{
		{
			name: "zero user id",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				Role: entities.UserRoleUser,
			},
		},
		{
			name: "unknown role",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				UserID: 7,
				Role:   "ROOT",
			},
		},
		{
			name: "missing expiry",
			claims: Claims{
				UserID: 7,
				Role:   entities.UserRoleUser,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("SignedString() error = %v", err)
			}
			if _, err := codec.Verify(token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestTokenCodec_Refresh(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(42, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	refreshed, err := codec.Refresh(claims)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	newClaims, err := codec.Verify(refreshed)
	if err != nil {
		t.Fatalf("Verify() on refreshed token: error = %v", err)
	}
	if newClaims.UserID != claims.UserID || newClaims.Role != claims.Role {
		t.Errorf("refreshed claims = %d/%s, want %d/%s",
			newClaims.UserID, newClaims.Role, claims.UserID, claims.Role)
	}

	if _, err := codec.Refresh(nil); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Refresh(nil) error = %v, want ErrTokenInvalid", err)
	}
}
