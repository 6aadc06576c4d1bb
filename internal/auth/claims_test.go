package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("dashboard", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "dashboard" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "dashboard")
	}
	if claims.Scope != ScopeControl {
		t.Errorf("Scope = %q, want %q", claims.Scope, ScopeControl)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %s, want 1h", got)
	}
}

func TestGenerateToken_Defaults(t *testing.T) {
	if _, err := GenerateToken("x", "", time.Hour); !errors.Is(err, ErrNoSecret) {
		t.Errorf("GenerateToken() with no secret error = %v, want ErrNoSecret", err)
	}

	token, err := GenerateToken("x", testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultTTL {
		t.Errorf("lifetime = %s, want %s", got, DefaultTTL)
	}
}

func sign(t *testing.T, method jwt.SigningMethod, claims Claims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "x",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	noSubject := valid
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign(t, jwt.SigningMethodHS256, Claims{valid, ScopeControl}, []byte("another-secret"))},
		{"expired", sign(t, jwt.SigningMethodHS256, Claims{expired, ScopeControl}, []byte(testSecret))},
		{"missing subject", sign(t, jwt.SigningMethodHS256, Claims{noSubject, ScopeControl}, []byte(testSecret))},
		{"wrong scope", sign(t, jwt.SigningMethodHS256, Claims{valid, "read"}, []byte(testSecret))},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, Claims{valid, ScopeControl}, []byte(testSecret))},
		{"unsigned", sign(t, jwt.SigningMethodNone, Claims{valid, ScopeControl}, jwt.UnsafeAllowNoneSignatureType)},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, testSecret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
