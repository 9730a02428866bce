package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

func TestTokenRoundTrip(t *testing.T) {
	Init(config.AuthConfig{JWTSecret: "test-secret", ExpiresHours: 2})

	u := &users.User{ID: 42, Email: "chef@example.com", Role: users.RoleAdmin}
	tok, err := GenerateToken(u)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "chef@example.com" || claims.Role != users.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q", claims.Subject)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", ttl)
	}
}

func TestParseTokenRejects(t *testing.T) {
	Init(config.AuthConfig{JWTSecret: "test-secret", ExpiresHours: 1})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredTok, _ := expired.SignedString([]byte("test-secret"))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1})
	foreignTok, _ := foreign.SignedString([]byte("other-secret"))

	wrongAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1})
	wrongAlgTok, _ := wrongAlg.SignedString([]byte("test-secret"))

	tests := []struct {
		name string
		tok  string
	}{
		{"garbage", "not-a-token"},
		{"expired", expiredTok},
		{"foreign signature", foreignTok},
		{"unexpected algorithm", wrongAlgTok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.tok); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	Init(config.AuthConfig{})
	defer Init(config.AuthConfig{JWTSecret: "test-secret"})

	if _, err := GenerateToken(&users.User{ID: 1}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
