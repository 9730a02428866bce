package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

var ErrNotConfigured = errors.New("auth: jwt secret not configured")

var (
	mu      sync.RWMutex
	secret  []byte
	expires = 24 * time.Hour
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Init installs the signing secret and token lifetime.
func Init(cfg config.AuthConfig) {
	mu.Lock()
	defer mu.Unlock()
	secret = []byte(cfg.JWTSecret)
	if cfg.ExpiresHours > 0 {
		expires = time.Duration(cfg.ExpiresHours) * time.Hour
	}
}

func signingKey() ([]byte, time.Duration, error) {
	mu.RLock()
	defer mu.RUnlock()
	if len(secret) == 0 {
		return nil, 0, ErrNotConfigured
	}
	return secret, expires, nil
}

func GenerateToken(u *users.User) (string, error) {
	key, ttl, err := signingKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func ParseToken(tokenStr string) (*Claims, error) {
	key, _, err := signingKey()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
