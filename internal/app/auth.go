package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/samit-dev/wisuda/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Auth struct {
	secret   []byte
	tokenTTL time.Duration
}

// Claims carries the student identity inside the signed token, matching the
// payload the frontend already expects.
type Claims struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
	jwt.RegisteredClaims
}

func NewAuth(config *Config) (*Auth, error) {
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &Auth{
		secret:   []byte(config.Auth.JWTSecret),
		tokenTTL: config.TokenTTL(),
	}, nil
}

// VerifyPassword checks a password against the stored bcrypt hash. Hashes
// imported from the old PHP provisioning use the $2y$ prefix, which the Go
// bcrypt package does not accept.
func VerifyPassword(hash, password string) error {
	if strings.HasPrefix(hash, "$2y$") {
		hash = "$2b$" + hash[len("$2y$"):]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs a bearer token for the student, valid for the configured
// TTL (2 hours by default). There is no refresh; expiry is enforced purely
// by signature verification.
func (a *Auth) IssueToken(student *models.Student, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(a.tokenTTL)

	claims := Claims{
		ID:   student.ID,
		UUID: student.UUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// VerifyToken parses and verifies a bearer token, returning the embedded
// claims. Expired, malformed, or tampered tokens all come back as
// ErrInvalidToken; callers get no further detail.
func (a *Auth) VerifyToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrInvalidToken
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}
