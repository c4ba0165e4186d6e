// Package auth validates credentials against the Users resource and
// issues signed, time-limited session tokens. Tokens are stateless:
// there is no server-side revocation, a token is valid until its
// embedded expiry elapses.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fleetdesk/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserSource looks up accounts for credential checks.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// Claims are the token payload: who the user is and what they may do.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens.
type Service struct {
	users    UserSource
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(users UserSource, secret string, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login checks the credentials and returns a signed token with the
// matched user. Username matching is case-insensitive and trimmed; the
// password must match exactly after trimming.
func (s *Service) Login(ctx context.Context, username, password string) (string, types.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", types.User{}, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", types.User{}, ErrInvalidCredentials
	}

	if !s.passwordMatches(user, password) {
		return "", types.User{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", types.User{}, err
	}
	return token, user, nil
}

// Verify checks signature and expiry. Every failure mode (malformed,
// expired, bad signature) collapses to a nil result so callers treat
// them uniformly as unauthenticated.
func (s *Service) Verify(tokenString string) *Claims {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Username) == "" {
		return nil
	}
	return claims
}

// passwordMatches verifies bcrypt hashes and falls back to a
// constant-time plain comparison for legacy sheet rows that predate
// hashing. The fallback is a known gap kept deliberately; its use is
// logged so remaining plaintext rows can be migrated.
func (s *Service) passwordMatches(user types.User, password string) bool {
	stored := strings.TrimSpace(user.Password)
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1 {
		s.logger.Warn("plaintext password row matched, migrate to bcrypt", "username", user.Username)
		return true
	}
	return false
}

// HashPassword produces the stored form for new or updated user rows.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EnsureHashed returns the stored form for a submitted password.
// Values that already look like a bcrypt hash pass through unchanged.
func EnsureHashed(password string) (string, error) {
	if isBcryptHash(password) {
		return password, nil
	}
	return HashPassword(password)
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}

func (s *Service) issueToken(user types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
