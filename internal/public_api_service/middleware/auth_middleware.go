package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedAdminContextKey = ContextKey("authenticatedAdmin")

	// AdminRole is the role claim every admin token must carry.
	AdminRole = "admin"
)

// AdminClaims are the claims of an admin bearer token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthenticatedAdmin identifies the caller of an admin route.
type AuthenticatedAdmin struct {
	Subject   string
	ExpiresAt *time.Time
}

// AdminFromContext returns the admin placed by AdminAuthMiddleware.
func AdminFromContext(ctx context.Context) (AuthenticatedAdmin, bool) {
	a, ok := ctx.Value(AuthenticatedAdminContextKey).(AuthenticatedAdmin)
	return a, ok
}

// AdminAuthMiddleware accepts "Authorization: Bearer <jwt>" where the token is
// HS256-signed with secret, unexpired, and carries role=admin.
func AdminAuthMiddleware(secret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "Authorization header missing")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.WarnContext(ctx, "Invalid Authorization header format")
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := ParseAdminToken(key, tokenString)
			if err != nil {
				logger.WarnContext(ctx, "Token validation failed", "error", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			if claims.Role != AdminRole {
				logger.WarnContext(ctx, "Token lacks admin role", "subject", claims.Subject, "role", claims.Role)
				http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
				return
			}

			admin := AuthenticatedAdmin{Subject: claims.Subject}
			if claims.ExpiresAt != nil {
				exp := claims.ExpiresAt.Time
				admin.ExpiresAt = &exp
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, AuthenticatedAdminContextKey, admin)))
		})
	}
}

// ParseAdminToken verifies tokenString and returns its claims.
func ParseAdminToken(key []byte, tokenString string) (*AdminClaims, error) {
	if len(key) == 0 {
		return nil, errors.New("admin secret not configured")
	}
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}
	return claims, nil
}

// IssueAdminToken signs an admin token for subject valid for ttl.
func IssueAdminToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
