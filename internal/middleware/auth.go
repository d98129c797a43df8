// Package middleware provides HTTP middleware for the entity layer.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Claims represents the JWT claims the entity layer accepts.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware provides bearer-token JWT authentication.
type AuthMiddleware struct {
	secret    []byte
	logger    *logger.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(secret []byte, log *logger.Logger, skipPaths []string) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &AuthMiddleware{
		secret:    secret,
		logger:    log,
		skipPaths: skip,
	}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondUnauthorized(w, r, "missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respondUnauthorized(w, r, "invalid Authorization header format")
			return
		}

		claims, err := m.validateToken(parts[1])
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("token validation failed")
			m.respondUnauthorized(w, r, "invalid token")
			return
		}
		if claims.UserID == "" {
			m.respondUnauthorized(w, r, "token has no user id")
			return
		}

		ctx := logger.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken validates an HMAC-signed JWT and returns its claims.
func (m *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (m *AuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})

	m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	}).Warn("authentication failed")
}

// GetUserID extracts the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	return logger.GetUserID(ctx)
}

// RequireUserID ensures a user ID is present in the context.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
