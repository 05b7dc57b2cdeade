// Package middleware provides HTTP middleware for admin authentication.
package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// authMethodKey is the context key for storing how the caller authenticated.
const authMethodKey ContextKey = "authMethod"

// Method records how a request was authenticated.
type Method string

// Authentication methods
const (
	MethodSession Method = "session"
	MethodAPIKey  Method = "api-key"
	// MethodOpen marks requests let through because authentication is switched off
	MethodOpen Method = "open"
)

// APIKeyHeader carries the static key accepted on API-key protected routes
const APIKeyHeader = "x-api-key"

// TokenValidator checks a session token.
type TokenValidator interface {
	ValidateToken(tokenString string) error
}

// Options configures the auth middleware.
type Options struct {
	// Cookie is the name of the session cookie
	Cookie string
	// APIKey, when set, is accepted in the x-api-key header instead of a session
	APIKey string
	// Open lets every request through; used when no admin password is configured
	Open bool
}

// AuthMiddleware creates middleware that requires a valid session cookie or API key.
func AuthMiddleware(validator TokenValidator, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, ok := authenticate(r, validator, opts)
			if !ok {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), authMethodKey, method)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, validator TokenValidator, opts Options) (Method, bool) {
	if opts.Open {
		return MethodOpen, true
	}

	if opts.APIKey != "" {
		if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(opts.APIKey)) == 1 {
				return MethodAPIKey, true
			}
			return "", false
		}
	}

	if validator == nil || opts.Cookie == "" {
		return "", false
	}
	cookie, err := r.Cookie(opts.Cookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if err := validator.ValidateToken(cookie.Value); err != nil {
		return "", false
	}
	return MethodSession, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "Unauthorized",
		"message": "authentication required",
	})
}

// GetAuthMethod extracts how the caller authenticated from the request context.
func GetAuthMethod(r *http.Request) (Method, bool) {
	method, ok := r.Context().Value(authMethodKey).(Method)
	return method, ok
}
