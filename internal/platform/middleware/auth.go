package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"railguard/pkg/domain"
	"railguard/pkg/requestcontext"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator. The
// subject is a Stellar account address; Role distinguishes staking owners
// from borrowing agents.
type TokenClaims struct {
	Account string
	Role    string
}

// Token roles.
const (
	RoleOwner = "owner"
	RoleAgent = "agent"
)

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

// RequireAuth validates the bearer token and injects the authenticated
// account into the request context under the role the token carries.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			switch claims.Role {
			case RoleAgent:
				agent, err := domain.ParseAgentID(claims.Account)
				if err != nil {
					writeUnauthorized(w, "Invalid account in token")
					return
				}
				ctx = requestcontext.WithAgent(ctx, agent)
			default:
				owner, err := domain.ParseOwnerID(claims.Account)
				if err != nil {
					writeUnauthorized(w, "Invalid account in token")
					return
				}
				ctx = requestcontext.WithOwner(ctx, owner)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
