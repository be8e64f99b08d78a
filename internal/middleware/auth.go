package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/model"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenIssuer
}

// RequireAccess authenticates requests carrying an access token.
func RequireAccess(cfg AuthConfig) func(http.Handler) http.Handler {
	return bearer(cfg, model.TokenTypeAccess)
}

// RequireRefresh authenticates requests carrying a refresh token.
func RequireRefresh(cfg AuthConfig) func(http.Handler) http.Handler {
	return bearer(cfg, model.TokenTypeRefresh)
}

// bearer extracts the token from the Authorization header, validates it as
// tokenType and injects the auth context into the request.
func bearer(cfg AuthConfig, tokenType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w, "Token de autorización requerido")
				return
			}

			claims, err := cfg.Tokens.Parse(token, tokenType)
			if err != nil {
				reason := "invalid_token"
				message := "Token inválido"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					reason = "expired_token"
					message = "Token expirado"
				case errors.Is(err, auth.ErrWrongTokenType):
					reason = "wrong_token_type"
				}
				logAuthFailure(cfg.Logger, r, reason)
				writeAuthError(w, message)
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), claims.AuthContext())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
