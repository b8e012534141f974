package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
	SessionIDKey contextKey = "session_id"
	SessionKey   contextKey = "session"
)

// Authenticator resolves a bearer token to its live session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware validates bearer tokens against stored sessions and puts the
// session into the request context
func AuthMiddleware(authenticator Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || scheme != "Bearer" || token == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			session, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				case errors.Is(err, service.ErrInvalidToken):
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				default:
					logger.Error("Session lookup failed", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, session.Role)
			ctx = context.WithValue(ctx, SessionIDKey, session.ID)
			ctx = context.WithValue(ctx, SessionKey, session)

			logger.Debug("User authenticated",
				zap.String("user_id", session.UserID),
				zap.String("role", session.Role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

// GetSessionID extracts the session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}

// GetSession extracts the authenticated session from request context
func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}
