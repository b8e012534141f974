package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/localstore"
	"safgati-admin/internal/repository"
	"safgati-admin/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// staticProvider accepts any password for the users it knows
type staticProvider map[string]*domain.User

func (p staticProvider) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if user, ok := p[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, service.ErrInvalidToken
}

func newTestAuth(t *testing.T) service.AuthService {
	t.Helper()
	provider := staticProvider{
		"admin@safgati.com":  {ID: "1", Email: "admin@safgati.com", Role: domain.RoleAdmin},
		"editor@safgati.com": {ID: "2", Email: "editor@safgati.com", Role: domain.RoleEditor},
	}
	sessions := repository.NewStorageSessionRepository(localstore.NewMemoryStorage())
	return service.NewAuthService(provider, sessions, testSecret, time.Hour, 24*time.Hour, zap.NewNop())
}

func loginToken(t *testing.T, auth service.AuthService, email string) (string, *domain.Session) {
	t.Helper()
	token, session, err := auth.Login(context.Background(), email, "any")
	require.NoError(t, err)
	return token, session
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Feature: affiliate-catalog, Property: protected endpoints reject missing tokens
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)
	middleware := AuthMiddleware(newTestAuth(t), zap.NewNop())
	handler := middleware(okHandler())

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			path := "/" + pathSuffix
			if path == "/" {
				path = "/test"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PATCH", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: affiliate-catalog, Property: expired tokens are rejected
func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	middleware := AuthMiddleware(newTestAuth(t), zap.NewNop())
	handler := middleware(okHandler())

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(userID string, role string) bool {
			claims := &service.Claims{
				UserID:    userID,
				Role:      role,
				SessionID: "expired-session",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
				},
			}
			tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AnyString(),
		gen.OneConstOf(domain.RoleAdmin, domain.RoleEditor),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_ValidSessionPopulatesContext(t *testing.T) {
	auth := newTestAuth(t)
	token, session := loginToken(t, auth, "editor@safgati.com")

	var gotUser, gotRole, gotSession string
	handler := AuthMiddleware(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		gotRole, _ = GetUserRole(r.Context())
		gotSession, _ = GetSessionID(r.Context())
		stored, ok := GetSession(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "editor@safgati.com", stored.Email)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", gotUser)
	assert.Equal(t, domain.RoleEditor, gotRole)
	assert.Equal(t, session.ID, gotSession)
}

func TestAuthMiddleware_LoggedOutSessionRejected(t *testing.T) {
	auth := newTestAuth(t)
	token, session := loginToken(t, auth, "admin@safgati.com")
	require.NoError(t, auth.Logout(context.Background(), session.ID))

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	AuthMiddleware(auth, zap.NewNop())(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Feature: affiliate-catalog, Property: malformed tokens are rejected
func TestProperty_InvalidTokenFormatRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	handler := AuthMiddleware(newTestAuth(t), zap.NewNop())(okHandler())

	properties.Property("malformed tokens are rejected", prop.ForAll(
		func(invalidToken string) bool {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: affiliate-catalog, Property: the Bearer scheme is required
func TestProperty_MissingBearerPrefixRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	auth := newTestAuth(t)
	token, _ := loginToken(t, auth, "admin@safgati.com")
	handler := AuthMiddleware(auth, zap.NewNop())(okHandler())

	properties.Property("tokens without the Bearer scheme are rejected", prop.ForAll(
		func(scheme string) bool {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", scheme+token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.OneConstOf("", "Basic ", "Token ", "bearer ", "Bearer"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		setRole  bool
		allowed  []string
		wantCode int
	}{
		{"admin allowed", domain.RoleAdmin, true, []string{domain.RoleAdmin, domain.RoleEditor}, http.StatusOK},
		{"editor allowed", domain.RoleEditor, true, []string{domain.RoleAdmin, domain.RoleEditor}, http.StatusOK},
		{"editor denied admin route", domain.RoleEditor, true, []string{domain.RoleAdmin}, http.StatusForbidden},
		{"no role in context", "", false, []string{domain.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.setRole {
				req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, tt.role))
			}
			w := httptest.NewRecorder()

			RequireRole(tt.allowed, zap.NewNop())(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/categories", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, domain.RoleEditor))
	w := httptest.NewRecorder()

	RequireAdmin(zap.NewNop())(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
