package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safgati-admin/internal/auth"
	"safgati-admin/internal/domain"
	"safgati-admin/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// AuthService defines the interface for console login sessions
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, session *domain.Session, err error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*domain.Session, error)
	ValidateToken(tokenString string) (*Claims, error)
	Authenticate(ctx context.Context, tokenString string) (*domain.Session, error)
}

// Claims represents the JWT claims
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type authService struct {
	provider     auth.Provider
	sessions     repository.SessionRepository
	jwtSecret    string
	accessExpiry time.Duration
	sessionTTL   time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	provider auth.Provider,
	sessions repository.SessionRepository,
	jwtSecret string,
	accessExpiry time.Duration,
	sessionTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		provider:     provider,
		sessions:     sessions,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
		sessionTTL:   sessionTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// Login authenticates through the provider, persists a session and returns a signed token for it
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Session, error) {
	user, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "", nil, auth.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	now := s.now().UTC()
	session := domain.NewSession(uuid.NewString(), user, now, s.sessionTTL)
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.generateAccessToken(session, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)
	return token, session, nil
}

// Logout removes the session. A session that is already gone is not an error.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Current returns the stored session record
func (s *authService) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authenticate validates the token and resolves the live session it names.
// A token whose session was logged out is rejected.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*domain.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.Current(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID || session.Role != claims.Role {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// generateAccessToken signs a token that never outlives its session
func (s *authService) generateAccessToken(session *domain.Session, now time.Time) (string, error) {
	expirationTime := now.Add(s.accessExpiry)
	if expirationTime.After(session.ExpiresAt) {
		expirationTime = session.ExpiresAt
	}

	claims := &Claims{
		UserID:    session.UserID,
		Role:      session.Role,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
