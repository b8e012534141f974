package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"safgati-admin/internal/auth"
	"safgati-admin/internal/config"
	"safgati-admin/internal/database"
	"safgati-admin/internal/localstore"
	custommiddleware "safgati-admin/internal/middleware"
	"safgati-admin/internal/repository"
	"safgati-admin/internal/service"
	"safgati-admin/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the resources the server runs on. DB is nil in local
// mode and Redis is nil when it is disabled.
type Dependencies struct {
	DB      *sqlx.DB
	Storage localstore.Storage
	Redis   *redis.Client
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	deps    Dependencies
	catalog service.CatalogService
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if deps.Storage == nil {
		return nil, errors.New("local storage is required")
	}

	mirror, err := localstore.NewMirror(ctx, deps.Storage, logger.Named("mirror"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local mirror: %w", err)
	}

	// Initialize catalog stores
	var primary, secondary service.CatalogStore
	switch cfg.Store.Mode {
	case config.ModeLocal:
		primary = mirror
	case config.ModeRemote:
		if deps.DB == nil {
			return nil, errors.New("remote mode requires a database")
		}
		primary = repository.NewRemoteStore(deps.DB)
		secondary = mirror
	default:
		return nil, fmt.Errorf("unknown store mode %q", cfg.Store.Mode)
	}

	var sessions repository.SessionRepository
	if deps.Redis != nil {
		sessions = repository.NewRedisSessionRepository(deps.Redis)
	} else {
		sessions = repository.NewStorageSessionRepository(deps.Storage)
	}

	provider, err := auth.NewAllowList(auth.DefaultAccounts())
	if err != nil {
		return nil, err
	}

	// Initialize services
	catalogService := service.NewCatalogService(primary, secondary, logger.Named("catalog"))
	authService := service.NewAuthService(
		provider,
		sessions,
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
		time.Duration(cfg.JWT.SessionTTL)*time.Hour,
		logger.Named("auth"),
	)

	s := &Server{
		config:  cfg,
		logger:  logger,
		deps:    deps,
		catalog: catalogService,
	}

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack(cfg.Server.TrustProxy) {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger.Named("http")))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", s.health)

	authMiddleware := custommiddleware.AuthMiddleware(authService, logger)

	clickLimit := custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.ClickRequests,
		Window:            time.Duration(cfg.RateLimit.ClickWindow) * time.Second,
		KeyPrefix:         "safgati_clicks",
	}
	var rateLimit func(http.Handler) http.Handler
	if deps.Redis != nil {
		rateLimit = custommiddleware.RateLimitMiddleware(deps.Redis, clickLimit, logger)
	} else {
		rateLimit = custommiddleware.NewLocalRateLimiter(clickLimit).Middleware(logger)
	}

	// Register routes
	transport.NewAuthHandler(authService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewProductHandler(catalogService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewClickHandler(catalogService, logger).RegisterRoutes(router, rateLimit)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// health reports whether the remote store answers. It never fails itself.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	remote := "unavailable"
	if s.deps.DB != nil {
		if err := s.catalog.CheckConnection(r.Context()); err == nil {
			remote = "connected"
		} else {
			s.logger.Debug("Remote store unreachable", zap.Error(err))
		}
	}

	response := map[string]interface{}{
		"status": "ok",
		"remote": remote,
		"mode":   s.config.Store.Mode,
	}
	if s.deps.DB != nil {
		response["database"] = database.Health(r.Context(), s.deps.DB)
	}

	custommiddleware.RespondWithJSON(w, http.StatusOK, response)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var errs []error
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := s.deps.Storage.Close(); err != nil {
		s.logger.Error("Failed to close local storage", zap.Error(err))
		errs = append(errs, err)
	}

	s.logger.Sync()
	return errors.Join(errs...)
}
