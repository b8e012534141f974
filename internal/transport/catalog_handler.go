package transport

import (
	"net/http"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/middleware"
	"safgati-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest represents the add category payload
type CategoryRequest struct {
	Name string `json:"name"`
}

// CatalogHandler serves categories, stats and the dashboard summary
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers category, stats and dashboard routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole(editorRoles, h.logger))

		r.Get("/api/categories", h.ListCategories)
		r.Get("/api/stats", h.GetStats)
		r.Get("/api/dashboard", h.Dashboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Post("/api/categories", h.AddCategory)
			r.Put("/api/stats", h.UpdateStats)
		})
	})
}

// ListCategories returns the names, sentinel first
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.ListCategories(r.Context()))
}

// AddCategory stores a new category and returns the refreshed list
func (h *CatalogHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	names, err := h.catalog.AddCategory(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.logger, "add category", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, domain.WithSentinel(names))
}

// GetStats returns the stats snapshot
func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.GetStats(r.Context()))
}

// UpdateStats overwrites the stats snapshot
func (h *CatalogHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var stats domain.Stats
	if err := middleware.DecodeJSON(w, r, &stats); err != nil {
		respondDecodeError(w, err)
		return
	}

	saved, err := h.catalog.UpdateStats(r.Context(), &stats)
	if err != nil {
		respondServiceError(w, h.logger, "update stats", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, saved)
}

// Dashboard returns stats and the most recent products
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.catalog.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "load dashboard", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}
