package transport

import (
	"net"
	"net/http"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/middleware"
	"safgati-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClickHandler records affiliate link clicks from the public storefront
type ClickHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewClickHandler creates a new ClickHandler
func NewClickHandler(catalog service.CatalogService, logger *zap.Logger) *ClickHandler {
	return &ClickHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the public click route behind rateLimit
func (h *ClickHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/clicks", h.Record)
}

// Record always answers 200; the body says whether the click was stored
func (h *ClickHandler) Record(w http.ResponseWriter, r *http.Request) {
	var event domain.ClickEvent
	if err := middleware.DecodeJSON(w, r, &event); err != nil {
		h.logger.Debug("Click decode failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusOK, domain.ClickResult{Success: false, Error: "invalid request body"})
		return
	}

	if event.UserIP == nil {
		if ip := clientIP(r); ip != "" {
			event.UserIP = &ip
		}
	}
	if event.UserAgent == "" {
		event.UserAgent = r.UserAgent()
	}
	if event.Referrer == "" {
		event.Referrer = r.Referer()
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.RecordClick(r.Context(), &event))
}

// clientIP strips the port from RemoteAddr. Behind a trusted proxy chi's
// RealIP has already replaced it with the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
