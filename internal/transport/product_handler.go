package transport

import (
	"net/http"

	"safgati-admin/internal/domain"
	"safgati-admin/internal/middleware"
	"safgati-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole(editorRoles, h.logger))

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns every product, newest first
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "list products", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), &in)
	if err != nil {
		respondServiceError(w, h.logger, "create product", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update applies a partial update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.ProductPatch
	if err := middleware.DecodeJSON(w, r, &patch); err != nil {
		respondDecodeError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, &patch)
	if err != nil {
		respondServiceError(w, h.logger, "update product", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product; unknown ids succeed
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// Search filters by free text and category
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := h.catalog.SearchProducts(r.Context(), query.Get("q"), query.Get("category"))
	if err != nil {
		respondServiceError(w, h.logger, "search products", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}
