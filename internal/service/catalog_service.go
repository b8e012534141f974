package service

import (
	"context"
	"fmt"
	"strings"

	"safgati-admin/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RecentProductsLimit is the number of products shown on the dashboard card
const RecentProductsLimit = 5

// CatalogStore is one tier of catalog storage. The remote database and the
// local mirror both implement it.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	SearchProducts(ctx context.Context, query, category string) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) ([]string, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	UpdateStats(ctx context.Context, stats *domain.Stats) (*domain.Stats, error)
	RecordClick(ctx context.Context, event *domain.ClickEvent) error
}

// Pinger is implemented by stores that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dashboard is the landing page summary
type Dashboard struct {
	Stats          *domain.Stats     `json:"stats"`
	RecentProducts []*domain.Product `json:"recent_products"`
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	SearchProducts(ctx context.Context, query, category string) ([]*domain.Product, error)
	ListCategories(ctx context.Context) []string
	AddCategory(ctx context.Context, name string) ([]string, error)
	GetStats(ctx context.Context) *domain.Stats
	UpdateStats(ctx context.Context, stats *domain.Stats) (*domain.Stats, error)
	RecordClick(ctx context.Context, event *domain.ClickEvent) domain.ClickResult
	RecentProducts(ctx context.Context, n int) ([]*domain.Product, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	CheckConnection(ctx context.Context) error
}

type catalogService struct {
	primary   CatalogStore
	secondary CatalogStore
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService creates the catalog facade. secondary may be nil, in which
// case primary errors are returned to the caller.
func NewCatalogService(primary, secondary CatalogStore, logger *zap.Logger) CatalogService {
	return &catalogService{
		primary:   primary,
		secondary: secondary,
		validate:  validator.New(),
		logger:    logger,
	}
}

// withFallback runs call against the primary store and, when it fails and a
// secondary exists, runs the same call against the secondary.
func withFallback[T any](s *catalogService, op string, call func(CatalogStore) (T, error)) (T, error) {
	result, err := call(s.primary)
	if err == nil || s.secondary == nil {
		return result, err
	}

	s.logger.Warn("Primary store failed, using local mirror",
		zap.String("operation", op),
		zap.Error(err),
	)
	return call(s.secondary)
}

// checkCategory rejects the filter sentinel as a product's category
func checkCategory(category string) error {
	if category == domain.AllCategories {
		return &ValidationError{Field: "category", Message: "Reserved category name"}
	}
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return withFallback(s, "list products", func(store CatalogStore) ([]*domain.Product, error) {
		return store.ListProducts(ctx)
	})
}

// CreateProduct normalizes and validates in before any store sees it
func (s *catalogService) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	in.Normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, newValidationError(err)
	}
	if err := checkCategory(in.Category); err != nil {
		return nil, err
	}

	product, err := withFallback(s, "create product", func(store CatalogStore) (*domain.Product, error) {
		return store.CreateProduct(ctx, in)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
	)
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return nil, &ValidationError{Field: "body", Message: "No fields to update"}
	}
	patch.Normalize()
	if err := s.validate.Struct(patch); err != nil {
		return nil, newValidationError(err)
	}
	if patch.Category != nil {
		if err := checkCategory(*patch.Category); err != nil {
			return nil, err
		}
	}

	return withFallback(s, "update product", func(store CatalogStore) (*domain.Product, error) {
		return store.UpdateProduct(ctx, id, patch)
	})
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return withFallback(s, "delete product", func(store CatalogStore) (bool, error) {
		return store.DeleteProduct(ctx, id)
	})
}

func (s *catalogService) SearchProducts(ctx context.Context, query, category string) ([]*domain.Product, error) {
	return withFallback(s, "search products", func(store CatalogStore) ([]*domain.Product, error) {
		return store.SearchProducts(ctx, query, category)
	})
}

// ListCategories always starts with the sentinel and never fails. When the
// primary store cannot answer the built-in list is returned.
func (s *catalogService) ListCategories(ctx context.Context) []string {
	names, err := s.primary.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("Failed to list categories, using defaults", zap.Error(err))
		names = domain.DefaultCategories()
	}
	return domain.WithSentinel(names)
}

func (s *catalogService) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "This field is required"}
	}
	if name == domain.AllCategories {
		return nil, &ValidationError{Field: "name", Message: "Reserved category name"}
	}

	return withFallback(s, "add category", func(store CatalogStore) ([]string, error) {
		return store.AddCategory(ctx, name)
	})
}

// GetStats never fails; the default snapshot stands in for an unreachable store
func (s *catalogService) GetStats(ctx context.Context) *domain.Stats {
	stats, err := s.primary.GetStats(ctx)
	if err != nil {
		s.logger.Warn("Failed to load stats, using defaults", zap.Error(err))
		return domain.DefaultStats()
	}
	return stats
}

func (s *catalogService) UpdateStats(ctx context.Context, stats *domain.Stats) (*domain.Stats, error) {
	if err := s.validate.Struct(stats); err != nil {
		return nil, newValidationError(err)
	}

	return withFallback(s, "update stats", func(store CatalogStore) (*domain.Stats, error) {
		return store.UpdateStats(ctx, stats)
	})
}

// RecordClick is best effort. Failures are reported in the result, never returned.
func (s *catalogService) RecordClick(ctx context.Context, event *domain.ClickEvent) domain.ClickResult {
	if err := s.validate.Struct(event); err != nil {
		return domain.ClickResult{Success: false, Error: newValidationError(err).Error()}
	}

	if err := s.primary.RecordClick(ctx, event); err != nil {
		s.logger.Warn("Failed to record click",
			zap.String("product_id", event.ProductID),
			zap.Error(err),
		)
		return domain.ClickResult{Success: false, Error: err.Error()}
	}
	return domain.ClickResult{Success: true}
}

// RecentProducts returns at most n products, newest first
func (s *catalogService) RecentProducts(ctx context.Context, n int) ([]*domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(products) > n {
		products = products[:n]
	}
	return products, nil
}

func (s *catalogService) Dashboard(ctx context.Context) (*Dashboard, error) {
	recent, err := s.RecentProducts(ctx, RecentProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent products: %w", err)
	}
	return &Dashboard{
		Stats:          s.GetStats(ctx),
		RecentProducts: recent,
	}, nil
}

// CheckConnection pings the primary store when it supports it
func (s *catalogService) CheckConnection(ctx context.Context) error {
	pinger, ok := s.primary.(Pinger)
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}
