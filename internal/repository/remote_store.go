package repository

import (
	"context"

	"safgati-admin/internal/domain"

	"github.com/jmoiron/sqlx"
)

// RemoteStore presents the hosted database as one catalog store.
// Each method issues exactly one statement; there are no retries and no caching.
type RemoteStore struct {
	db         *sqlx.DB
	products   ProductRepository
	categories CategoryRepository
	stats      StatsRepository
	clicks     ClickRepository
}

// NewRemoteStore wires the four remote repositories over db
func NewRemoteStore(db *sqlx.DB) *RemoteStore {
	return &RemoteStore{
		db:         db,
		products:   NewProductRepository(db),
		categories: NewCategoryRepository(db),
		stats:      NewStatsRepository(db),
		clicks:     NewClickRepository(db),
	}
}

func (s *RemoteStore) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *RemoteStore) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	return s.products.Create(ctx, in)
}

func (s *RemoteStore) UpdateProduct(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error) {
	return s.products.Update(ctx, id, patch)
}

// DeleteProduct always acknowledges with true on success
func (s *RemoteStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	if err := s.products.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RemoteStore) SearchProducts(ctx context.Context, query, category string) ([]*domain.Product, error) {
	return s.products.Search(ctx, query, category)
}

func (s *RemoteStore) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories.List(ctx)
}

// AddCategory inserts name and returns the refreshed list
func (s *RemoteStore) AddCategory(ctx context.Context, name string) ([]string, error) {
	return s.categories.Create(ctx, name)
}

func (s *RemoteStore) GetStats(ctx context.Context) (*domain.Stats, error) {
	return s.stats.Get(ctx)
}

func (s *RemoteStore) UpdateStats(ctx context.Context, stats *domain.Stats) (*domain.Stats, error) {
	return s.stats.Upsert(ctx, stats)
}

func (s *RemoteStore) RecordClick(ctx context.Context, event *domain.ClickEvent) error {
	return s.clicks.Create(ctx, event)
}

// Ping checks that the database answers
func (s *RemoteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping database", err)
	}
	return nil
}
