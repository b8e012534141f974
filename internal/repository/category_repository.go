package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository defines the interface for remote category data access
type CategoryRepository interface {
	Create(ctx context.Context, name string) ([]string, error)
	List(ctx context.Context) ([]string, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category name and returns the resulting name list in one
// statement. Existing names are left as they are.
func (r *categoryRepository) Create(ctx context.Context, name string) ([]string, error) {
	query := `
		WITH inserted AS (
			INSERT INTO categories (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
			RETURNING name
		)
		SELECT name FROM categories
		UNION
		SELECT name FROM inserted
		ORDER BY name ASC
	`

	names := []string{}
	if err := r.db.SelectContext(ctx, &names, query, name); err != nil {
		return nil, unavailable("create category", err)
	}
	return names, nil
}

// List retrieves all category names ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM categories ORDER BY name ASC`); err != nil {
		return nil, unavailable("list categories", err)
	}
	return names, nil
}
