package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safgati-admin/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrRemoteUnavailable wraps every failure of a remote call. Callers treat it
	// as the signal to fall back; the wrapped cause is kept for logging.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrRemoteUnavailable, op, err)
}

const productColumns = `id, name, description, price, category, image, affiliate_link, brand,
	rating, reviews, in_stock, featured, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepository defines the interface for remote product data access
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query, category string) ([]*domain.Product, error)
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// List retrieves all products, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, unavailable("list products", err)
	}
	return products, nil
}

// Create inserts a product; the database assigns the id and both timestamps
func (r *productRepository) Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, category, image, affiliate_link, brand, rating, reviews, in_stock, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	product := &domain.Product{}
	err := r.db.GetContext(
		ctx,
		product,
		query,
		in.Name,
		in.Description,
		in.Price,
		in.Category,
		in.Image,
		in.AffiliateLink,
		in.Brand,
		in.Rating,
		in.Reviews,
		in.InStock,
		in.Featured,
	)
	if err != nil {
		return nil, unavailable("create product", err)
	}
	return product, nil
}

// patchAssignments builds the SET list for the fields present in patch.
// Placeholders start at $2; $1 is the product id.
func patchAssignments(patch *domain.ProductPatch) ([]string, []interface{}) {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
	}

	if patch.Name != nil {
		add("name", strings.TrimSpace(*patch.Name))
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Category != nil {
		add("category", strings.TrimSpace(*patch.Category))
	}
	if patch.Image != nil {
		add("image", strings.TrimSpace(*patch.Image))
	}
	if patch.AffiliateLink != nil {
		add("affiliate_link", strings.TrimSpace(*patch.AffiliateLink))
	}
	if patch.Brand != nil {
		add("brand", strings.TrimSpace(*patch.Brand))
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.Reviews != nil {
		add("reviews", *patch.Reviews)
	}
	if patch.InStock != nil {
		add("in_stock", *patch.InStock)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}

	// keep updated_at strictly increasing even when two updates share a clock tick
	sets = append(sets, "updated_at = GREATEST(now(), updated_at + interval '1 microsecond')")
	return sets, args
}

// Update applies patch to the product with id. A missing id surfaces as
// ErrRemoteUnavailable like any other failed call.
func (r *productRepository) Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error) {
	sets, args := patchAssignments(patch)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1 RETURNING %s`, strings.Join(sets, ", "), productColumns)

	product := &domain.Product{}
	if err := r.db.GetContext(ctx, product, query, append([]interface{}{id}, args...)...); err != nil {
		return nil, unavailable("update product", err)
	}
	return product, nil
}

// Delete removes a product. Deleting a missing id is not an error.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return unavailable("delete product", err)
	}
	return nil
}

// Search matches text case-insensitively against name, description and brand,
// and filters by exact category unless category is empty or the sentinel
func (r *productRepository) Search(ctx context.Context, query, category string) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	if text := strings.TrimSpace(query); text != "" {
		args = append(args, "%"+likeEscaper.Replace(text)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR brand ILIKE $%d)", n, n, n))
	}

	if category != "" && category != domain.AllCategories {
		args = append(args, category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	searchQuery := `SELECT ` + productColumns + ` FROM products` + whereClause + ` ORDER BY created_at DESC`

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, searchQuery, args...); err != nil {
		return nil, unavailable("search products", err)
	}
	return products, nil
}
