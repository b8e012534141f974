package domain

import (
	"errors"
	"strings"
	"time"
)

// AllCategories is the display sentinel meaning "no category filter".
// It is never persisted as a real category.
const AllCategories = "الكل"

// DefaultRating is applied when a product is created without a rating.
const DefaultRating = 5.0

var (
	ErrProductNotFound = errors.New("product not found")
)

// Product represents an affiliate product in the catalog
type Product struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Category      string    `json:"category" db:"category"`
	Image         string    `json:"image" db:"image"`
	AffiliateLink string    `json:"affiliate_link" db:"affiliate_link"`
	Brand         string    `json:"brand" db:"brand"`
	Rating        float64   `json:"rating" db:"rating"`
	Reviews       int       `json:"reviews" db:"reviews"`
	InStock       bool      `json:"in_stock" db:"in_stock"`
	Featured      bool      `json:"featured" db:"featured"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ProductInput holds the fields supplied when creating a product.
type ProductInput struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"gte=0"`
	Category      string  `json:"category"`
	Image         string  `json:"image" validate:"omitempty,url"`
	AffiliateLink string  `json:"affiliate_link" validate:"required,url"`
	Brand         string  `json:"brand"`
	Rating        float64 `json:"rating" validate:"gte=1,lte=5"`
	Reviews       int     `json:"reviews" validate:"gte=0"`
	InStock       bool    `json:"in_stock"`
	Featured      bool    `json:"featured"`
}

// Normalize trims free-text fields and applies the default rating.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Image = strings.TrimSpace(in.Image)
	in.AffiliateLink = strings.TrimSpace(in.AffiliateLink)
	if in.Rating == 0 {
		in.Rating = DefaultRating
	}
}

// NewProduct materializes an input into a product with the given identity.
func (in *ProductInput) NewProduct(id string, now time.Time) *Product {
	return &Product{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Category:      in.Category,
		Image:         in.Image,
		AffiliateLink: in.AffiliateLink,
		Brand:         in.Brand,
		Rating:        in.Rating,
		Reviews:       in.Reviews,
		InStock:       in.InStock,
		Featured:      in.Featured,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string  `json:"name,omitempty" validate:"omitnil,min=1"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitnil,gte=0"`
	Category      *string  `json:"category,omitempty"`
	Image         *string  `json:"image,omitempty" validate:"omitempty,url"`
	AffiliateLink *string  `json:"affiliate_link,omitempty" validate:"omitnil,required,url"`
	Brand         *string  `json:"brand,omitempty"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitnil,gte=1,lte=5"`
	Reviews       *int     `json:"reviews,omitempty" validate:"omitnil,gte=0"`
	InStock       *bool    `json:"in_stock,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Image == nil && p.AffiliateLink == nil &&
		p.Brand == nil && p.Rating == nil && p.Reviews == nil &&
		p.InStock == nil && p.Featured == nil
}

// Normalize trims the set free-text fields so validation sees the stored values.
func (p *ProductPatch) Normalize() {
	for _, field := range []*string{p.Name, p.Category, p.Image, p.AffiliateLink, p.Brand} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// Apply copies the set fields onto product. Timestamps are the caller's concern.
func (p *ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Category != nil {
		product.Category = strings.TrimSpace(*p.Category)
	}
	if p.Image != nil {
		product.Image = strings.TrimSpace(*p.Image)
	}
	if p.AffiliateLink != nil {
		product.AffiliateLink = strings.TrimSpace(*p.AffiliateLink)
	}
	if p.Brand != nil {
		product.Brand = strings.TrimSpace(*p.Brand)
	}
	if p.Rating != nil {
		product.Rating = *p.Rating
	}
	if p.Reviews != nil {
		product.Reviews = *p.Reviews
	}
	if p.InStock != nil {
		product.InStock = *p.InStock
	}
	if p.Featured != nil {
		product.Featured = *p.Featured
	}
}

// Stats is the single aggregate store snapshot shown on the dashboard
type Stats struct {
	TotalProducts   int     `json:"total_products" db:"total_products" validate:"gte=0"`
	TotalSales      int     `json:"total_sales" db:"total_sales" validate:"gte=0"`
	TotalRevenue    float64 `json:"total_revenue" db:"total_revenue" validate:"gte=0"`
	MonthlyVisitors int     `json:"monthly_visitors" db:"monthly_visitors" validate:"gte=0"`
	ConversionRate  float64 `json:"conversion_rate" db:"conversion_rate" validate:"gte=0,lte=100"`
}

// DefaultStats is the snapshot reported when no store can answer.
func DefaultStats() *Stats {
	return &Stats{
		TotalProducts:   0,
		TotalSales:      0,
		TotalRevenue:    0,
		MonthlyVisitors: 1250,
		ConversionRate:  3.2,
	}
}

// DefaultCategories lists the built-in category names, without the sentinel.
func DefaultCategories() []string {
	return []string{
		"منتجات الأطفال",
		"الإلكترونيات",
		"المنزل والحديقة",
		"الملابس والأزياء",
		"الصحة والجمال",
		"الرياضة واللياقة",
		"الكتب والوسائط",
		"السيارات",
	}
}

// WithSentinel returns names prefixed with AllCategories.
func WithSentinel(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, AllCategories)
	for _, name := range names {
		if name == AllCategories {
			continue
		}
		out = append(out, name)
	}
	return out
}
