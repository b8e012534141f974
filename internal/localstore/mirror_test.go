package localstore

import (
	"context"
	"testing"
	"time"

	"safgati-admin/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	mirror, err := NewMirror(context.Background(), NewMemoryStorage(), zap.NewNop())
	require.NoError(t, err)
	return mirror
}

func validInput(name string) *domain.ProductInput {
	return &domain.ProductInput{
		Name:          name,
		Description:   "A useful product",
		Price:         19.99,
		Category:      "الإلكترونيات",
		AffiliateLink: "https://amzn.to/example",
		Brand:         "Acme",
		Rating:        4,
		Reviews:       3,
		InStock:       true,
	}
}

func findProduct(products []*domain.Product, id string) *domain.Product {
	for _, p := range products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func TestNewMirror_SeedsDocument(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	products, err := mirror.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Momcozy", products[0].Brand)

	categories, err := mirror.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(), categories)
	assert.NotContains(t, categories, domain.AllCategories)

	stats, err := mirror.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1250, stats.MonthlyVisitors)
	assert.InDelta(t, 3.2, stats.ConversionRate, 0.0001)
}

func TestNewMirror_KeepsExistingDocument(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.SetItem(ctx, DocumentKey, `{"products":[],"categories":["كتب"],"stats":{"total_products":0},"users":[]}`))

	mirror, err := NewMirror(ctx, storage, zap.NewNop())
	require.NoError(t, err)

	products, err := mirror.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	categories, err := mirror.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"كتب"}, categories)
}

func TestNewMirror_MalformedDocument(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.SetItem(ctx, DocumentKey, `{"products": [`))

	_, err := NewMirror(ctx, storage, zap.NewNop())
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestMirror_CreateUpdatesTotalProducts(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	created, err := mirror.CreateProduct(ctx, validInput("Headphones"))
	require.NoError(t, err)

	stats, err := mirror.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)

	_, err = mirror.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)

	stats, err = mirror.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
}

func TestMirror_ListIsNewestFirst(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mirror.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := mirror.CreateProduct(ctx, validInput("First"))
	require.NoError(t, err)
	second, err := mirror.CreateProduct(ctx, validInput("Second"))
	require.NoError(t, err)

	products, err := mirror.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
}

func TestMirror_UpdateUnknownProduct(t *testing.T) {
	mirror := newTestMirror(t)
	price := 10.0

	_, err := mirror.UpdateProduct(context.Background(), "does-not-exist", &domain.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestMirror_UpdateTimestampStrictlyIncreases(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	frozen := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mirror.now = func() time.Time { return frozen }

	created, err := mirror.CreateProduct(ctx, validInput("Frozen clock"))
	require.NoError(t, err)

	price := 10.0
	updated, err := mirror.UpdateProduct(ctx, created.ID, &domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestMirror_SearchSeedCatalog(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	results, err := mirror.SearchProducts(ctx, "BPA", domain.AllCategories)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Momcozy", results[0].Brand)

	results, err = mirror.SearchProducts(ctx, "bpa", "")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = mirror.SearchProducts(ctx, "momcozy", "منتجات الأطفال")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = mirror.SearchProducts(ctx, "momcozy", "الإلكترونيات")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = mirror.SearchProducts(ctx, "zzz-no-match", domain.AllCategories)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMirror_AddCategoryIgnoresDuplicatesAndSentinel(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	categories, err := mirror.AddCategory(ctx, "ألعاب")
	require.NoError(t, err)
	assert.Contains(t, categories, "ألعاب")

	again, err := mirror.AddCategory(ctx, "ألعاب")
	require.NoError(t, err)
	assert.Equal(t, categories, again)

	withSentinel, err := mirror.AddCategory(ctx, domain.AllCategories)
	require.NoError(t, err)
	assert.NotContains(t, withSentinel, domain.AllCategories)
}

func TestMirror_UpdateStatsOverwrites(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	_, err := mirror.UpdateStats(ctx, &domain.Stats{TotalProducts: 7, TotalSales: 3, TotalRevenue: 120.5})
	require.NoError(t, err)

	stats, err := mirror.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.Stats{TotalProducts: 7, TotalSales: 3, TotalRevenue: 120.5}, stats)
}

func TestMirror_ResetRestoresSeed(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	_, err := mirror.CreateProduct(ctx, validInput("Extra"))
	require.NoError(t, err)
	require.NoError(t, mirror.Reset(ctx))

	products, err := mirror.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	raw, err := mirror.Dump(ctx)
	require.NoError(t, err)
	assert.Contains(t, raw, `"products"`)
}

// Created products appear in the listing with their fields, a new id and equal timestamps
func TestProperty_MirrorCreatePreservesAttributes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("create then list returns the input fields", prop.ForAll(
		func(name string, price float64, reviews int) bool {
			mirror := newTestMirror(t)
			ctx := context.Background()

			in := validInput(name)
			in.Price = price
			in.Reviews = reviews

			created, err := mirror.CreateProduct(ctx, in)
			if err != nil {
				t.Logf("FAIL: create: %v", err)
				return false
			}

			products, err := mirror.ListProducts(ctx)
			if err != nil {
				return false
			}
			found := findProduct(products, created.ID)
			if found == nil {
				t.Logf("FAIL: product %s not listed", created.ID)
				return false
			}

			return found.ID != "" &&
				found.Name == name &&
				found.Price == price &&
				found.Reviews == reviews &&
				found.AffiliateLink == in.AffiliateLink &&
				found.CreatedAt.Equal(found.UpdatedAt)
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,40}`),
		gen.Float64Range(0, 9999.99),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// A price patch changes only price and bumps updated_at
func TestProperty_MirrorUpdateChangesOnlyPatchedFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price patch leaves other fields untouched", prop.ForAll(
		func(newPrice float64) bool {
			mirror := newTestMirror(t)
			ctx := context.Background()

			created, err := mirror.CreateProduct(ctx, validInput("Patch target"))
			if err != nil {
				return false
			}

			if _, err := mirror.UpdateProduct(ctx, created.ID, &domain.ProductPatch{Price: &newPrice}); err != nil {
				t.Logf("FAIL: update: %v", err)
				return false
			}

			products, err := mirror.ListProducts(ctx)
			if err != nil {
				return false
			}
			after := findProduct(products, created.ID)
			if after == nil {
				return false
			}

			if !after.CreatedAt.Equal(created.CreatedAt) || !after.UpdatedAt.After(created.UpdatedAt) {
				t.Logf("FAIL: timestamps created=%v updated=%v", after.CreatedAt, after.UpdatedAt)
				return false
			}

			expected := *created
			expected.Price = newPrice
			expected.CreatedAt = after.CreatedAt
			expected.UpdatedAt = after.UpdatedAt

			return *after == expected
		},
		gen.Float64Range(0, 9999.99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Deleted ids never come back, and deleting twice succeeds
func TestProperty_MirrorDeleteIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("delete removes the product and can be repeated", prop.ForAll(
		func(name string) bool {
			mirror := newTestMirror(t)
			ctx := context.Background()

			created, err := mirror.CreateProduct(ctx, validInput(name))
			if err != nil {
				return false
			}

			if ok, err := mirror.DeleteProduct(ctx, created.ID); err != nil || !ok {
				return false
			}
			if ok, err := mirror.DeleteProduct(ctx, created.ID); err != nil || !ok {
				t.Logf("FAIL: second delete: %v", err)
				return false
			}

			products, err := mirror.ListProducts(ctx)
			if err != nil {
				return false
			}
			return findProduct(products, created.ID) == nil
		},
		gen.RegexMatch(`[A-Za-z ]{3,30}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
