package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"safgati-admin/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// DocumentKey is the storage key holding the whole mirror document
const DocumentKey = "safgati_database"

var (
	ErrMalformedDocument = errors.New("local mirror document is malformed")
)

type document struct {
	Products   []*domain.Product `json:"products"`
	Categories []string          `json:"categories"`
	Stats      domain.Stats      `json:"stats"`
	Users      []*domain.User    `json:"users"`
}

// Mirror is the local fallback catalog. Every mutation is a whole-document
// read, modify, write against Storage. The mutex serializes that cycle inside
// one process only; two processes sharing the same storage can lose updates.
type Mirror struct {
	storage Storage
	logger  *zap.Logger
	mu      sync.Mutex
	now     func() time.Time
}

// NewMirror opens the mirror document, seeding it when absent.
// A stored document that does not decode yields ErrMalformedDocument.
func NewMirror(ctx context.Context, storage Storage, logger *zap.Logger) (*Mirror, error) {
	m := &Mirror{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok, err := storage.GetItem(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read local mirror document: %w", err)
	}
	if !ok {
		if err := m.save(ctx, m.seed()); err != nil {
			return nil, err
		}
		logger.Info("Seeded local mirror document", zap.String("key", DocumentKey))
		return m, nil
	}
	if _, err := decodeDocument(raw); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDocument(raw string) (*document, error) {
	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Products == nil {
		doc.Products = []*domain.Product{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	return &doc, nil
}

func (m *Mirror) seed() *document {
	now := m.now()
	seedID, err := uuid.NewV7()
	if err != nil {
		seedID = uuid.New()
	}
	return &document{
		Products: []*domain.Product{
			{
				ID:            seedID.String(),
				Name:          "زجاجة رضاعة طبيعية للأطفال من مومكوزي",
				Description:   "زجاجة رضاعة طبيعية بسعة 325 مل وعنق واسع لحفظ حليب الأم، مصنوعة من بلاستيك خال من مادة BPA ومتوافقة مع مبرد حليب الأم - 4 قطع",
				Price:         92.52,
				Category:      "منتجات الأطفال",
				Image:         "https://images-na.ssl-images-amazon.com/images/I/61YQJ9X9XJL._AC_SL1500_.jpg",
				AffiliateLink: "https://amzn.to/3UJvZ9H",
				Brand:         "Momcozy",
				Rating:        4.9,
				Reviews:       209,
				InStock:       true,
				Featured:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		Categories: domain.DefaultCategories(),
		Stats: domain.Stats{
			TotalProducts:   1,
			TotalSales:      0,
			TotalRevenue:    0,
			MonthlyVisitors: 1250,
			ConversionRate:  3.2,
		},
		Users: []*domain.User{
			{
				ID:        "1",
				Name:      "المدير العام",
				Email:     "admin@safgati.com",
				Role:      domain.RoleAdmin,
				LastLogin: &now,
			},
		},
	}
}

// load must be called with mu held
func (m *Mirror) load(ctx context.Context) (*document, error) {
	raw, ok, err := m.storage.GetItem(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read local mirror document: %w", err)
	}
	if !ok {
		doc := m.seed()
		if err := m.save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	return decodeDocument(raw)
}

// save must be called with mu held
func (m *Mirror) save(ctx context.Context, doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode local mirror document: %w", err)
	}
	if err := m.storage.SetItem(ctx, DocumentKey, string(data)); err != nil {
		return fmt.Errorf("failed to write local mirror document: %w", err)
	}
	return nil
}

func (m *Mirror) read(ctx context.Context) (*document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Mirror) mutate(ctx context.Context, fn func(doc *document) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return m.save(ctx, doc)
}

// newestFirst orders products by creation time, latest insert winning ties.
func newestFirst(products []*domain.Product) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for i := len(products) - 1; i >= 0; i-- {
		out = append(out, products[i])
	}
	slices.SortStableFunc(out, func(a, b *domain.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// ListProducts returns every product, newest first
func (m *Mirror) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	doc, err := m.read(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(doc.Products), nil
}

// CreateProduct appends a product with a time-ordered UUID and recounts stats
func (m *Mirror) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate product id: %w", err)
	}

	var created *domain.Product
	err = m.mutate(ctx, func(doc *document) error {
		created = in.NewProduct(id.String(), m.now())
		doc.Products = append(doc.Products, created)
		doc.Stats.TotalProducts = len(doc.Products)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProduct applies patch to the product with id
func (m *Mirror) UpdateProduct(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error) {
	var updated *domain.Product
	err := m.mutate(ctx, func(doc *document) error {
		for _, p := range doc.Products {
			if p.ID != id {
				continue
			}
			patch.Apply(p)
			next := m.now()
			if !next.After(p.UpdatedAt) {
				next = p.UpdatedAt.Add(time.Microsecond)
			}
			p.UpdatedAt = next
			updated = p
			return nil
		}
		return domain.ErrProductNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct removes the product with id. Missing ids are not an error.
func (m *Mirror) DeleteProduct(ctx context.Context, id string) (bool, error) {
	err := m.mutate(ctx, func(doc *document) error {
		doc.Products = slices.DeleteFunc(doc.Products, func(p *domain.Product) bool {
			return p.ID == id
		})
		doc.Stats.TotalProducts = len(doc.Products)
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SearchProducts filters by case-folded text over name, description and brand,
// and by exact category unless category is empty or the sentinel.
func (m *Mirror) SearchProducts(ctx context.Context, query, category string) ([]*domain.Product, error) {
	doc, err := m.read(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))
	filterCategory := category != "" && category != domain.AllCategories

	filtered := make([]*domain.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		if needle != "" &&
			!strings.Contains(fold.String(p.Name), needle) &&
			!strings.Contains(fold.String(p.Description), needle) &&
			!strings.Contains(fold.String(p.Brand), needle) {
			continue
		}
		if filterCategory && p.Category != category {
			continue
		}
		filtered = append(filtered, p)
	}
	return newestFirst(filtered), nil
}

// ListCategories returns the stored category names
func (m *Mirror) ListCategories(ctx context.Context) ([]string, error) {
	doc, err := m.read(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(doc.Categories), nil
}

// AddCategory stores name unless it already exists
func (m *Mirror) AddCategory(ctx context.Context, name string) ([]string, error) {
	var categories []string
	err := m.mutate(ctx, func(doc *document) error {
		if name != domain.AllCategories && !slices.Contains(doc.Categories, name) {
			doc.Categories = append(doc.Categories, name)
		}
		categories = slices.Clone(doc.Categories)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetStats returns the stored snapshot
func (m *Mirror) GetStats(ctx context.Context) (*domain.Stats, error) {
	doc, err := m.read(ctx)
	if err != nil {
		return nil, err
	}
	stats := doc.Stats
	return &stats, nil
}

// UpdateStats overwrites the snapshot
func (m *Mirror) UpdateStats(ctx context.Context, stats *domain.Stats) (*domain.Stats, error) {
	var saved domain.Stats
	err := m.mutate(ctx, func(doc *document) error {
		doc.Stats = *stats
		saved = doc.Stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// RecordClick accepts the event without persisting it; the document has no click log.
func (m *Mirror) RecordClick(ctx context.Context, event *domain.ClickEvent) error {
	m.logger.Debug("Click accepted by local mirror",
		zap.String("product_id", event.ProductID),
	)
	return nil
}

// Reset replaces the document with fresh seed content
func (m *Mirror) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, m.seed())
}

// Dump returns the raw stored document
func (m *Mirror) Dump(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok, err := m.storage.GetItem(ctx, DocumentKey)
	if err != nil {
		return "", fmt.Errorf("failed to read local mirror document: %w", err)
	}
	if !ok {
		return "", nil
	}
	return raw, nil
}
