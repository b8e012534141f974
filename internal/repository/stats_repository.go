package repository

import (
	"context"

	"safgati-admin/internal/domain"

	"github.com/jmoiron/sqlx"
)

// statsRowID pins the single stats row
const statsRowID = 1

// StatsRepository reads and overwrites the single aggregate stats row
type StatsRepository interface {
	Get(ctx context.Context) (*domain.Stats, error)
	Upsert(ctx context.Context, stats *domain.Stats) (*domain.Stats, error)
}

type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository
func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Get(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT total_products, total_sales, total_revenue, monthly_visitors, conversion_rate
		FROM stats
		WHERE id = $1
	`

	stats := &domain.Stats{}
	if err := r.db.GetContext(ctx, stats, query, statsRowID); err != nil {
		return nil, unavailable("get stats", err)
	}
	return stats, nil
}

func (r *statsRepository) Upsert(ctx context.Context, stats *domain.Stats) (*domain.Stats, error) {
	query := `
		INSERT INTO stats (id, total_products, total_sales, total_revenue, monthly_visitors, conversion_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			total_products = EXCLUDED.total_products,
			total_sales = EXCLUDED.total_sales,
			total_revenue = EXCLUDED.total_revenue,
			monthly_visitors = EXCLUDED.monthly_visitors,
			conversion_rate = EXCLUDED.conversion_rate,
			updated_at = EXCLUDED.updated_at
		RETURNING total_products, total_sales, total_revenue, monthly_visitors, conversion_rate
	`

	saved := &domain.Stats{}
	err := r.db.GetContext(
		ctx,
		saved,
		query,
		statsRowID,
		stats.TotalProducts,
		stats.TotalSales,
		stats.TotalRevenue,
		stats.MonthlyVisitors,
		stats.ConversionRate,
	)
	if err != nil {
		return nil, unavailable("update stats", err)
	}
	return saved, nil
}
