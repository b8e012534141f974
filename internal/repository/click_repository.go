package repository

import (
	"context"

	"safgati-admin/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ClickRepository appends affiliate click events
type ClickRepository interface {
	Create(ctx context.Context, event *domain.ClickEvent) error
}

type clickRepository struct {
	db *sqlx.DB
}

// NewClickRepository creates a new instance of ClickRepository
func NewClickRepository(db *sqlx.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, event *domain.ClickEvent) error {
	query := `
		INSERT INTO click_tracking (product_id, user_ip, user_agent, referrer)
		VALUES (:product_id, :user_ip, :user_agent, :referrer)
	`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return unavailable("record click", err)
	}
	return nil
}
