package domain

// ClickEvent is a single affiliate-link click. It is written once and never read back.
type ClickEvent struct {
	ProductID string  `json:"product_id" db:"product_id" validate:"required"`
	UserIP    *string `json:"user_ip,omitempty" db:"user_ip"`
	UserAgent string  `json:"user_agent" db:"user_agent"`
	Referrer  string  `json:"referrer" db:"referrer"`
}

// ClickResult reports the outcome of a best-effort click write.
type ClickResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
