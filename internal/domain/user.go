package domain

import "time"

// Role names recognized by the console
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents a console account
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Avatar       string     `json:"avatar,omitempty"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Session is the persisted login record. It never carries a password.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession builds a session record for user with the password stripped.
func NewSession(id string, user *User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Avatar:    user.Avatar,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
