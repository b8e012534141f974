package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safgati-admin/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor used for allow-list password hashes
const BcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Provider authenticates console users. The allow-list is one implementation;
// a directory or database backed provider can replace it.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// Account is a user together with its plaintext password, used only to build an AllowList
type Account struct {
	User     domain.User
	Password string
}

// DefaultAccounts returns the two built-in console accounts
func DefaultAccounts() []Account {
	return []Account{
		{
			User: domain.User{
				ID:     "1",
				Email:  "admin@safgati.com",
				Name:   "المدير العام",
				Role:   domain.RoleAdmin,
				Avatar: "A",
			},
			Password: "admin123",
		},
		{
			User: domain.User{
				ID:     "2",
				Email:  "editor@safgati.com",
				Name:   "محرر المحتوى",
				Role:   domain.RoleEditor,
				Avatar: "E",
			},
			Password: "editor123",
		},
	}
}

// AllowList authenticates against a fixed set of accounts with bcrypt hashed passwords
type AllowList struct {
	users map[string]domain.User
}

// NewAllowList hashes the account passwords and indexes them by email
func NewAllowList(accounts []Account) (*AllowList, error) {
	users := make(map[string]domain.User, len(accounts))
	for _, account := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", account.User.Email, err)
		}
		user := account.User
		user.PasswordHash = string(hash)
		users[normalizeEmail(user.Email)] = user
	}
	return &AllowList{users: users}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate returns a copy of the matching user. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (a *AllowList) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := a.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
