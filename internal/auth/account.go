package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountsRepo is the credential store. Usernames are matched exactly (case-sensitive).
type AccountsRepo interface {
	// Add returns ErrAccountExists if the username is taken.
	Add(ctx context.Context, username, passwordHash string, createdAt time.Time) (*Account, error)
	// GetByUsername returns ErrAccountNotFound if there is no such account.
	GetByUsername(ctx context.Context, username string) (*Account, error)
}
