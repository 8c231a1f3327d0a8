package auth

import (
	"context"
	"sync"
	"time"
)

type MemoryAccounts struct {
	mutex    sync.RWMutex
	accounts map[string]*Account
	lastID   int64
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		accounts: make(map[string]*Account),
	}
}

func (r *MemoryAccounts) Add(_ context.Context, username, passwordHash string, createdAt time.Time) (*Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.accounts[username]; ok {
		return nil, ErrAccountExists
	}

	r.lastID++
	account := &Account{
		ID:           r.lastID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	r.accounts[username] = account

	accountCopy := *account
	return &accountCopy, nil
}

func (r *MemoryAccounts) GetByUsername(_ context.Context, username string) (*Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	account, ok := r.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	accountCopy := *account
	return &accountCopy, nil
}

// Remove is used to simulate an account deleted after its token was issued.
func (r *MemoryAccounts) Remove(username string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.accounts, username)
}
