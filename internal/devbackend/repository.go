package devbackend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/revdup-client/internal/domain"
)

// ErrNotFound is returned when no account matches.
var ErrNotFound = errors.New("account not found")

// ErrDuplicate is returned when the identifier is already registered.
var ErrDuplicate = errors.New("identifier already registered")

// Account models a registered identity on the dev backend.
type Account struct {
	ID           string
	Identifier   string
	PasswordHash string
	Role         domain.Role
	Federated    bool
	CreatedAt    time.Time
}

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByIdentifier(ctx context.Context, identifier string) (*Account, error)
}

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryRepository returns an in-memory implementation, used when no
// Postgres DSN is configured.
func NewMemoryRepository() AccountRepository {
	return &memoryRepository{accounts: make(map[string]*Account)}
}

func (r *memoryRepository) Create(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Identifier]; exists {
		return ErrDuplicate
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = time.Now()

	stored := *account
	r.accounts[account.Identifier] = &stored
	return nil
}

func (r *memoryRepository) GetByIdentifier(_ context.Context, identifier string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[identifier]
	if !ok {
		return nil, ErrNotFound
	}
	found := *account
	return &found, nil
}
