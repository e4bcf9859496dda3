package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. It backs the server
// when no database DSN is configured and stands in for Postgres in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string
	byKey   map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
		byKey:   make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := account.Clone()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = models.NormalizeEmail(a.Email)
	if a.Tier == "" {
		a.Tier = models.TierFree
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[a.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byKey[a.APIKey]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byID[a.ID]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	a.CreatedAt = r.now().UTC()
	a.Version = 1

	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	r.byKey[a.APIKey] = a.ID

	return a.Clone(), nil
}

func (r *MemoryRepository) get(id string) (*models.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byEmail[models.NormalizeEmail(email)])
}

func (r *MemoryRepository) FindByAPIKey(ctx context.Context, key string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byKey[key])
}

func (r *MemoryRepository) Save(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[account.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if cur.Version != account.Version {
		return common.ErrConcurrentModification
	}

	email := models.NormalizeEmail(account.Email)
	if id, ok := r.byEmail[email]; ok && id != cur.ID {
		return common.ErrDuplicateIdentity
	}
	if id, ok := r.byKey[account.APIKey]; ok && id != cur.ID {
		return common.ErrDuplicateIdentity
	}

	delete(r.byEmail, cur.Email)
	delete(r.byKey, cur.APIKey)

	next := account.Clone()
	next.Email = email
	next.CharactersUsed = cur.CharactersUsed
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1

	r.byID[next.ID] = next
	r.byEmail[next.Email] = next.ID
	r.byKey[next.APIKey] = next.ID

	account.Version = next.Version
	return nil
}

func (r *MemoryRepository) AddUsage(ctx context.Context, id string, n int64) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if a.CharactersUsed+n > a.CharactersLimit {
		return nil, common.ErrQuotaExceeded
	}
	a.CharactersUsed += n

	return a.Clone(), nil
}
