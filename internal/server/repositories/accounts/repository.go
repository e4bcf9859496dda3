// Package accounts persists credential records and their usage counters.
package accounts

import (
	"context"

	"github.com/voxgate/voxgate/internal/server/models"
)

// Repository is the credential store.
//
// Save updates credential fields only and is guarded by Account.Version.
// Usage counters change exclusively through AddUsage, which admits the
// increment only while it keeps CharactersUsed within CharactersLimit.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByAPIKey(ctx context.Context, key string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	AddUsage(ctx context.Context, id string, n int64) (*models.Account, error)
}
