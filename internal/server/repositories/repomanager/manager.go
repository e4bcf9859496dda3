// Package repomanager wires repository implementations to a storage backend.
package repomanager

import (
	"context"

	"github.com/voxgate/voxgate/internal/server/repositories/accounts"
	"github.com/voxgate/voxgate/internal/server/repositories/projects"
)

// Repositories is the set of repositories bound to one connection or
// transaction.
type Repositories struct {
	Accounts accounts.Repository
	Projects projects.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Accounts() accounts.Repository
	Projects() projects.Repository
	// InTx runs fn with repositories bound to a single transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}
