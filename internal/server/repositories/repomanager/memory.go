package repomanager

import (
	"context"

	"github.com/voxgate/voxgate/internal/server/repositories/accounts"
	"github.com/voxgate/voxgate/internal/server/repositories/projects"
)

// MemoryRepositoryManager serves process-local repositories. Each memory
// repository is individually atomic; InTx does not roll back partial work.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
	projects *projects.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		projects: projects.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Projects() projects.Repository { return m.projects }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return fn(ctx, Repositories{Accounts: m.accounts, Projects: m.projects})
}

func (m *MemoryRepositoryManager) Close() error { return nil }
