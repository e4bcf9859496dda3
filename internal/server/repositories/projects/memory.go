package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/models"
)

// MemoryRepository keeps projects in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*models.VoiceProject
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects: make(map[string]*models.VoiceProject),
		now:      time.Now,
	}
}

func clone(p *models.VoiceProject) *models.VoiceProject {
	c := *p
	c.Samples = append([]models.VoiceSample{}, p.Samples...)
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, project *models.VoiceProject) (*models.VoiceProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := clone(project)
	p.Samples = []models.VoiceSample{}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	p.CreatedAt = r.now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.projects[p.ID] = p

	return clone(p), nil
}

func (r *MemoryRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.VoiceProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.VoiceProject{}
	for _, p := range r.projects {
		if p.AccountID == accountID {
			result = append(result, clone(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryRepository) AddSample(ctx context.Context, projectID, accountID string, sample *models.VoiceSample) (*models.VoiceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok || p.AccountID != accountID {
		return nil, common.ErrorNotFound
	}

	s := *sample
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = r.now().UTC()

	p.Samples = append(p.Samples, s)
	p.UpdatedAt = s.CreatedAt

	return &s, nil
}
