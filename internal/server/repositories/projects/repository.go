// Package projects persists voice projects and the samples archived into them.
package projects

import (
	"context"

	"github.com/voxgate/voxgate/internal/server/models"
)

// Repository stores voice projects. Every lookup is scoped to the owning
// account: a project that belongs to someone else reads as not found.
type Repository interface {
	Create(ctx context.Context, project *models.VoiceProject) (*models.VoiceProject, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.VoiceProject, error)
	AddSample(ctx context.Context, projectID, accountID string, sample *models.VoiceSample) (*models.VoiceSample, error)
}
