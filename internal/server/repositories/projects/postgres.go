package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/dbx"
	"github.com/voxgate/voxgate/internal/server/models"
)

// PostgresRepository implements project storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func dbError(err error) error {
	return fmt.Errorf("%w: db error: %w", common.ErrStorageUnavailable, err)
}

// Create inserts a project owned by project.AccountID.
func (r *PostgresRepository) Create(ctx context.Context, project *models.VoiceProject) (*models.VoiceProject, error) {
	p := *project
	p.Samples = nil
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO voice_projects (id, account_id, name, description, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.AccountID, p.Name, p.Description, p.IsPublic).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, dbError(err)
	}

	p.Samples = []models.VoiceSample{}
	return &p, nil
}

// ListByAccount returns the account's projects newest first, each with its
// samples in creation order.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.VoiceProject, error) {
	query := `
		SELECT p.id, p.name, p.description, p.is_public, p.created_at, p.updated_at,
		       s.id, s.text, s.audio_url, s.stability, s.similarity_boost, s.created_at
		FROM voice_projects p
		LEFT JOIN voice_samples s ON s.project_id = p.id
		WHERE p.account_id = $1
		ORDER BY p.created_at DESC, p.id, s.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	result := []*models.VoiceProject{}
	var cur *models.VoiceProject

	for rows.Next() {
		var (
			p          models.VoiceProject
			sampleID   sql.NullString
			text       sql.NullString
			audioURL   sql.NullString
			stability  sql.NullFloat64
			similarity sql.NullFloat64
			sampledAt  sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
			&sampleID, &text, &audioURL, &stability, &similarity, &sampledAt); err != nil {
			return nil, dbError(err)
		}

		if cur == nil || cur.ID != p.ID {
			p.AccountID = accountID
			p.Samples = []models.VoiceSample{}
			cur = &p
			result = append(result, cur)
		}

		if sampleID.Valid {
			cur.Samples = append(cur.Samples, models.VoiceSample{
				ID:              sampleID.String,
				Text:            text.String,
				AudioURL:        audioURL.String,
				Stability:       stability.Float64,
				SimilarityBoost: similarity.Float64,
				CreatedAt:       sampledAt.Time,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	return result, nil
}

// AddSample appends a sample to a project owned by accountID and bumps the
// project's updated_at. It issues two statements; run it inside a
// transaction to keep them together. Returns common.ErrorNotFound when the
// project does not exist or belongs to another account.
func (r *PostgresRepository) AddSample(ctx context.Context, projectID, accountID string, sample *models.VoiceSample) (*models.VoiceSample, error) {
	s := *sample
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	insert := `
		INSERT INTO voice_samples (id, project_id, text, audio_url, stability, similarity_boost)
		SELECT $1, p.id, $4, $5, $6, $7
		FROM voice_projects p
		WHERE p.id = $2 AND p.account_id = $3
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, insert, s.ID, projectID, accountID,
		s.Text, s.AudioURL, s.Stability, s.SimilarityBoost).Scan(&s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, dbError(err)
	}

	touch := `UPDATE voice_projects SET updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, touch, projectID); err != nil {
		return nil, dbError(err)
	}

	return &s, nil
}
