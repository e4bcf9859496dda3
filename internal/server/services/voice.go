package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/metrics"
	"github.com/voxgate/voxgate/internal/server/models"
	"github.com/voxgate/voxgate/internal/server/quota"
	"github.com/voxgate/voxgate/internal/server/repositories/repomanager"
	"github.com/voxgate/voxgate/internal/server/storage"
	"github.com/voxgate/voxgate/internal/server/tts"
)

type GenerateRequest struct {
	Text      string
	Voice     string
	Language  string
	ProjectID string
}

type GenerateResult struct {
	Audio               []byte
	ContentType         string
	CharactersUsed      int64
	CharactersRemaining int64
	// Sample is set when the audio was archived into a project.
	Sample *models.VoiceSample
}

// VoiceService runs metered synthesis and manages voice projects.
type VoiceService struct {
	repomanager repomanager.RepositoryManager
	guard       *quota.Guard
	synth       tts.Synthesizer
	archive     storage.AudioArchive
	metrics     *metrics.Metrics
	logger      logging.Logger
	timeout     time.Duration
}

func NewVoiceService(m repomanager.RepositoryManager, guard *quota.Guard, synth tts.Synthesizer,
	archive storage.AudioArchive, mt *metrics.Metrics, logger logging.Logger, timeout time.Duration) *VoiceService {
	return &VoiceService{
		repomanager: m,
		guard:       guard,
		synth:       synth,
		archive:     archive,
		metrics:     mt,
		logger:      logger.With("module", "voice"),
		timeout:     timeout,
	}
}

// CharacterCost is the number of Unicode code points in text.
func CharacterCost(text string) int64 {
	return int64(utf8.RuneCountInString(text))
}

func validateGenerate(req GenerateRequest) error {
	switch {
	case req.Text == "":
		return common.NewValidationError("text", "Text is required")
	case strings.TrimSpace(req.Voice) == "":
		return common.NewValidationError("voice", "Voice is required")
	case strings.TrimSpace(req.Language) == "":
		return common.NewValidationError("language", "Language is required")
	}
	return nil
}

// Generate synthesizes req.Text for account. The characters are reserved
// before the provider is called and charged only after it succeeds; on any
// provider failure the reservation is released and nothing is charged.
func (s *VoiceService) Generate(ctx context.Context, account *models.Account, req GenerateRequest) (*GenerateResult, error) {
	if err := validateGenerate(req); err != nil {
		return nil, err
	}
	cost := CharacterCost(req.Text)

	reservation, err := s.guard.Reserve(ctx, account, cost)
	if err != nil {
		return nil, err
	}

	synthCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	audio, err := s.synth.Synthesize(synthCtx, tts.Request{
		Text:         req.Text,
		VoiceID:      req.Voice,
		LanguageCode: req.Language,
	})
	cancel()

	if err != nil {
		s.metrics.RecordSynthesis("error", time.Since(start).Seconds())
		if relErr := s.guard.Release(ctx, reservation); relErr != nil {
			s.logger.Error(ctx, "release reservation", "account_id", account.ID, "error", relErr)
		}
		s.logger.Warn(ctx, "synthesis failed", "account_id", account.ID, "error", err)
		return nil, err
	}
	s.metrics.RecordSynthesis("success", time.Since(start).Seconds())

	updated, err := s.guard.Commit(ctx, reservation)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Audio:               audio.Audio,
		ContentType:         audio.ContentType,
		CharactersUsed:      updated.CharactersUsed,
		CharactersRemaining: updated.Remaining(),
	}

	if req.ProjectID != "" {
		result.Sample = s.archiveSample(ctx, account.ID, req, audio)
	}

	return result, nil
}

// archiveSample stores the audio in the caller's project. The request has
// already been charged, so failures here are logged and not returned.
func (s *VoiceService) archiveSample(ctx context.Context, accountID string, req GenerateRequest, audio *tts.Result) *models.VoiceSample {
	if _, err := uuid.Parse(req.ProjectID); err != nil {
		return nil
	}

	url, err := s.archive.Put(ctx, accountID, audio.Audio, audio.ContentType)
	if err != nil {
		s.logger.Error(ctx, "archive sample audio", "account_id", accountID, "project_id", req.ProjectID, "error", err)
		return nil
	}

	var sample *models.VoiceSample
	err = s.repomanager.InTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		var err error
		sample, err = repos.Projects.AddSample(ctx, req.ProjectID, accountID, &models.VoiceSample{
			Text:            req.Text,
			AudioURL:        url,
			Stability:       models.DefaultStability,
			SimilarityBoost: models.DefaultSimilarityBoost,
		})
		return err
	})
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case err != nil:
		s.logger.Error(ctx, "append project sample", "account_id", accountID, "project_id", req.ProjectID, "error", err)
		return nil
	}
	return sample
}

// Usage returns the account with freshly loaded counters.
func (s *VoiceService) Usage(ctx context.Context, accountID string) (*models.Account, error) {
	return s.repomanager.Accounts().FindByID(ctx, accountID)
}

func (s *VoiceService) ListProjects(ctx context.Context, accountID string) ([]*models.VoiceProject, error) {
	return s.repomanager.Projects().ListByAccount(ctx, accountID)
}

func (s *VoiceService) CreateProject(ctx context.Context, accountID, name, description string) (*models.VoiceProject, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("name", "Project name is required")
	}
	return s.repomanager.Projects().Create(ctx, &models.VoiceProject{
		AccountID:   accountID,
		Name:        name,
		Description: description,
	})
}
