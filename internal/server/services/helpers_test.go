package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/config"
	"github.com/voxgate/voxgate/internal/server/models"
	"github.com/voxgate/voxgate/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newAccountService(t *testing.T, m repomanager.RepositoryManager) *AccountService {
	t.Helper()
	cfg := testConfig()
	tokens, err := auth.NewTokenService(cfg.SecretKey, time.Hour)
	require.NoError(t, err)
	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	require.NoError(t, err)
	return NewAccountService(m, tokens, hasher, cfg, logging.Discard())
}

func registerAccount(t *testing.T, s *AccountService, email string) *models.Account {
	t.Helper()
	a, _, err := s.Register(context.Background(), email, "Test User", "secret123")
	require.NoError(t, err)
	return a
}
