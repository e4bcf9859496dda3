package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/config"
	"github.com/voxgate/voxgate/internal/server/models"
	"github.com/voxgate/voxgate/internal/server/repositories/repomanager"
)

const (
	minPasswordLength = 6
	maxAPIKeyAttempts = 5
)

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// AccountService registers and authenticates accounts and manages their
// credentials.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      *auth.PasswordHasher
	config      *config.Config
	logger      logging.Logger

	newAPIKey func() (string, error)
}

func NewAccountService(m repomanager.RepositoryManager, tokens *auth.TokenService, hasher *auth.PasswordHasher,
	cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		config:      cfg,
		logger:      logger.With("module", "accounts"),
		newAPIKey:   auth.GenerateAPIKey,
	}
}

func validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return common.NewValidationError(field, "Please enter a password with 6 or more characters")
	}
	if len(password) > auth.MaxPasswordBytes {
		return common.NewValidationError(field, "Password is too long")
	}
	return nil
}

func validateRegistration(email, name, password string) error {
	if !emailPattern.MatchString(email) {
		return common.NewValidationError("email", "Please include a valid email")
	}
	if name == "" {
		return common.NewValidationError("name", "Name is required")
	}
	return validatePassword("password", password)
}

// uniqueAPIKey draws keys until one is not in use.
func (s *AccountService) uniqueAPIKey(ctx context.Context) (string, error) {
	repo := s.repomanager.Accounts()

	for i := 0; i < maxAPIKeyAttempts; i++ {
		key, err := s.newAPIKey()
		if err != nil {
			return "", err
		}
		_, err = repo.FindByAPIKey(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return key, nil
		}
		if err != nil {
			return "", err
		}
		s.logger.Warn(ctx, "api key collision, retrying", "attempt", i+1)
	}
	return "", fmt.Errorf("%w: no unique api key after %d attempts", common.ErrorInternal, maxAPIKeyAttempts)
}

// Register creates a free-tier account and returns it with a session token.
func (s *AccountService) Register(ctx context.Context, email, name, password string) (*models.Account, string, error) {
	email = models.NormalizeEmail(email)
	if err := validateRegistration(email, name, password); err != nil {
		return nil, "", err
	}

	repo := s.repomanager.Accounts()

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", common.ErrDuplicateIdentity
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	key, err := s.uniqueAPIKey(ctx)
	if err != nil {
		return nil, "", err
	}

	account, err := repo.Create(ctx, &models.Account{
		Email:           email,
		Name:            name,
		PasswordHash:    hash,
		APIKey:          key,
		Tier:            models.TierFree,
		CharactersLimit: s.config.CharactersLimit(models.TierFree),
	})
	if err != nil {
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, token, nil
}

// Login verifies credentials. Unknown identities and wrong passwords both
// yield common.ErrInvalidCredentials after the same bcrypt work.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Account, string, error) {
	account, err := s.repomanager.Accounts().FindByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		s.hasher.Match(nil, password)
		return nil, "", common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.MatchPassword(account, password) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *AccountService) MatchPassword(account *models.Account, password string) bool {
	return s.hasher.Match(account.PasswordHash, password)
}

func (s *AccountService) Get(ctx context.Context, accountID string) (*models.Account, error) {
	return s.repomanager.Accounts().FindByID(ctx, accountID)
}

// RotateAPIKey replaces the account's API key. The old key stops working
// immediately.
func (s *AccountService) RotateAPIKey(ctx context.Context, accountID string) (*models.Account, error) {
	repo := s.repomanager.Accounts()

	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	key, err := s.uniqueAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	account.APIKey = key

	if err := repo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.Info(ctx, "api key rotated", "account_id", accountID)
	return account, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	repo := s.repomanager.Accounts()

	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.MatchPassword(account, current) {
		return common.ErrInvalidCredentials
	}
	if err := validatePassword("newPassword", next); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	account.PasswordHash = hash

	if err := repo.Save(ctx, account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	s.logger.Info(ctx, "password changed", "account_id", accountID)
	return nil
}
