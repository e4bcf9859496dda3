package auth

import (
	"context"
	"errors"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/models"
)

// AccountFinder is the part of the credential store authentication reads.
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByAPIKey(ctx context.Context, key string) (*models.Account, error)
}

// Authenticator resolves request credentials to an account. It is shared by
// the HTTP middleware and the gRPC interceptor.
type Authenticator struct {
	tokens   *TokenService
	accounts AccountFinder
}

func NewAuthenticator(tokens *TokenService, accounts AccountFinder) *Authenticator {
	return &Authenticator{tokens: tokens, accounts: accounts}
}

// FromToken verifies a session token and loads its account. A valid token
// whose account no longer exists is common.ErrTokenInvalid.
func (a *Authenticator) FromToken(ctx context.Context, token string) (*models.Account, error) {
	id, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := a.accounts.FindByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FromAPIKey resolves an API key. Unknown keys are common.ErrTokenInvalid.
func (a *Authenticator) FromAPIKey(ctx context.Context, key string) (*models.Account, error) {
	if !LooksLikeAPIKey(key) {
		return nil, common.ErrTokenInvalid
	}

	account, err := a.accounts.FindByAPIKey(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if !EqualKeys(account.APIKey, key) {
		return nil, common.ErrTokenInvalid
	}
	return account, nil
}

type ctxKey string

const accountKey ctxKey = "account"

func WithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the authenticated account, if any.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}
