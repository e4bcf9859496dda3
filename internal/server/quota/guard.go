// Package quota admits and charges character consumption against an
// account's limit. It is the only gate in front of billable calls.
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/metrics"
	"github.com/voxgate/voxgate/internal/server/models"
	"github.com/voxgate/voxgate/internal/server/repositories/accounts"
)

// Guard serializes Reserve..Commit spans per account with a Locker and
// charges usage through the store's conditional increment, so usage never
// passes the limit even if a lock lease is lost.
type Guard struct {
	accounts accounts.Repository
	locker   Locker
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewGuard(repo accounts.Repository, locker Locker, logger logging.Logger, m *metrics.Metrics) *Guard {
	return &Guard{
		accounts: repo,
		locker:   locker,
		logger:   logger.With("module", "quota"),
		metrics:  m,
	}
}

// Reservation holds the account lock between Reserve and Commit or Release.
type Reservation struct {
	AccountID string
	Cost      int64
	// Remaining is what the account had left when the reservation was made.
	Remaining int64

	lease Lease

	mu      sync.Mutex
	settled bool
}

func (r *Reservation) settle() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settled {
		return common.ErrAlreadySettled
	}
	r.settled = true
	return nil
}

// Reserve takes the account lock and checks, against freshly loaded
// counters, that n more characters fit. On rejection the lock is released
// and nothing changes.
func (g *Guard) Reserve(ctx context.Context, account *models.Account, n int64) (*Reservation, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: character cost must be positive", common.ErrValidation)
	}

	lease, err := g.locker.Lock(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("acquire quota lock: %w", err)
	}

	current, err := g.accounts.FindByID(ctx, account.ID)
	if err != nil {
		g.unlock(ctx, lease, account.ID)
		return nil, err
	}

	if current.CharactersUsed+n > current.CharactersLimit {
		g.unlock(ctx, lease, account.ID)
		g.metrics.RecordQuotaDecision("rejected")
		g.logger.Debug(ctx, "quota rejected", "account_id", account.ID, "cost", n,
			"used", current.CharactersUsed, "limit", current.CharactersLimit)
		return nil, common.ErrQuotaExceeded
	}

	g.metrics.RecordQuotaDecision("admitted")
	return &Reservation{
		AccountID: account.ID,
		Cost:      n,
		Remaining: Remaining(current),
		lease:     lease,
	}, nil
}

// Commit charges the reserved characters and releases the lock. It runs to
// completion even if ctx is canceled once the billable work is done. A
// reservation can be settled once; later calls return
// common.ErrAlreadySettled.
func (g *Guard) Commit(ctx context.Context, r *Reservation) (*models.Account, error) {
	if err := r.settle(); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	defer g.unlock(ctx, r.lease, r.AccountID)

	account, err := g.accounts.AddUsage(ctx, r.AccountID, r.Cost)
	if err != nil {
		if errors.Is(err, common.ErrQuotaExceeded) {
			g.logger.Warn(ctx, "conditional charge refused after admission", "account_id", r.AccountID, "cost", r.Cost)
		}
		return nil, fmt.Errorf("commit usage: %w", err)
	}

	g.metrics.RecordQuotaDecision("committed")
	g.metrics.RecordCharactersCommitted(r.Cost)
	return account, nil
}

// Release drops the reservation without charging.
func (g *Guard) Release(ctx context.Context, r *Reservation) error {
	if err := r.settle(); err != nil {
		return err
	}
	g.unlock(context.WithoutCancel(ctx), r.lease, r.AccountID)
	g.metrics.RecordQuotaDecision("released")
	return nil
}

func (g *Guard) unlock(ctx context.Context, lease Lease, accountID string) {
	if err := lease.Unlock(ctx); err != nil {
		g.logger.Warn(ctx, "quota unlock failed", "account_id", accountID, "error", err)
	}
}

// Remaining returns limit minus used, never below zero.
func Remaining(account *models.Account) int64 {
	return account.Remaining()
}
