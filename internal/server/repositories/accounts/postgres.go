package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/dbx"
	"github.com/voxgate/voxgate/internal/server/models"
)

const uniqueViolation = "23505"

const accountColumns = `id, email, password_hash, name, api_key, tier,
		characters_used, characters_limit, is_verified, created_at, version`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var tier string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.APIKey, &tier,
		&a.CharactersUsed, &a.CharactersLimit, &a.IsVerified, &a.CreatedAt, &a.Version)
	if err != nil {
		return nil, err
	}
	a.Tier = models.Tier(tier)
	return a, nil
}

// dbError classifies a driver error into the store's sentinels.
func dbError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrDuplicateIdentity, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: db error: %w", common.ErrStorageUnavailable, err)
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	a := account.Clone()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = models.NormalizeEmail(a.Email)
	if a.Tier == "" {
		a.Tier = models.TierFree
	}

	query :=
		`INSERT INTO accounts (id, email, password_hash, name, api_key, tier, characters_used, characters_limit, is_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, version`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.Name, a.APIKey, string(a.Tier),
		a.CharactersUsed, a.CharactersLimit, a.IsVerified).Scan(&a.CreatedAt, &a.Version)
	if err != nil {
		return nil, dbError(err)
	}

	return a, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbError(err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, "email = $1", models.NormalizeEmail(email))
}

func (r *PostgresRepository) FindByAPIKey(ctx context.Context, key string) (*models.Account, error) {
	return r.findOne(ctx, "api_key = $1", key)
}

// exists tells a missing row apart from a failed guard after an UPDATE
// matched nothing.
func (r *PostgresRepository) exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, dbError(err)
	}
	return found, nil
}

func (r *PostgresRepository) Save(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts
		 SET email = $2, password_hash = $3, name = $4, api_key = $5, tier = $6,
		     characters_limit = $7, is_verified = $8, version = version + 1
		 WHERE id = $1 AND version = $9
		 RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query,
		account.ID, models.NormalizeEmail(account.Email), account.PasswordHash, account.Name,
		account.APIKey, string(account.Tier), account.CharactersLimit, account.IsVerified,
		account.Version).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		found, exErr := r.exists(ctx, account.ID)
		if exErr != nil {
			return exErr
		}
		if !found {
			return common.ErrorNotFound
		}
		return common.ErrConcurrentModification
	}
	if err != nil {
		return dbError(err)
	}

	account.Version = version
	return nil
}

func (r *PostgresRepository) AddUsage(ctx context.Context, id string, n int64) (*models.Account, error) {
	query :=
		`UPDATE accounts
		 SET characters_used = characters_used + $2
		 WHERE id = $1 AND characters_used + $2 <= characters_limit
		 RETURNING ` + accountColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id, n))
	if errors.Is(err, sql.ErrNoRows) {
		found, exErr := r.exists(ctx, id)
		if exErr != nil {
			return nil, exErr
		}
		if !found {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrQuotaExceeded
	}
	if err != nil {
		return nil, dbError(err)
	}

	return a, nil
}
