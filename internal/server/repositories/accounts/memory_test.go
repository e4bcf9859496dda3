package accounts

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/models"
)

func seed(t *testing.T, r *MemoryRepository, email, key string, limit int64) *models.Account {
	t.Helper()
	a, err := r.Create(context.Background(), &models.Account{
		Email:           email,
		Name:            "Test",
		PasswordHash:    []byte("hash"),
		APIKey:          key,
		CharactersLimit: limit,
	})
	require.NoError(t, err)
	return a
}

func TestMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a := seed(t, r, "  Alice@Example.com", "vg_1", 100)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.Equal(t, models.TierFree, a.Tier)
	assert.Equal(t, int64(1), a.Version)

	byEmail, err := r.FindByEmail(ctx, "ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	byKey, err := r.FindByAPIKey(ctx, "vg_1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byKey.ID)

	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.FindByAPIKey(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_CreateDuplicateKeepsFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	first := seed(t, r, "a@b.io", "vg_1", 100)

	_, err := r.Create(ctx, &models.Account{Email: "A@B.io", Name: "Other", APIKey: "vg_2"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	_, err = r.Create(ctx, &models.Account{Email: "c@d.io", Name: "Other", APIKey: "vg_1"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	got, err := r.FindByEmail(ctx, "a@b.io")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Test", got.Name)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	a := seed(t, r, "a@b.io", "vg_1", 100)

	a.CharactersUsed = 99
	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CharactersUsed)
}

func TestMemory_SaveOptimistic(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	a := seed(t, r, "a@b.io", "vg_1", 100)

	stale := a.Clone()

	a.APIKey = "vg_2"
	require.NoError(t, r.Save(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	_, err := r.FindByAPIKey(ctx, "vg_1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	stale.Name = "Lost update"
	assert.ErrorIs(t, r.Save(ctx, stale), common.ErrConcurrentModification)

	assert.ErrorIs(t, r.Save(ctx, &models.Account{ID: "nope"}), common.ErrorNotFound)
}

func TestMemory_SaveDoesNotTouchUsage(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	a := seed(t, r, "a@b.io", "vg_1", 100)

	_, err := r.AddUsage(ctx, a.ID, 40)
	require.NoError(t, err)

	a.CharactersUsed = 0
	a.Name = "Renamed"
	require.NoError(t, r.Save(ctx, a))

	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.CharactersUsed)
	assert.Equal(t, "Renamed", got.Name)
}

func TestMemory_SaveRejectsTakenKey(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	seed(t, r, "a@b.io", "vg_1", 100)
	b := seed(t, r, "c@d.io", "vg_2", 100)

	b.APIKey = "vg_1"
	assert.ErrorIs(t, r.Save(ctx, b), common.ErrDuplicateIdentity)
}

func TestMemory_AddUsage(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	a := seed(t, r, "a@b.io", "vg_1", 100)

	got, err := r.AddUsage(ctx, a.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.CharactersUsed)

	_, err = r.AddUsage(ctx, a.ID, 1)
	assert.ErrorIs(t, err, common.ErrQuotaExceeded)

	_, err = r.AddUsage(ctx, "missing", 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_AddUsageConcurrentNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	a := seed(t, r, "a@b.io", "vg_1", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.AddUsage(ctx, a.ID, 7)
		}()
	}
	wg.Wait()

	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(98), got.CharactersUsed)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewMemoryRepository()
	_, err := r.FindByID(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
