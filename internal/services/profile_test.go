package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/repositories/profiles"
	"github.com/vibevault/vibevault/internal/repositories/records"
)

func newProfileService(t *testing.T) (*ProfileService, records.Repository) {
	t.Helper()
	db := setupDB(t)
	guard := &stubGuard{key: common.RandBytes(cryptox.KeySize), profileID: 1}
	return NewProfileService(guard, profiles.NewSQLiteRepository(db), testLogger()),
		records.NewSQLiteRepository(db)
}

func TestProfileCreateAndList(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "token", "  Work  ")
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name, "name trimmed")

	_, err = svc.Create(ctx, "token", "   ")
	require.ErrorIs(t, err, ErrEmptyProfileName)

	list, err := svc.List(ctx, "token")
	require.NoError(t, err)
	require.Len(t, list, 2, "seeded Personal plus Work")
	assert.Equal(t, "Personal", list[0].Name)
	assert.Equal(t, "Work", list[1].Name)
}

func TestProfileRename(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "token", "Work")
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, "token", p.ID, "Office"))
	require.ErrorIs(t, svc.Rename(ctx, "token", p.ID, ""), ErrEmptyProfileName)
	require.ErrorIs(t, svc.Rename(ctx, "token", 999, "x"), common.ErrorNotFound)
}

func TestProfileDelete_RefusesNonEmpty(t *testing.T) {
	svc, recRepo := newProfileService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "token", "Work")
	require.NoError(t, err)

	require.NoError(t, recRepo.Upsert(ctx, &models.Record{
		UUID: "r1", ProfileID: p.ID, Label: "x", Ciphertext: []byte{1},
		Nonce: []byte{}, Version: 1,
		CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z",
	}))

	require.ErrorIs(t, svc.Delete(ctx, "token", p.ID), ErrProfileNotEmpty)

	require.NoError(t, recRepo.SoftDelete(ctx, "r1", "2026-01-02T00:00:00Z"))
	require.NoError(t, svc.Delete(ctx, "token", p.ID), "tombstones do not block deletion")
}

func TestProfileGetOrCreate(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	p1, err := svc.GetOrCreate(ctx, "Personal")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p1.ID, "existing profile reused")

	p2, err := svc.GetOrCreate(ctx, "Travel")
	require.NoError(t, err)
	p3, err := svc.GetOrCreate(ctx, "Travel")
	require.NoError(t, err)
	assert.Equal(t, p2.ID, p3.ID)
}

func TestProfileDelete_RefusesLastProfile(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.Delete(ctx, "token", 1), ErrLastProfile)
}
