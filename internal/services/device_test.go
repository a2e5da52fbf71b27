package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
	"github.com/vibevault/vibevault/internal/pairing"
	"github.com/vibevault/vibevault/internal/repositories/devices"
)

func newDeviceService(t *testing.T) *DeviceService {
	t.Helper()
	db := setupDB(t)
	guard := &stubGuard{key: common.RandBytes(cryptox.KeySize), profileID: 1}
	return NewDeviceService(guard, devices.NewSQLiteRepository(db), testLogger())
}

func pairOnce(t *testing.T) *pairing.Result {
	t.Helper()
	a, err := pairing.NewSession()
	require.NoError(t, err)
	b, err := pairing.NewSession()
	require.NoError(t, err)
	b.Code = a.Code

	res, err := a.Complete(b.PublicKeyBytes(), b.MAC())
	require.NoError(t, err)
	return res
}

func TestRememberAndSessionKey(t *testing.T) {
	svc := newDeviceService(t)
	ctx := context.Background()

	res := pairOnce(t)
	require.NoError(t, svc.Remember(ctx, "token", "phone", res))

	key, err := svc.SessionKeyFor(ctx, "token", "phone")
	require.NoError(t, err)
	assert.Equal(t, res.SessionKey, key, "stored secret re-derives the same key")

	list, err := svc.List(ctx, "token")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "phone", list[0].Name)
	assert.Equal(t, res.PeerPublicKey, list[0].PublicKey)
}

func TestForget(t *testing.T) {
	svc := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Remember(ctx, "token", "phone", pairOnce(t)))
	require.NoError(t, svc.Forget(ctx, "token", "phone"))

	_, err := svc.SessionKeyFor(ctx, "token", "phone")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
