package services

import (
	"context"
	"time"

	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/pairing"
	"github.com/vibevault/vibevault/internal/repositories/devices"
)

// DeviceService remembers pairing outcomes so future syncs can skip the
// code-verification ceremony: the stored shared secret re-derives the same
// transport key on both sides.
type DeviceService struct {
	guard   SessionGuard
	devices devices.Repository
	logger  logging.Logger
	now     func() time.Time
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(guard SessionGuard, d devices.Repository, logger logging.Logger) *DeviceService {
	return &DeviceService{guard: guard, devices: d, logger: logger, now: time.Now}
}

// Remember persists the outcome of a completed pairing under the peer's
// name. Pairing the same name again replaces the key material.
func (s *DeviceService) Remember(ctx context.Context, token string, name string, res *pairing.Result) error {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return err
	}
	err := s.devices.Upsert(ctx, &models.PairedDevice{
		Name:         name,
		PublicKey:    res.PeerPublicKey,
		SharedSecret: res.SharedSecret,
		PairedAt:     s.now(),
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "device paired", "name", name)
	return nil
}

// List returns all paired devices.
func (s *DeviceService) List(ctx context.Context, token string) ([]models.PairedDevice, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return nil, err
	}
	return s.devices.List(ctx)
}

// Forget drops a paired device. Syncing with it again requires re-pairing.
func (s *DeviceService) Forget(ctx context.Context, token string, name string) error {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return err
	}
	if err := s.devices.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info(ctx, "device forgotten", "name", name)
	return nil
}

// SessionKeyFor re-derives the transport key for a remembered device from
// its stored shared secret.
func (s *DeviceService) SessionKeyFor(ctx context.Context, token string, name string) ([32]byte, error) {
	var zero [32]byte
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return zero, err
	}
	d, err := s.devices.GetByName(ctx, name)
	if err != nil {
		return zero, err
	}
	return pairing.DeriveSessionKey(d.SharedSecret)
}
