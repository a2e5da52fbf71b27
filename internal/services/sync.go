package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
	"github.com/vibevault/vibevault/internal/dbx"
	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/pairing"
	"github.com/vibevault/vibevault/internal/repositories/devices"
	"github.com/vibevault/vibevault/internal/repositories/profiles"
	"github.com/vibevault/vibevault/internal/repositories/records"
	"github.com/vibevault/vibevault/internal/repositories/synclog"
	"github.com/vibevault/vibevault/internal/repositories/users"
	"github.com/vibevault/vibevault/internal/transport"
)

// tombstoneRetention is how long deletions are kept so they can replicate
// before being purged.
const tombstoneRetention = 90 * 24 * time.Hour

// BundleVersion is the current export bundle wire revision.
const BundleVersion = 1

// ErrBundleVersion signals a bundle from an incompatible peer build.
var ErrBundleVersion = errors.New("unsupported sync bundle version")

// SyncService replicates one profile between paired devices. Conflict
// resolution is last-write-wins on the update timestamp, with the version
// counter as the tiebreaker and local data kept on a full tie.
type SyncService struct {
	guard   SessionGuard
	db      *sql.DB
	users   users.Repository
	synclog synclog.Repository
	devices devices.Repository
	logger  logging.Logger
	mtu     int
	now     func() time.Time
}

// NewSyncService constructs a SyncService. mtu bounds the size of transport
// frames produced by Push.
func NewSyncService(guard SessionGuard, db *sql.DB, u users.Repository,
	sl synclog.Repository, d devices.Repository, logger logging.Logger, mtu int) *SyncService {
	return &SyncService{
		guard: guard, db: db, users: u, synclog: sl, devices: d,
		logger: logger, mtu: mtu, now: time.Now,
	}
}

// Export collects the records of the session's profile changed strictly
// after since (tombstones included). An empty since means a first sync: the
// whole profile is exported together with the encryption salt, so a blank
// peer can adopt it and derive the same data key.
func (s *SyncService) Export(ctx context.Context, token string, since string) (*models.ExportBundle, error) {
	info, err := s.guard.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	cryptox.ZeroBytes(info.Key)

	profileRepo := profiles.NewSQLiteRepository(s.db)
	profile, err := profileRepo.GetByID(ctx, info.ProfileID)
	if err != nil {
		return nil, err
	}

	recs, err := records.NewSQLiteRepository(s.db).ListUpdatedSince(ctx, info.ProfileID, since)
	if err != nil {
		return nil, err
	}

	bundle := &models.ExportBundle{
		Version:     BundleVersion,
		ProfileName: profile.Name,
		Records:     recs,
	}
	if since == "" {
		cred, err := s.users.Get(ctx)
		if err != nil {
			return nil, err
		}
		bundle.EncryptionSalt = cred.EncryptionSalt
	}
	return bundle, nil
}

// Merge applies an incoming bundle transactionally and returns what it did.
//
// Per record, the incoming copy wins when its update timestamp is newer, or
// equal with a higher version. A winning tombstone soft-deletes the local
// copy and counts as both a deletion and a conflict; everything else that
// loses is skipped. The profile is matched by name and created when absent.
func (s *SyncService) Merge(ctx context.Context, token string, deviceName string, bundle *models.ExportBundle) (*models.MergeStats, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return nil, err
	}
	if bundle.Version != BundleVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBundleVersion, bundle.Version, BundleVersion)
	}

	stats := &models.MergeStats{}
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		profileRepo := profiles.NewSQLiteRepository(tx)
		recordRepo := records.NewSQLiteRepository(tx)

		profile, err := profileRepo.GetByName(ctx, bundle.ProfileName)
		if errors.Is(err, common.ErrorNotFound) {
			profile, err = profileRepo.Create(ctx, bundle.ProfileName)
		}
		if err != nil {
			return err
		}

		if err := s.adoptSalt(ctx, tx, profile.ID, bundle.EncryptionSalt); err != nil {
			return err
		}

		for i := range bundle.Records {
			if err := mergeRecord(ctx, recordRepo, profile.ID, &bundle.Records[i], stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge from %q: %w", deviceName, err)
	}

	if err := s.finishSync(ctx, deviceName, "incoming", stats); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "merge complete", "device", deviceName,
		"applied", stats.Applied, "skipped", stats.Skipped,
		"deleted", stats.Deleted, "conflicts", stats.Conflicts)
	return stats, nil
}

// mergeRecord applies one incoming record under last-write-wins.
func mergeRecord(ctx context.Context, repo records.Repository, profileID int64, incoming *models.Record, stats *models.MergeStats) error {
	incoming.ProfileID = profileID
	if incoming.Nonce == nil {
		incoming.Nonce = []byte{}
	}

	local, err := repo.GetByUUID(ctx, incoming.UUID)
	if errors.Is(err, common.ErrorNotFound) {
		if err := repo.Upsert(ctx, incoming); err != nil {
			return err
		}
		stats.Applied++
		return nil
	}
	if err != nil {
		return err
	}

	// RFC 3339 UTC strings order lexicographically
	wins := incoming.UpdatedAt > local.UpdatedAt ||
		(incoming.UpdatedAt == local.UpdatedAt && incoming.Version > local.Version)
	if !wins {
		stats.Skipped++
		return nil
	}

	if incoming.Deleted() {
		if local.Deleted() {
			stats.Skipped++
			return nil
		}
		// adopt the tombstone as-is so version and updated_at stay
		// identical on both replicas
		if err := repo.Upsert(ctx, incoming); err != nil {
			return err
		}
		stats.Deleted++
		stats.Conflicts++
		return nil
	}

	if err := repo.Upsert(ctx, incoming); err != nil {
		return err
	}
	stats.Applied++
	return nil
}

// adoptSalt takes over the peer's encryption salt on a first sync into an
// empty profile. A replica that already holds records keeps its own salt;
// mixing two salts in one vault cannot be repaired automatically.
func (s *SyncService) adoptSalt(ctx context.Context, tx dbx.DBTX, profileID int64, salt string) error {
	if salt == "" {
		return nil
	}
	userRepo := users.NewSQLiteRepository(tx)
	cred, err := userRepo.Get(ctx)
	if err != nil {
		return err
	}
	if cred.EncryptionSalt == salt {
		return nil
	}

	existing, err := records.NewSQLiteRepository(tx).ListByProfile(ctx, profileID, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	if err := userRepo.UpdateEncryptionSalt(ctx, salt); err != nil {
		return err
	}
	s.logger.Info(ctx, "adopted peer encryption salt")
	return nil
}

// finishSync records the outcome in the sync log and stamps the device.
func (s *SyncService) finishSync(ctx context.Context, deviceName string, direction string, stats *models.MergeStats) error {
	err := s.synclog.Append(ctx, &models.SyncLogEntry{
		DeviceName: deviceName,
		Direction:  direction,
		Applied:    stats.Applied,
		Skipped:    stats.Skipped,
		Deleted:    stats.Deleted,
		Conflicts:  stats.Conflicts,
		SyncedAt:   s.now(),
	})
	if err != nil {
		return err
	}
	err = s.devices.TouchLastSync(ctx, deviceName, s.now())
	if errors.Is(err, common.ErrorNotFound) {
		// syncing with an ad-hoc peer that was never remembered
		return nil
	}
	return err
}

// Push encrypts a bundle with the pairing session key and sends it over the
// channel in MTU-sized chunks. The frame is nonce || ciphertext.
func (s *SyncService) Push(ctx context.Context, ch transport.Channel, key *[cryptox.KeySize]byte, bundle *models.ExportBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	ciphertext, nonce, err := pairing.EncryptTransport(key, data)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(nonce)+len(ciphertext))
	frame = append(frame, nonce...)
	frame = append(frame, ciphertext...)
	return transport.SendPayload(ctx, ch, frame, s.mtu)
}

// Pull receives and decrypts a bundle sent by the peer's Push.
func (s *SyncService) Pull(ctx context.Context, ch transport.Channel, key *[cryptox.KeySize]byte) (*models.ExportBundle, error) {
	frame, err := transport.ReceivePayload(ctx, ch)
	if err != nil {
		return nil, err
	}
	if len(frame) <= cryptox.NonceSize {
		return nil, cryptox.ErrDecryptFailed
	}
	data, err := pairing.DecryptTransport(key, frame[cryptox.NonceSize:], frame[:cryptox.NonceSize])
	if err != nil {
		return nil, err
	}
	var bundle models.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &bundle, nil
}

// PurgeTombstones hard-deletes tombstones older than the retention window.
func (s *SyncService) PurgeTombstones(ctx context.Context, token string) (int64, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return 0, err
	}
	before := stamp(s.now().Add(-tombstoneRetention))
	n, err := records.NewSQLiteRepository(s.db).PurgeTombstones(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "purged tombstones", "count", n)
	}
	return n, nil
}

// History returns the most recent sync log entries.
func (s *SyncService) History(ctx context.Context, token string, limit int) ([]models.SyncLogEntry, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return nil, err
	}
	return s.synclog.List(ctx, limit)
}
