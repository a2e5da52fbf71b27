package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/repositories/records"
	"github.com/vibevault/vibevault/internal/totp"
)

var ErrNoAuthenticatorSecret = errors.New("record has no authenticator secret")

// EntrySummary is the listing view of a record: no ciphertext, no payload.
type EntrySummary struct {
	UUID      string
	Label     string
	Version   int64
	UpdatedAt string
}

// Entry is a decrypted record.
type Entry struct {
	UUID    string
	Label   string
	Payload models.RecordPayload
}

// VaultService implements record CRUD over encrypted storage. Every
// operation requires a valid session token; payloads are encrypted with the
// session's data key before touching the database.
type VaultService struct {
	guard   SessionGuard
	records records.Repository
	logger  logging.Logger
	now     func() time.Time
}

// NewVaultService constructs a VaultService.
func NewVaultService(guard SessionGuard, r records.Repository, logger logging.Logger) *VaultService {
	return &VaultService{guard: guard, records: r, logger: logger, now: time.Now}
}

// List returns summaries of the live records in the session's profile.
func (v *VaultService) List(ctx context.Context, token string) ([]EntrySummary, error) {
	info, err := v.guard.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	defer cryptox.ZeroBytes(info.Key)

	recs, err := v.records.ListByProfile(ctx, info.ProfileID, false)
	if err != nil {
		return nil, err
	}

	summaries := make([]EntrySummary, 0, len(recs))
	for _, r := range recs {
		summaries = append(summaries, EntrySummary{
			UUID:      r.UUID,
			Label:     r.Label,
			Version:   r.Version,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return summaries, nil
}

// Get decrypts one record. Rows that predate encryption at rest (empty
// nonce) are read as plaintext; they are re-encrypted on the next unlock.
func (v *VaultService) Get(ctx context.Context, token string, id string) (*Entry, error) {
	info, err := v.guard.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	defer cryptox.ZeroBytes(info.Key)

	rec, err := v.fetchLive(ctx, info.ProfileID, id)
	if err != nil {
		return nil, err
	}

	plaintext, err := v.open(info.Key, rec)
	if err != nil {
		return nil, err
	}
	defer cryptox.ZeroBytes(plaintext)

	var payload models.RecordPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &Entry{UUID: rec.UUID, Label: rec.Label, Payload: payload}, nil
}

// Save encrypts and stores a new record, returning its uuid.
func (v *VaultService) Save(ctx context.Context, token string, label string, payload *models.RecordPayload) (string, error) {
	info, err := v.guard.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	defer cryptox.ZeroBytes(info.Key)

	ciphertext, nonce, err := v.seal(info.Key, payload)
	if err != nil {
		return "", err
	}

	now := stamp(v.now())
	rec := &models.Record{
		UUID:       uuid.NewString(),
		ProfileID:  info.ProfileID,
		Label:      label,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := v.records.Upsert(ctx, rec); err != nil {
		return "", err
	}
	v.logger.Debug(ctx, "record saved", "uuid", rec.UUID)
	return rec.UUID, nil
}

// Update re-encrypts an existing record with a new label and payload,
// bumping the version and the update timestamp.
func (v *VaultService) Update(ctx context.Context, token string, id string, label string, payload *models.RecordPayload) error {
	info, err := v.guard.Validate(ctx, token)
	if err != nil {
		return err
	}
	defer cryptox.ZeroBytes(info.Key)

	rec, err := v.fetchLive(ctx, info.ProfileID, id)
	if err != nil {
		return err
	}

	ciphertext, nonce, err := v.seal(info.Key, payload)
	if err != nil {
		return err
	}

	rec.Label = label
	rec.Ciphertext = ciphertext
	rec.Nonce = nonce
	rec.Version++
	rec.UpdatedAt = stamp(v.now())
	return v.records.Upsert(ctx, rec)
}

// Delete tombstones a record. The row is kept so the deletion replicates.
func (v *VaultService) Delete(ctx context.Context, token string, id string) error {
	info, err := v.guard.Validate(ctx, token)
	if err != nil {
		return err
	}
	cryptox.ZeroBytes(info.Key)

	if _, err := v.fetchLive(ctx, info.ProfileID, id); err != nil {
		return err
	}
	return v.records.SoftDelete(ctx, id, stamp(v.now()))
}

// TOTPCode returns the current one-time code for a record holding an
// authenticator secret, plus the seconds left in the window.
func (v *VaultService) TOTPCode(ctx context.Context, token string, id string) (string, int64, error) {
	entry, err := v.Get(ctx, token, id)
	if err != nil {
		return "", 0, err
	}
	if entry.Payload.TOTPSecret == "" {
		return "", 0, ErrNoAuthenticatorSecret
	}
	return totp.Code(entry.Payload.TOTPSecret, v.now())
}

// fetchLive returns a record if it belongs to the profile and is not a
// tombstone; otherwise common.ErrorNotFound.
func (v *VaultService) fetchLive(ctx context.Context, profileID int64, id string) (*models.Record, error) {
	rec, err := v.records.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.ProfileID != profileID || rec.Deleted() {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (v *VaultService) seal(key []byte, payload *models.RecordPayload) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode record: %w", err)
	}
	defer cryptox.ZeroBytes(plaintext)
	return cryptox.Encrypt(key, plaintext)
}

func (v *VaultService) open(key []byte, rec *models.Record) ([]byte, error) {
	if len(rec.Nonce) == 0 {
		plaintext := make([]byte, len(rec.Ciphertext))
		copy(plaintext, rec.Ciphertext)
		return plaintext, nil
	}
	return cryptox.Decrypt(key, rec.Ciphertext, rec.Nonce)
}
