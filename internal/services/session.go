// Package services contains the application services of the vault: master
// password lifecycle, record CRUD over encrypted storage, profiles, paired
// devices and replica synchronization.
package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vibevault/vibevault/internal/common"
	"github.com/vibevault/vibevault/internal/cryptox"
	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/repositories/records"
	"github.com/vibevault/vibevault/internal/repositories/users"
)

const (
	sessionTokenLen = 32
	// backoff kicks in after this many consecutive failures
	backoffThreshold = 3
	maxBackoff       = 16 * time.Second
	defaultProfileID = 1
)

// RateLimitedError tells the caller how long to wait before the next
// unlock attempt. The delay is advisory: it slows a keyboard attacker
// down but an attacker with the database file is outside this model.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

// SessionInfo is what a validated token grants: the data encryption key and
// the profile the session is scoped to. Key is a copy owned by the caller.
type SessionInfo struct {
	Key       []byte
	ProfileID int64
}

// SessionGuard validates a session token before a guarded operation runs.
type SessionGuard interface {
	Validate(ctx context.Context, token string) (*SessionInfo, error)
}

// session is the single in-memory unlocked state.
type session struct {
	token        string
	key          *cryptox.Secret
	profileID    int64
	lastActivity time.Time
	autoLock     time.Duration
}

// SessionService owns registration, unlock/lock and token validation.
// At most one session exists at a time; locking zeroes the key material.
type SessionService struct {
	users   users.Repository
	records records.Repository
	logger  logging.Logger

	mu      sync.Mutex
	current *session

	attemptsMu  sync.Mutex
	failures    int
	lastAttempt time.Time

	now func() time.Time
}

// NewSessionService constructs a SessionService over the given repositories.
func NewSessionService(u users.Repository, r records.Repository, logger logging.Logger) *SessionService {
	return &SessionService{
		users:   u,
		records: r,
		logger:  logger,
		now:     time.Now,
	}
}

// Registered reports whether a master password exists.
func (s *SessionService) Registered(ctx context.Context) (bool, error) {
	return s.users.Exists(ctx)
}

// Register sets the master credential. It stores the username, the password
// hash and a fresh encryption salt; hash salt and encryption salt are
// independent so a future password change does not force re-encrypting the
// vault.
func (s *SessionService) Register(ctx context.Context, username string, password []byte) error {
	exists, err := s.users.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return common.ErrAlreadyRegistered
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	salt := hex.EncodeToString(common.RandBytes(cryptox.EncryptionSaltSize))

	if err := s.users.Create(ctx, username, hash, salt); err != nil {
		return err
	}
	s.logger.Info(ctx, "master password registered")
	return nil
}

// Unlock verifies the master password, derives the data encryption key and
// opens a session. Returns the opaque session token.
//
// Repeated failures are throttled: after backoffThreshold consecutive
// misses the next attempt must wait min(2^(n-threshold), 16) seconds.
func (s *SessionService) Unlock(ctx context.Context, username string, password []byte) (string, error) {
	if err := s.checkBackoff(); err != nil {
		return "", err
	}

	cred, err := s.users.Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", err
	}

	// Wrong username, wrong password and an unreadable stored hash all
	// collapse to the same generic error.
	ok, err := cryptox.VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		s.logger.Warn(ctx, "stored password hash unreadable", "error", err)
		ok = false
	}
	if !cryptox.ConstantTimeEquals([]byte(username), []byte(cred.Username)) {
		ok = false
	}
	if !ok {
		s.recordFailure(ctx)
		return "", common.ErrInvalidCredentials
	}
	s.resetAttempts()

	salt := cred.EncryptionSalt
	if salt == "" {
		// credential predates encryption at rest
		salt = hex.EncodeToString(common.RandBytes(cryptox.EncryptionSaltSize))
		if err := s.users.UpdateEncryptionSalt(ctx, salt); err != nil {
			return "", err
		}
		s.logger.Info(ctx, "backfilled missing encryption salt")
	}
	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode encryption salt: %w", err)
	}

	key, err := cryptox.DeriveEncryptionKey(password, saltBytes)
	if err != nil {
		return "", err
	}

	if err := s.migratePlaintext(ctx, key[:]); err != nil {
		cryptox.ZeroBytes(key[:])
		return "", err
	}

	// housekeeping: deletions older than the retention window have had
	// ample time to replicate
	purged, err := s.records.PurgeTombstones(ctx, stamp(s.now().Add(-tombstoneRetention)))
	if err != nil {
		cryptox.ZeroBytes(key[:])
		return "", err
	}
	if purged > 0 {
		s.logger.Info(ctx, "purged expired tombstones", "count", purged)
	}

	token, err := common.RandHex(sessionTokenLen)
	if err != nil {
		cryptox.ZeroBytes(key[:])
		return "", err
	}

	s.mu.Lock()
	if s.current != nil {
		s.current.key.Zero()
	}
	s.current = &session{
		token:        token,
		key:          cryptox.NewSecret(append([]byte(nil), key[:]...)),
		profileID:    defaultProfileID,
		lastActivity: s.now(),
		autoLock:     time.Duration(cred.AutoLockSecs) * time.Second,
	}
	s.mu.Unlock()
	cryptox.ZeroBytes(key[:])

	s.logger.Info(ctx, "vault unlocked")
	return token, nil
}

// migratePlaintext encrypts rows written before encryption at rest. Version
// and timestamps are preserved: this is a storage format change, not an edit.
func (s *SessionService) migratePlaintext(ctx context.Context, key []byte) error {
	legacy, err := s.records.ListLegacy(ctx)
	if err != nil {
		return err
	}
	for i := range legacy {
		rec := &legacy[i]
		ciphertext, nonce, err := cryptox.Encrypt(key, rec.Ciphertext)
		if err != nil {
			return fmt.Errorf("migrate record %s: %w", rec.UUID, err)
		}
		rec.Ciphertext = ciphertext
		rec.Nonce = nonce
		if err := s.records.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	if len(legacy) > 0 {
		s.logger.Info(ctx, "migrated plaintext records", "count", len(legacy))
	}
	return nil
}

// Validate checks the token, applies the auto-lock timeout and refreshes the
// activity clock. A timed-out or unknown token yields ErrSessionExpired.
func (s *SessionService) Validate(ctx context.Context, token string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, common.ErrSessionExpired
	}
	if !cryptox.ConstantTimeEquals([]byte(token), []byte(s.current.token)) {
		return nil, common.ErrSessionExpired
	}

	now := s.now()
	if s.current.autoLock > 0 && now.Sub(s.current.lastActivity) > s.current.autoLock {
		s.clearLocked()
		return nil, common.ErrSessionExpired
	}
	s.current.lastActivity = now

	key := make([]byte, len(s.current.key.Bytes()))
	copy(key, s.current.key.Bytes())
	return &SessionInfo{Key: key, ProfileID: s.current.profileID}, nil
}

// TouchActivity resets the inactivity clock. Interactive frontends call it
// on user input that does not itself hit a guarded operation, so an open
// prompt does not auto-lock under the operator's fingers.
func (s *SessionService) TouchActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.lastActivity = s.now()
	}
}

// Lock closes the session and zeroes the key material. Locking an already
// locked vault is a no-op.
func (s *SessionService) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.clearLocked()
		s.logger.Info(context.Background(), "vault locked")
	}
}

// clearLocked wipes the session. Caller holds mu.
func (s *SessionService) clearLocked() {
	s.current.key.Zero()
	s.current = nil
}

// SetActiveProfile scopes the session to another profile.
func (s *SessionService) SetActiveProfile(ctx context.Context, token string, profileID int64) error {
	if _, err := s.Validate(ctx, token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return common.ErrSessionExpired
	}
	s.current.profileID = profileID
	return nil
}

// SetAutoLock persists a new inactivity timeout and applies it to the
// current session.
func (s *SessionService) SetAutoLock(ctx context.Context, token string, timeout time.Duration) error {
	if _, err := s.Validate(ctx, token); err != nil {
		return err
	}
	if err := s.users.UpdateAutoLock(ctx, int64(timeout.Seconds())); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.autoLock = timeout
	}
	return nil
}

func (s *SessionService) checkBackoff() error {
	s.attemptsMu.Lock()
	defer s.attemptsMu.Unlock()

	delay := backoffDelay(s.failures)
	if delay == 0 {
		return nil
	}
	elapsed := s.now().Sub(s.lastAttempt)
	if elapsed >= delay {
		return nil
	}
	return &RateLimitedError{RetryAfter: delay - elapsed}
}

func (s *SessionService) recordFailure(ctx context.Context) {
	s.attemptsMu.Lock()
	defer s.attemptsMu.Unlock()
	s.failures++
	s.lastAttempt = s.now()
	s.logger.Warn(ctx, "failed unlock attempt", "failures", s.failures)
}

func (s *SessionService) resetAttempts() {
	s.attemptsMu.Lock()
	defer s.attemptsMu.Unlock()
	s.failures = 0
}

// backoffDelay returns the wait required after n consecutive failures.
func backoffDelay(n int) time.Duration {
	if n < backoffThreshold {
		return 0
	}
	d := time.Second << (n - backoffThreshold)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

var _ SessionGuard = (*SessionService)(nil)

// stamp formats t the way replicated timestamps are stored: RFC 3339 in UTC,
// so string comparison orders the same as time comparison.
func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
