package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/models"
	"github.com/vibevault/vibevault/internal/repositories/profiles"
)

var (
	ErrEmptyProfileName = errors.New("profile name must not be empty")
	ErrProfileNotEmpty  = errors.New("profile still contains records")
	ErrLastProfile      = errors.New("cannot delete the last profile")
)

// ProfileService manages the named profiles that partition the vault.
// All operations require a valid session token.
type ProfileService struct {
	guard    SessionGuard
	profiles profiles.Repository
	logger   logging.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(guard SessionGuard, p profiles.Repository, logger logging.Logger) *ProfileService {
	return &ProfileService{guard: guard, profiles: p, logger: logger}
}

// Create adds a new profile with a trimmed, non-empty, unique name.
func (s *ProfileService) Create(ctx context.Context, token string, name string) (*models.Profile, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProfileName
	}
	p, err := s.profiles.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "profile created", "name", name)
	return p, nil
}

// List returns all profiles with their live record counts.
func (s *ProfileService) List(ctx context.Context, token string) ([]models.ProfileWithCount, error) {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return nil, err
	}
	return s.profiles.ListWithCounts(ctx)
}

// Rename changes a profile's name.
func (s *ProfileService) Rename(ctx context.Context, token string, id int64, name string) error {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyProfileName
	}
	return s.profiles.Rename(ctx, id, name)
}

// Delete removes a profile. A profile that still holds live records is
// refused; records must be deleted or moved first.
func (s *ProfileService) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.guard.Validate(ctx, token); err != nil {
		return err
	}

	list, err := s.profiles.ListWithCounts(ctx)
	if err != nil {
		return err
	}
	if len(list) == 1 {
		return ErrLastProfile
	}
	for _, p := range list {
		if p.ID == id && p.RecordCount > 0 {
			return ErrProfileNotEmpty
		}
	}
	return s.profiles.Delete(ctx, id)
}

// GetOrCreate returns the profile with the given name, creating it if
// needed. Used when an incoming sync names a profile this replica lacks.
func (s *ProfileService) GetOrCreate(ctx context.Context, name string) (*models.Profile, error) {
	p, err := s.profiles.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	return s.profiles.Create(ctx, name)
}
