package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/models"
)

// How long a completed validation remains usable for binding, and how long
// an abandoned session is kept before maintenance removes it.
const (
	defaultSessionValidity = 24 * time.Hour
	defaultSessionMaxAge   = 7 * 24 * time.Hour
)

var (
	// ErrSessionNotFound indicates no session matches the sid + client secret.
	ErrSessionNotFound = errors.New("validation session: not found")
	// ErrSessionNotValidated indicates the session exists but ownership was
	// never proven.
	ErrSessionNotValidated = errors.New("validation session: not validated")
	// ErrSessionExpired indicates the proof is too old to be relied on.
	ErrSessionExpired = errors.New("validation session: expired")
)

// SessionOption customises ValidationSessionService behaviour.
type SessionOption func(*ValidationSessionService)

// WithSessionClock injects a custom clock, primarily for testing.
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *ValidationSessionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSessionValidity overrides how long a validated session stays usable.
func WithSessionValidity(d time.Duration) SessionOption {
	return func(s *ValidationSessionService) {
		if d > 0 {
			s.validity = d
		}
	}
}

// ValidationSessionService stores (medium, address) ownership proofs. The
// verification-code flow that marks sessions validated lives outside the
// core; bind only ever reads.
type ValidationSessionService struct {
	db       *gorm.DB
	now      func() time.Time
	validity time.Duration
}

// NewValidationSessionService constructs a ValidationSessionService.
func NewValidationSessionService(db *gorm.DB, opts ...SessionOption) (*ValidationSessionService, error) {
	if db == nil {
		return nil, errors.New("validation session service: db is required")
	}

	service := &ValidationSessionService{
		db:       db,
		now:      time.Now,
		validity: defaultSessionValidity,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Create starts a new validation session for a 3PID.
func (s *ValidationSessionService) Create(ctx context.Context, medium, address, clientSecret string) (*models.ValidationSession, error) {
	session := models.ValidationSession{
		ClientSecret: clientSecret,
		Medium:       medium,
		Address:      address,
		Mtime:        s.now().UnixMilli(),
	}

	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("validation session service: create: %w", err)
	}
	return &session, nil
}

// MarkValidated records that ownership of the session's 3PID was proven.
func (s *ValidationSessionService) MarkValidated(ctx context.Context, sid string) error {
	res := s.db.WithContext(ctx).
		Model(&models.ValidationSession{}).
		Where("id = ?", sid).
		Updates(map[string]any{
			"validated": true,
			"mtime":     s.now().UnixMilli(),
		})
	if res.Error != nil {
		return fmt.Errorf("validation session service: mark validated: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetValidatedSession resolves sid + clientSecret to the proven 3PID. The
// client secret must match exactly; a mismatch is indistinguishable from an
// unknown session on purpose.
func (s *ValidationSessionService) GetValidatedSession(ctx context.Context, sid, clientSecret string) (*models.ValidationSession, error) {
	var session models.ValidationSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND client_secret = ?", sid, clientSecret).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("validation session service: find: %w", err)
	}

	if !session.Validated {
		return nil, ErrSessionNotValidated
	}

	if s.now().UnixMilli()-session.Mtime > s.validity.Milliseconds() {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// PurgeStale removes abandoned sessions older than maxAge that were never
// validated. Called by the maintenance cleaner. Returns the number removed.
func (s *ValidationSessionService) PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = defaultSessionMaxAge
	}

	cutoff := s.now().Add(-maxAge).UnixMilli()
	res := s.db.WithContext(ctx).
		Where("validated = ? AND mtime < ?", false, cutoff).
		Delete(&models.ValidationSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("validation session service: purge stale: %w", res.Error)
	}
	return res.RowsAffected, nil
}
