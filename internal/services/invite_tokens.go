package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/models"
)

var (
	// ErrDuplicateToken indicates an invite with the same token already exists.
	ErrDuplicateToken = errors.New("invite token: duplicate token")
	// ErrTokenNotFound indicates no invite matches the provided token.
	ErrTokenNotFound = errors.New("invite token: not found")
)

// InviteTokenOption customises InviteTokenService behaviour.
type InviteTokenOption func(*InviteTokenService)

// WithInviteTokenClock injects a custom clock, primarily for testing.
func WithInviteTokenClock(clock func() time.Time) InviteTokenOption {
	return func(s *InviteTokenService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InviteTokenService is the persistent store of pending invites keyed by
// (medium, address). Rows are written once and never mutated; bind reads
// them non-destructively.
type InviteTokenService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewInviteTokenService constructs an InviteTokenService.
func NewInviteTokenService(db *gorm.DB, opts ...InviteTokenOption) (*InviteTokenService, error) {
	if db == nil {
		return nil, errors.New("invite token service: db is required")
	}

	service := &InviteTokenService{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateInput carries the fields of a new pending invite. Token is supplied
// by the caller; the store's only uniqueness obligation is on it.
type CreateInput struct {
	Medium    string
	Address   string
	RoomID    string
	Sender    string
	Token     string
	SpaceID   *string
	RoomName  *string
	SpaceName *string
}

// Create persists a pending invite. Validation of the address must have
// happened before this call; nothing is written when an error is returned.
func (s *InviteTokenService) Create(ctx context.Context, input CreateInput) (*models.InviteToken, error) {
	if input.Token == "" {
		return nil, errors.New("invite token service: token is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.InviteToken{}).
		Where("token = ?", input.Token).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("invite token service: check token: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateToken
	}

	invite := models.InviteToken{
		Token:      input.Token,
		Medium:     input.Medium,
		Address:    input.Address,
		RoomID:     input.RoomID,
		Sender:     input.Sender,
		SpaceID:    input.SpaceID,
		RoomName:   input.RoomName,
		SpaceName:  input.SpaceName,
		ReceivedTs: s.now().UnixMilli(),
	}

	// The primary key constraint still backs uniqueness if two writers race
	// past the pre-check.
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateToken
		}
		return nil, fmt.Errorf("invite token service: create: %w", err)
	}

	return &invite, nil
}

// GetTokensForAddress returns all pending invites for a (medium, address)
// pair, oldest first. An empty slice is a normal answer, not an error.
func (s *InviteTokenService) GetTokensForAddress(ctx context.Context, medium, address string) ([]models.InviteToken, error) {
	var invites []models.InviteToken
	err := s.db.WithContext(ctx).
		Where("medium = ? AND address = ?", medium, address).
		Order("received_ts ASC").
		Find(&invites).Error
	if err != nil {
		return nil, fmt.Errorf("invite token service: list for address: %w", err)
	}
	return invites, nil
}

// GetByToken returns the invite identified by token.
func (s *InviteTokenService) GetByToken(ctx context.Context, token string) (*models.InviteToken, error) {
	var invite models.InviteToken
	err := s.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("invite token service: find token: %w", err)
	}
	return &invite, nil
}
