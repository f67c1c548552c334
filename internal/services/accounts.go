package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/models"
)

// ErrAccountNotFound indicates the bearer token does not resolve to an account.
var ErrAccountNotFound = errors.New("account: not found")

// AccountService resolves opaque bearer tokens to accounts. Account creation
// and token issuance belong to the registration subsystem; the core only
// authenticates.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}
	return &AccountService{db: db}, nil
}

// AuthenticateToken returns the account owning the given bearer token.
func (s *AccountService) AuthenticateToken(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}

	var authToken models.AuthToken
	err := s.db.WithContext(ctx).
		Where("token = ?", token).
		First(&authToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("account service: find token: %w", err)
	}

	var account models.Account
	err = s.db.WithContext(ctx).
		Where("user_id = ?", authToken.UserID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("account service: find account: %w", err)
	}

	return &account, nil
}
