package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/perchard/trustbind/internal/database/testutil"
	"github.com/perchard/trustbind/internal/models"
)

func TestAccountServiceAuthenticateToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db)
	require.NoError(t, err)

	userID := "@alice:" + uuid.NewString()
	token := "tok-" + uuid.NewString()
	require.NoError(t, db.Create(&models.Account{UserID: userID, CreatedTs: time.Now().UnixMilli()}).Error)
	require.NoError(t, db.Create(&models.AuthToken{Token: token, UserID: userID}).Error)

	account, err := svc.AuthenticateToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID, account.UserID)
}

func TestAccountServiceAuthenticateTokenUnknown(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db)
	require.NoError(t, err)

	_, err = svc.AuthenticateToken(context.Background(), "tok-"+uuid.NewString())
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.AuthenticateToken(context.Background(), "")
	require.ErrorIs(t, err, ErrAccountNotFound)
}
