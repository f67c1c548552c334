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

func TestInviteTokenServiceCreate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewInviteTokenService(db, WithInviteTokenClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	token := "tok-" + uuid.NewString()
	spaceID := "!somespace:example.com"
	invite, err := svc.Create(context.Background(), CreateInput{
		Medium:  models.MediumEmail,
		Address: uuid.NewString() + "@example.com",
		RoomID:  "!someroom:example.com",
		Sender:  "@alice:localhost",
		Token:   token,
		SpaceID: &spaceID,
	})
	require.NoError(t, err)
	require.Equal(t, token, invite.Token)
	require.Equal(t, fixed.UnixMilli(), invite.ReceivedTs)

	stored, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, invite.Address, stored.Address)
	require.NotNil(t, stored.SpaceID)
	require.Equal(t, spaceID, *stored.SpaceID)
	require.Nil(t, stored.RoomName)
}

func TestInviteTokenServiceCreateRejectsDuplicates(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewInviteTokenService(db)
	require.NoError(t, err)

	input := CreateInput{
		Medium:  models.MediumEmail,
		Address: uuid.NewString() + "@example.com",
		RoomID:  "!myroom:test",
		Sender:  "@alice:wonderland",
		Token:   "tok-" + uuid.NewString(),
	}

	_, err = svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrDuplicateToken)
}

func TestInviteTokenServiceCreateRequiresToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewInviteTokenService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Medium:  models.MediumEmail,
		Address: "bob@example.com",
		RoomID:  "!myroom:test",
		Sender:  "@alice:wonderland",
	})
	require.Error(t, err)
}

func TestInviteTokenServiceGetTokensForAddress(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewInviteTokenService(db, WithInviteTokenClock(func() time.Time { return current }))
	require.NoError(t, err)

	address := uuid.NewString() + "@example.com"
	var tokens []string
	for i := 0; i < 3; i++ {
		token := "tok-" + uuid.NewString()
		tokens = append(tokens, token)
		_, err := svc.Create(context.Background(), CreateInput{
			Medium:  models.MediumEmail,
			Address: address,
			RoomID:  "!someroom:example.com",
			Sender:  "@alice:localhost",
			Token:   token,
		})
		require.NoError(t, err)
		current = current.Add(time.Minute)
	}

	invites, err := svc.GetTokensForAddress(context.Background(), models.MediumEmail, address)
	require.NoError(t, err)
	require.Len(t, invites, 3)

	// Oldest first.
	for i, invite := range invites {
		require.Equal(t, tokens[i], invite.Token)
	}

	// A different medium for the same address matches nothing.
	none, err := svc.GetTokensForAddress(context.Background(), models.MediumMSISDN, address)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestInviteTokenServiceGetByTokenNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewInviteTokenService(db)
	require.NoError(t, err)

	_, err = svc.GetByToken(context.Background(), "tok-"+uuid.NewString())
	require.ErrorIs(t, err, ErrTokenNotFound)
}
