package services

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/perchard/trustbind/internal/database/testutil"
	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/signing"
)

func newBindFixture(t *testing.T) (*BindService, *InviteTokenService, *signing.Key) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	invites, err := NewInviteTokenService(db)
	require.NoError(t, err)

	key, err := signing.ParseKey("ed25519 0 AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)

	binder, err := NewBindService(invites, key, "localhost")
	require.NoError(t, err)

	return binder, invites, key
}

func TestBindSignsAssociation(t *testing.T) {
	binder, _, key := newBindFixture(t)

	address := uuid.NewString() + "@example.com"
	result, err := binder.Bind(context.Background(), models.MediumEmail, address, "@bob:localhost")
	require.NoError(t, err)

	require.Equal(t, models.MediumEmail, result["medium"])
	require.Equal(t, address, result["address"])
	require.Equal(t, "@bob:localhost", result["mxid"])
	require.Empty(t, result["invites"])

	pub := key.Private.Public().(ed25519.PublicKey)
	require.NoError(t, signing.VerifyJSON(result, "localhost", "ed25519:0", pub))
}

func TestBindKnownSignature(t *testing.T) {
	binder, _, _ := newBindFixture(t)

	result, err := binder.Bind(context.Background(), models.MediumEmail, "test@example.com", "@bob:localhost")
	require.NoError(t, err)

	// Deterministic for the all-zero seed: the signature covers exactly
	// {"address":"test@example.com","medium":"email","mxid":"@bob:localhost"}.
	sig := result["signatures"].(map[string]any)["localhost"].(map[string]any)["ed25519:0"]
	require.Equal(t,
		"eAf7qoaEp2Na7Fbd/rJsg6epZ/M8JTo0kEIsve1VJOtK2FsvS1Sp+QTJy3TKvGSAGaBZZPLqQpxWTYnWdvjMBw",
		sig)
}

func TestBindIncludesSignedInvites(t *testing.T) {
	binder, invites, key := newBindFixture(t)

	address := uuid.NewString() + "@example.com"
	spaceID := "!somespace:example.com"
	_, err := invites.Create(context.Background(), CreateInput{
		Medium:  models.MediumEmail,
		Address: address,
		RoomID:  "!someroom:example.com",
		Sender:  "@alice:localhost",
		Token:   "some_reg_token",
		SpaceID: &spaceID,
	})
	require.NoError(t, err)

	result, err := binder.Bind(context.Background(), models.MediumEmail, address, "@bob:localhost")
	require.NoError(t, err)

	list, ok := result["invites"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, list, 1)

	invite := list[0]
	require.Equal(t, models.MediumEmail, invite["medium"])
	require.Equal(t, address, invite["address"])
	require.Equal(t, "@bob:localhost", invite["mxid"])
	require.Equal(t, "!someroom:example.com", invite["room_id"])
	require.Equal(t, "@alice:localhost", invite["sender"])
	require.Equal(t, "some_reg_token", invite["token"])
	require.Equal(t, spaceID, invite["space_id"])

	signed, ok := invite["signed"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "@bob:localhost", signed["mxid"])
	require.Equal(t, "some_reg_token", signed["token"])

	// The per-invite signature covers {"mxid":...,"token":...} only.
	sig := signed["signatures"].(map[string]any)["localhost"].(map[string]any)["ed25519:0"]
	require.Equal(t,
		"z0uB1Jr/IQspJb51cYdU9fArosTdxzQQ/M1EvrgHtbi++yQa/fhGlp8ToNYIchSSB4mjlz1ezzjQPHe1K8/7Cw",
		sig)

	pub := key.Private.Public().(ed25519.PublicKey)
	require.NoError(t, signing.VerifyJSON(signed, "localhost", "ed25519:0", pub))
}

func TestBindIsNonDestructive(t *testing.T) {
	binder, invites, _ := newBindFixture(t)

	address := uuid.NewString() + "@example.com"
	token := "tok-" + uuid.NewString()
	_, err := invites.Create(context.Background(), CreateInput{
		Medium:  models.MediumEmail,
		Address: address,
		RoomID:  "!myroom:test",
		Sender:  "@alice:wonderland",
		Token:   token,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := binder.Bind(context.Background(), models.MediumEmail, address, "@bob:localhost")
		require.NoError(t, err)
		require.Len(t, result["invites"], 1)
	}

	// The invite stays queryable after binding.
	_, err = invites.GetByToken(context.Background(), token)
	require.NoError(t, err)
}
