package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/perchard/trustbind/internal/handlers/testutil"
	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/services"
)

func seedInvite(t *testing.T, env *testutil.Env, medium, address string) string {
	t.Helper()

	token := "tok-" + uuid.NewString()
	_, err := env.Invites.Create(context.Background(), services.CreateInput{
		Medium:  medium,
		Address: address,
		RoomID:  "!myroom:test",
		Sender:  "@alice:wonderland",
		Token:   token,
	})
	require.NoError(t, err)
	return token
}

func TestTokenInfo(t *testing.T) {
	env := testutil.NewEnv(t)

	address := uuid.NewString() + "@example.com"
	token := seedInvite(t, env, models.MediumEmail, address)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokeninfo?token="+token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Medium  string `json:"medium"`
		Address string `json:"address"`
		Sender  string `json:"sender"`
		RoomID  string `json:"room_id"`
	}
	testutil.DecodeInto(t, w, &result)
	require.Equal(t, models.MediumEmail, result.Medium)
	require.Equal(t, address, result.Address)
	require.Equal(t, "@alice:wonderland", result.Sender)
	require.Equal(t, "!myroom:test", result.RoomID)
}

func TestTokenInfoUnknownToken(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokeninfo?token=tok-"+uuid.NewString(), nil, "")
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	body := testutil.DecodeError(t, w)
	require.Equal(t, "M_UNAUTHORIZED", body.ErrCode)
	require.Equal(t, "Invite not found", body.Error)
}

func TestTokenInfoMissingToken(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokeninfo", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	body := testutil.DecodeError(t, w)
	require.Equal(t, "M_MISSING_PARAM", body.ErrCode)
	require.Equal(t, "token parameter missing", body.Error)
}

func TestTokensByAddress(t *testing.T) {
	env := testutil.NewEnv(t)

	address := uuid.NewString() + "@example.com"
	first := seedInvite(t, env, models.MediumEmail, address)
	second := seedInvite(t, env, models.MediumEmail, address)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokensbyaddress?address="+address, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result []struct {
		Sender string `json:"sender"`
		RoomID string `json:"room_id"`
		Token  string `json:"token"`
	}
	testutil.DecodeInto(t, w, &result)
	require.Len(t, result, 2)
	require.Equal(t, first, result[0].Token)
	require.Equal(t, second, result[1].Token)
	require.Equal(t, "@alice:wonderland", result[0].Sender)
}

func TestTokensByAddressDefaultsToEmail(t *testing.T) {
	env := testutil.NewEnv(t)

	// Same address string under both mediums; only the email one matches
	// when no medium parameter is given.
	address := uuid.NewString()
	emailToken := seedInvite(t, env, models.MediumEmail, address)
	seedInvite(t, env, models.MediumMSISDN, address)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokensbyaddress?address="+address, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result []struct {
		Token string `json:"token"`
	}
	testutil.DecodeInto(t, w, &result)
	require.Len(t, result, 1)
	require.Equal(t, emailToken, result[0].Token)
}

func TestTokensByAddressEmpty(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet,
		"/_matrix/identity/v2/tokensbyaddress?address="+uuid.NewString()+"@example.com", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// An empty array, not null and not an error.
	require.Equal(t, "[]", w.Body.String())
}

func TestTokensByAddressMissingAddress(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokensbyaddress", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	body := testutil.DecodeError(t, w)
	require.Equal(t, "M_MISSING_PARAM", body.ErrCode)
	require.Equal(t, "address parameter missing", body.Error)
}
