package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perchard/trustbind/internal/handlers/testutil"
)

const zeroSeedPublic = "O2onvM62pC1io6jQKm8Nc2UyFXcd4kOmOsBIoYtZ2ik"

func TestGetPubkey(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/pubkey/ed25519:0", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		PublicKey string `json:"public_key"`
	}
	testutil.DecodeInto(t, w, &result)
	require.Equal(t, zeroSeedPublic, result.PublicKey)
}

func TestGetPubkeyUnknownID(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/pubkey/ed25519:missing", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	require.Equal(t, "M_NOT_FOUND", testutil.DecodeError(t, w).ErrCode)
}

func TestPubkeyIsValid(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet,
		"/_matrix/identity/v2/pubkey/isvalid?public_key="+zeroSeedPublic, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Valid bool `json:"valid"`
	}
	testutil.DecodeInto(t, w, &result)
	require.True(t, result.Valid)
}

func TestPubkeyIsValidUnknownKey(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet,
		"/_matrix/identity/v2/pubkey/isvalid?public_key=notakey", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Valid bool `json:"valid"`
	}
	testutil.DecodeInto(t, w, &result)
	require.False(t, result.Valid)
}

func TestPubkeyIsValidMissingParam(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/pubkey/isvalid", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Equal(t, "M_MISSING_PARAM", testutil.DecodeError(t, w).ErrCode)
}

func TestHealth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Status string `json:"status"`
	}
	testutil.DecodeInto(t, w, &result)
	require.Equal(t, "ok", result.Status)
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/tokeninfo", nil, "")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Origin, X-Requested-With, Content-Type, Accept", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestUnknownRoute(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/_matrix/identity/v2/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	require.Equal(t, "M_NOT_FOUND", testutil.DecodeError(t, w).ErrCode)
}
