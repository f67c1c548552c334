package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/perchard/trustbind/pkg/errors"
)

func TestValidateAddressEmail(t *testing.T) {
	normalised, err := ValidateAddress("email", "john@example.com")
	require.NoError(t, err)
	require.Equal(t, "john@example.com", normalised)
}

func TestValidateAddressEmailLowercases(t *testing.T) {
	normalised, err := ValidateAddress("email", "John.Smith@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "john.smith@example.com", normalised)
}

func TestValidateAddressEmailRejectsGarbage(t *testing.T) {
	cases := []string{
		"not@an@email@address",
		"Naughty Nigel <perfectly.valid@mail.address>",
		"",
		"no-at-sign",
		"trailing@",
	}

	for _, address := range cases {
		_, err := ValidateAddress("email", address)
		require.Error(t, err, "address %q should be rejected", address)

		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "M_INVALID_EMAIL", appErr.ErrCode)
	}
}

func TestValidateAddressMSISDN(t *testing.T) {
	normalised, err := ValidateAddress("msisdn", "447700900111")
	require.NoError(t, err)
	require.Equal(t, "447700900111", normalised)

	for _, address := range []string{"+447700900111", "12", "1234567890123456", "44 7700", ""} {
		_, err := ValidateAddress("msisdn", address)
		require.Error(t, err, "msisdn %q should be rejected", address)

		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "M_INVALID_ADDRESS", appErr.ErrCode)
	}
}

func TestValidateAddressUnsupportedMedium(t *testing.T) {
	_, err := ValidateAddress("carrier_pigeon", "coop 4")
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "M_INVALID_ADDRESS", appErr.ErrCode)
}

func TestRedactAddress(t *testing.T) {
	require.Equal(t, "joh...@exa...", RedactAddress("email", "john.smith@example.com"))
	require.Equal(t, "b...@s...", RedactAddress("email", "bob@sh.ht"))
	require.Equal(t, "447...", RedactAddress("msisdn", "447700900111"))
	require.Equal(t, "1...", RedactAddress("msisdn", "123"))
}
