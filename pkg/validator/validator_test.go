package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Medium  string `json:"medium" validate:"required"`
	Address string `json:"address" validate:"required"`
	Extra   string `json:"extra"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&samplePayload{Medium: "email", Address: "a@b.c"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&samplePayload{})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, []string{"medium", "address"}, ve.Fields())

	require.Contains(t, ve.Error(), "medium failed on required")
}
