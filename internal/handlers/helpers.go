package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/response"
	appValidator "github.com/perchard/trustbind/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. Malformed JSON maps to M_BAD_JSON, missing required parameters to
// M_MISSING_PARAMS; an error response is written and false returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.ErrBadJSON)
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		if ve, ok := err.(appValidator.ValidationErrors); ok {
			response.Error(c, appErrors.ErrMissingParams.WithMessage(
				"Missing parameters: "+strings.Join(ve.Fields(), ", ")))
		} else {
			response.Error(c, appErrors.ErrMissingParams)
		}
		return false
	}

	return true
}

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}
