package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perchard/trustbind/internal/services"
	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/response"
)

// BindHandler serves the authenticated 3pid/bind endpoint.
type BindHandler struct {
	sessions *services.ValidationSessionService
	binder   *services.BindService
}

// NewBindHandler constructs a BindHandler.
func NewBindHandler(sessions *services.ValidationSessionService, binder *services.BindService) *BindHandler {
	return &BindHandler{
		sessions: sessions,
		binder:   binder,
	}
}

type bindRequest struct {
	Sid          string `json:"sid" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	Mxid         string `json:"mxid" validate:"required"`
}

// POST /_matrix/identity/v2/3pid/bind
func (h *BindHandler) Bind(c *gin.Context) {
	var req bindRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)

	session, err := h.sessions.GetValidatedSession(ctx, req.Sid, req.ClientSecret)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			response.Error(c, appErrors.ErrNoValidSession)
		case errors.Is(err, services.ErrSessionNotValidated):
			response.Error(c, appErrors.ErrSessionNotValidated)
		case errors.Is(err, services.ErrSessionExpired):
			response.Error(c, appErrors.ErrSessionExpired)
		default:
			response.Error(c, appErrors.FromError(err))
		}
		return
	}

	result, err := h.binder.Bind(ctx, session.Medium, session.Address, req.Mxid)
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	response.JSON(c, http.StatusOK, result)
}
