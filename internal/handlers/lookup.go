package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/services"
	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/response"
)

// LookupHandler serves the public, read-only invite lookup endpoints.
type LookupHandler struct {
	invites *services.InviteTokenService
}

// NewLookupHandler constructs a LookupHandler.
func NewLookupHandler(invites *services.InviteTokenService) *LookupHandler {
	return &LookupHandler{invites: invites}
}

type tokenInfoResponse struct {
	Medium  string `json:"medium"`
	Address string `json:"address"`
	Sender  string `json:"sender"`
	RoomID  string `json:"room_id"`
}

// GET /_matrix/identity/v2/tokeninfo?token=...
func (h *LookupHandler) TokenInfo(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.ErrMissingParam.WithMessage("token parameter missing"))
		return
	}

	invite, err := h.invites.GetByToken(requestContext(c), token)
	if err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			// M_UNAUTHORIZED rather than not-found: the response must not
			// reveal whether a token was ever issued.
			response.Error(c, appErrors.ErrTokenUnknown)
			return
		}
		response.Error(c, appErrors.FromError(err))
		return
	}

	response.JSON(c, http.StatusOK, tokenInfoResponse{
		Medium:  invite.Medium,
		Address: invite.Address,
		Sender:  invite.Sender,
		RoomID:  invite.RoomID,
	})
}

type tokenSummary struct {
	Sender string `json:"sender"`
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

// GET /_matrix/identity/v2/tokensbyaddress?address=...&medium=...
func (h *LookupHandler) TokensByAddress(c *gin.Context) {
	address := c.Query("address")
	if strings.TrimSpace(address) == "" {
		response.Error(c, appErrors.ErrMissingParam.WithMessage("address parameter missing"))
		return
	}

	medium := strings.TrimSpace(c.Query("medium"))
	if medium == "" {
		medium = models.MediumEmail
	}

	invites, err := h.invites.GetTokensForAddress(requestContext(c), medium, address)
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	// An address with no pending invites answers with an empty array.
	summaries := make([]tokenSummary, 0, len(invites))
	for _, invite := range invites {
		summaries = append(summaries, tokenSummary{
			Sender: invite.Sender,
			RoomID: invite.RoomID,
			Token:  invite.Token,
		})
	}

	response.JSON(c, http.StatusOK, summaries)
}
