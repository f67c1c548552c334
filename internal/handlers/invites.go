package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/internal/signing"
	"github.com/perchard/trustbind/internal/validation"
	"github.com/perchard/trustbind/pkg/crypto"
	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/metrics"
	"github.com/perchard/trustbind/pkg/response"
)

// Random bytes per invite token; the base64url form is longer.
const inviteTokenBytes = 96

var errEmailSendFailed = appErrors.New("M_EMAIL_SEND_ERROR", "Failed to send invite notification", http.StatusInternalServerError)

// InviteHandler serves the authenticated store-invite endpoint.
type InviteHandler struct {
	invites    *services.InviteTokenService
	notifier   *services.InviteNotifier
	key        *signing.Key
	serverName string
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(invites *services.InviteTokenService, notifier *services.InviteNotifier, key *signing.Key, serverName string) *InviteHandler {
	return &InviteHandler{
		invites:    invites,
		notifier:   notifier,
		key:        key,
		serverName: serverName,
	}
}

type storeInviteRequest struct {
	Medium    string `json:"medium" validate:"required"`
	Address   string `json:"address" validate:"required"`
	RoomID    string `json:"room_id" validate:"required"`
	Sender    string `json:"sender" validate:"required"`
	SpaceID   string `json:"space_id"`
	RoomName  string `json:"room_name"`
	SpaceName string `json:"space_name"`
	SkipEmail bool   `json:"skip_email"`
}

type publicKeyInfo struct {
	PublicKey      string `json:"public_key"`
	KeyValidityURL string `json:"key_validity_url"`
}

type storeInviteResponse struct {
	Token       string          `json:"token"`
	DisplayName string          `json:"display_name"`
	PublicKeys  []publicKeyInfo `json:"public_keys"`
}

// POST /_matrix/identity/v2/store-invite
func (h *InviteHandler) Create(c *gin.Context) {
	var req storeInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// Validation happens strictly before any side effect: on failure no row
	// is written and no notification goes out.
	address, err := validation.ValidateAddress(req.Medium, req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := crypto.GenerateToken(inviteTokenBytes)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "generate invite token"))
		return
	}

	ctx := requestContext(c)
	invite, err := h.invites.Create(ctx, services.CreateInput{
		Medium:    req.Medium,
		Address:   address,
		RoomID:    req.RoomID,
		Sender:    req.Sender,
		Token:     token,
		SpaceID:   optional(req.SpaceID),
		RoomName:  optional(req.RoomName),
		SpaceName: optional(req.SpaceName),
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateToken) {
			// Token collisions out of a 96-byte random value mean something
			// is wrong with the entropy source; treat as a server fault.
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
			return
		}
		response.Error(c, appErrors.FromError(err))
		return
	}

	metrics.InvitesStored.WithLabelValues(invite.Medium).Inc()

	// The invite is durable from here on: a notification failure must not
	// roll it back.
	if !req.SkipEmail {
		if err := h.notifier.Notify(ctx, invite); err != nil {
			response.Error(c, errEmailSendFailed.WithInternal(err))
			return
		}
	}

	response.JSON(c, http.StatusOK, storeInviteResponse{
		Token:       token,
		DisplayName: validation.RedactAddress(invite.Medium, invite.Address),
		PublicKeys: []publicKeyInfo{
			{
				PublicKey:      h.key.PublicBase64(),
				KeyValidityURL: "https://" + h.serverName + "/_matrix/identity/v2/pubkey/isvalid",
			},
		},
	})
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
