package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/perchard/trustbind/internal/signing"
	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/response"
)

// PubkeyHandler publishes the versioned signing key so remote servers can
// verify bind signatures.
type PubkeyHandler struct {
	key *signing.Key
}

// NewPubkeyHandler constructs a PubkeyHandler.
func NewPubkeyHandler(key *signing.Key) *PubkeyHandler {
	return &PubkeyHandler{key: key}
}

// GET /_matrix/identity/v2/pubkey/:keyID
func (h *PubkeyHandler) GetKey(c *gin.Context) {
	keyID := c.Param("keyID")
	if keyID != h.key.ID() {
		response.Error(c, appErrors.ErrNotFound.WithMessage("The key "+keyID+" is not known"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"public_key": h.key.PublicBase64()})
}

// GET /_matrix/identity/v2/pubkey/isvalid?public_key=...
func (h *PubkeyHandler) IsValid(c *gin.Context) {
	pub := strings.TrimSpace(c.Query("public_key"))
	if pub == "" {
		response.Error(c, appErrors.ErrMissingParam.WithMessage("public_key parameter missing"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"valid": pub == h.key.PublicBase64()})
}
