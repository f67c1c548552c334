package services

import (
	"context"
	"errors"

	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/signing"
	"github.com/perchard/trustbind/pkg/metrics"
)

// BindService turns a proven (medium, address, mxid) association and the
// pending invites for that address into a signed bind result. Signing uses
// the process-wide key handed in at construction; a missing key is a
// configuration failure caught at startup, never at request time.
type BindService struct {
	invites    *InviteTokenService
	key        *signing.Key
	serverName string
}

// NewBindService constructs a BindService.
func NewBindService(invites *InviteTokenService, key *signing.Key, serverName string) (*BindService, error) {
	if invites == nil {
		return nil, errors.New("bind service: invite token service is required")
	}
	if key == nil {
		return nil, errors.New("bind service: signing key is required")
	}
	if serverName == "" {
		return nil, errors.New("bind service: server name is required")
	}

	return &BindService{
		invites:    invites,
		key:        key,
		serverName: serverName,
	}, nil
}

// Bind builds the signed result for an mxid taking over a proven 3PID. The
// top-level signature covers exactly {address, medium, mxid}; each invite
// additionally carries a signed {mxid, token} substructure a homeserver can
// present to the inviting room. Invites are read non-destructively and stay
// queryable afterwards.
func (s *BindService) Bind(ctx context.Context, medium, address, mxid string) (map[string]any, error) {
	invites, err := s.invites.GetTokensForAddress(ctx, medium, address)
	if err != nil {
		return nil, err
	}

	result, err := signing.SignJSON(map[string]any{
		"medium":  medium,
		"address": address,
		"mxid":    mxid,
	}, s.serverName, s.key)
	if err != nil {
		return nil, err
	}

	signedInvites := make([]map[string]any, 0, len(invites))
	for i := range invites {
		signedInvite, err := s.signInvite(&invites[i], mxid)
		if err != nil {
			return nil, err
		}
		signedInvites = append(signedInvites, signedInvite)
	}
	result["invites"] = signedInvites

	metrics.BindsSigned.WithLabelValues(medium).Inc()
	return result, nil
}

func (s *BindService) signInvite(invite *models.InviteToken, mxid string) (map[string]any, error) {
	signed, err := signing.SignJSON(map[string]any{
		"mxid":  mxid,
		"token": invite.Token,
	}, s.serverName, s.key)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"medium":  invite.Medium,
		"address": invite.Address,
		"mxid":    mxid,
		"room_id": invite.RoomID,
		"sender":  invite.Sender,
		"token":   invite.Token,
		"signed":  signed,
	}
	if invite.SpaceID != nil {
		out["space_id"] = *invite.SpaceID
	}
	if invite.RoomName != nil {
		out["room_name"] = *invite.RoomName
	}
	if invite.SpaceName != nil {
		out["space_name"] = *invite.SpaceName
	}
	return out, nil
}
