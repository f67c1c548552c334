package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/pkg/logger"
	"github.com/perchard/trustbind/pkg/mail"
	"github.com/perchard/trustbind/pkg/metrics"
)

// InviteTemplateID names the template rendered for email invite
// notifications. The identifier is shared with other implementations of the
// protocol, so it is part of the observable contract.
const InviteTemplateID = "matrix-org/invite_template.eml.j2"

const defaultInviteSubject = "You have been invited to join a room"

// InviteNotifier sends the "you have a pending invite" notification after an
// invite is stored. Delivery failures never undo the already-persisted
// invite; the caller decides whether to surface them.
type InviteNotifier struct {
	mailer    mail.Mailer
	templates *mail.TemplateStore
	from      string
}

// NewInviteNotifier constructs an InviteNotifier. templates may carry a
// registered in-memory default for InviteTemplateID.
func NewInviteNotifier(mailer mail.Mailer, templates *mail.TemplateStore, from string) (*InviteNotifier, error) {
	if templates == nil {
		return nil, errors.New("invite notifier: template store is required")
	}

	return &InviteNotifier{
		mailer:    mailer,
		templates: templates,
		from:      from,
	}, nil
}

// Substitutions builds the template context for an invite. Exposed so tests
// can assert exactly what reaches the template.
func (n *InviteNotifier) Substitutions(invite *models.InviteToken) map[string]string {
	subs := map[string]string{
		"medium":  invite.Medium,
		"address": invite.Address,
		"room_id": invite.RoomID,
		"sender":  invite.Sender,
		"token":   invite.Token,
	}
	if invite.RoomName != nil {
		subs["room_name"] = *invite.RoomName
	}
	if invite.SpaceID != nil {
		subs["space_id"] = *invite.SpaceID
	}
	if invite.SpaceName != nil {
		subs["space_name"] = *invite.SpaceName
	}
	return subs
}

// Notify renders the invite template and emails it to the invited address.
// Only email invites produce a notification; msisdn invites are stored
// silently.
func (n *InviteNotifier) Notify(ctx context.Context, invite *models.InviteToken) error {
	if invite.Medium != models.MediumEmail {
		return nil
	}
	if n.mailer == nil {
		metrics.InviteEmails.WithLabelValues("skipped").Inc()
		return nil
	}

	body, err := n.templates.Render(InviteTemplateID, n.Substitutions(invite))
	if err != nil {
		metrics.InviteEmails.WithLabelValues("failed").Inc()
		return fmt.Errorf("invite notifier: render: %w", err)
	}

	msg := mail.Message{
		From:    n.from,
		To:      []string{invite.Address},
		Subject: inviteSubject(invite),
		Body:    body,
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			logger.WithModule("notifier").Debug("smtp disabled, invite email skipped",
				zap.String("room_id", invite.RoomID))
			metrics.InviteEmails.WithLabelValues("skipped").Inc()
			return nil
		}
		metrics.InviteEmails.WithLabelValues("failed").Inc()
		return fmt.Errorf("invite notifier: send: %w", err)
	}

	metrics.InviteEmails.WithLabelValues("sent").Inc()
	return nil
}

func inviteSubject(invite *models.InviteToken) string {
	if invite.RoomName != nil && strings.TrimSpace(*invite.RoomName) != "" {
		return fmt.Sprintf("You have been invited to join %s", *invite.RoomName)
	}
	return defaultInviteSubject
}

// DefaultInviteTemplate is the built-in fallback used when no template file
// is deployed. Operators override it by shipping the same identifier under
// the configured template root.
const DefaultInviteTemplate = `Hello,

{{.sender}} has invited you to join {{if .room_name}}the room "{{.room_name}}"{{else}}a room{{end}}{{if .space_name}} in the space "{{.space_name}}"{{end}}.

Room: {{.room_id}}
{{if .space_id}}Space: {{.space_id}}
{{end}}
If you were not expecting this invitation, you can safely ignore this email.
`
