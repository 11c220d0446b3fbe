package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/todopilot/pilot/pkg/mailx"
)

// Mailer renders the transactional emails and hands them to a Sender. Links
// point at the front-end under BaseURL.
type Mailer struct {
	Sender  mailx.Sender
	BaseURL string
}

func (m *Mailer) base() string {
	return strings.TrimRight(m.BaseURL, "/")
}

// VerificationLink is the front-end page that confirms an email address.
func (m *Mailer) VerificationLink(token string) string {
	return m.base() + "/verify/" + url.PathEscape(token)
}

// InvitationLink is the front-end page that joins a team.
func (m *Mailer) InvitationLink(token string) string {
	return m.base() + "/verify?token=" + url.QueryEscape(token)
}

func (m *Mailer) SendVerification(ctx context.Context, to, username, token string) error {
	link := m.VerificationLink(token)
	return m.Sender.Send(ctx, mailx.Message{
		To:      to,
		Subject: "Verify Your Email",
		Text: fmt.Sprintf(
			"Hi %s,\n\nClick the link below to verify your email:\n\n%s\n\nThe link expires, you can request a new one from the login page.\n",
			username, link,
		),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>Click the link below to verify your email:</p><p><a href="%s">Verify email</a></p>`,
			html.EscapeString(username), link,
		),
	})
}

func (m *Mailer) SendInvitation(ctx context.Context, to, teamName, inviter, token string) error {
	link := m.InvitationLink(token)
	return m.Sender.Send(ctx, mailx.Message{
		To:      to,
		Subject: fmt.Sprintf("You're invited to join %s", teamName),
		Text: fmt.Sprintf(
			"%s invited you to the team %q on TODO PILOT.\n\nSign in and open this link to join:\n\n%s\n",
			inviter, teamName, link,
		),
		HTML: fmt.Sprintf(
			`<p>%s invited you to the team <strong>%s</strong> on TODO PILOT.</p><p><a href="%s">Join %s</a></p>`,
			html.EscapeString(inviter), html.EscapeString(teamName), link, html.EscapeString(teamName),
		),
	})
}
