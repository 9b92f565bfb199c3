package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/pkg/logger"
)

// Mailer sends a confirmation email to registrants who supplied an
// address. Like every notifier it is best-effort only.
type Mailer struct {
	client    *mailersend.Mailersend
	from      mailersend.From
	eventName string
}

func NewMailer(apiKey, fromName, fromEmail, eventName string) *Mailer {
	return &Mailer{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
		eventName: eventName,
	}
}

func (m *Mailer) RegistrationCreated(ctx context.Context, reg domain.Registration) {
	if reg.Email == nil || *reg.Email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("Your registration for %s", m.eventName)
	text := fmt.Sprintf("Dear %s, your registration for %s is confirmed.", reg.FullName, m.eventName)
	html := fmt.Sprintf(`
		<h2>Registration Confirmed</h2>
		<p>Dear %s,</p>
		<p>Your registration for <strong>%s</strong> is confirmed.</p>
		<p>Church: %s<br>Contact: %s</p>
	`, reg.FullName, m.eventName, reg.Church, reg.ContactNumber)

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: reg.FullName, Email: *reg.Email}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	if _, err := m.client.Email.Send(ctx, msg); err != nil {
		logger.WarnContext(ctx, "Confirmation email delivery failed", "registration_id", reg.ID, "error", err)
	}
}
