package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/rental-server/utils"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	from     string
	sandbox  bool
}

func NewSendGridMailer(apiKey, from string, sandbox bool) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: "Room Rental",
		from:     from,
		sandbox:  sandbox,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("send email %q: empty recipient", subject)
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)
	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send email via sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes emails to the log. Used when SendGrid is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	utils.Logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("email (not sent, mailer disabled): " + body)
	return nil
}
