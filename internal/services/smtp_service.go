package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds outgoing mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPService sends transactional email
type SMTPService struct {
	config SMTPConfig
	send   func(msgs ...*gomail.Message) error
}

// NewSMTPService creates a new SMTP service. It returns nil when no host is
// configured; callers treat a nil service as "email disabled".
func NewSMTPService(config SMTPConfig) *SMTPService {
	if config.Host == "" {
		return nil
	}
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &SMTPService{
		config: config,
		send:   dialer.DialAndSend,
	}
}

var inviteTmpl = template.Must(template.New("invite").Parse(inviteEmailTemplate))

// SendInviteEmail sends a registration link to an invited address
func (s *SMTPService) SendInviteEmail(ctx context.Context, toEmail, inviterName, inviteLink string) error {
	data := InviteEmailData{
		InviterName: inviterName,
		InviteLink:  inviteLink,
	}

	var body bytes.Buffer
	if err := inviteTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute invite email template: %w", err)
	}

	return s.sendEmail(ctx, toEmail, "You're invited to Boone Gifts", body.String())
}

func (s *SMTPService) sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
