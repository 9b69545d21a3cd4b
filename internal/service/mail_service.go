package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	ErrMailNotConfigured = errors.New("email configuration not set")
	ErrNoSubscribers     = errors.New("no subscribers found")
	ErrMailBodyEmpty     = errors.New("email body is empty")
)

// MailSender delivers a composed message to its recipients.
type MailSender interface {
	Send(ctx context.Context, settings MailSettings, msg *mail.Msg) error
}

// SMTPSender sends through an SMTP server using STARTTLS or implicit TLS.
type SMTPSender struct {
	Timeout time.Duration
}

// Send dials the server, authenticates with PLAIN and submits the message.
func (s SMTPSender) Send(ctx context.Context, settings MailSettings, msg *mail.Msg) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []mail.Option{
		mail.WithTimeout(timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(settings.Username),
		mail.WithPassword(settings.Password),
	}
	switch {
	case settings.UseSSL:
		opts = append(opts, mail.WithSSL())
	case settings.UseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	opts = append(opts, mail.WithPort(settings.Port))

	client, err := mail.NewClient(settings.Server, opts...)
	if err != nil {
		return fmt.Errorf("configure smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send via %s:%d: %w", settings.Server, settings.Port, err)
	}
	return nil
}

// BroadcastResult summarises a newsletter send.
type BroadcastResult struct {
	Recipients int
	Message    string
}

// MailService sends announcements to every subscriber, recipients in BCC.
type MailService struct {
	settings    *SystemSettingService
	subscribers *SubscriberService
	sender      MailSender
}

// NewMailService creates a MailService instance.
func NewMailService(settings *SystemSettingService, subscribers *SubscriberService, sender MailSender) *MailService {
	if sender == nil {
		sender = SMTPSender{}
	}
	return &MailService{settings: settings, subscribers: subscribers, sender: sender}
}

// Broadcast sends subject/body as plain text plus an HTML alternative where
// newlines become <br>.
func (s *MailService) Broadcast(ctx context.Context, subject, body string) (BroadcastResult, error) {
	if strings.TrimSpace(body) == "" {
		return BroadcastResult{}, ErrMailBodyEmpty
	}

	settings, err := s.settings.EffectiveMailSettings()
	if err != nil {
		return BroadcastResult{}, err
	}
	if !settings.Configured() {
		return BroadcastResult{}, ErrMailNotConfigured
	}

	recipients, err := s.subscribers.Emails()
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(recipients) == 0 {
		return BroadcastResult{}, ErrNoSubscribers
	}

	msg, err := buildBroadcastMessage(settings.Sender(), subject, body, recipients)
	if err != nil {
		return BroadcastResult{}, err
	}

	if err := s.sender.Send(ctx, settings, msg); err != nil {
		return BroadcastResult{}, fmt.Errorf("send broadcast: %w", err)
	}

	return BroadcastResult{
		Recipients: len(recipients),
		Message:    fmt.Sprintf("Email sent to %d subscribers", len(recipients)),
	}, nil
}

// buildBroadcastMessage composes a multipart/alternative message with every
// recipient in BCC. Parts are quoted-printable so long paragraphs stay within
// the SMTP line limit.
func buildBroadcastMessage(from, subject, body string, bcc []string) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithEncoding(mail.EncodingQP))
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.Bcc(bcc...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.AddAlternativeString(mail.TypeTextHTML, strings.ReplaceAll(body, "\n", "<br>"))
	return msg, nil
}
