// Package backup ships a copy of the persona document after every save.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	// ErrNotConfigured is returned when any SMTP setting is missing. The
	// save it follows still stands.
	ErrNotConfigured = errors.New("SMTP configuration incomplete, backup email not sent")
	// ErrAuth is returned when the SMTP server rejects the credentials.
	ErrAuth = errors.New("SMTP authentication failed (535)")
)

// AuthHint is shown alongside ErrAuth.
const AuthHint = "If you use Gmail, use an app password rather than your normal password: enable 2-step verification and create one at https://myaccount.google.com/apppasswords"

const subjectLayout = "2006-01-02 15:04:05"

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Server    string
	Port      int
	Email     string
	Password  string
	Recipient string
}

// Complete reports whether every setting is present.
func (c SMTPConfig) Complete() bool {
	return c.Server != "" && c.Port > 0 && c.Email != "" && c.Password != "" && c.Recipient != ""
}

// Sender delivers a composed message.
type Sender func(ctx context.Context, cfg SMTPConfig, msg *mail.Msg) error

// EmailNotifier emails the document to a fixed recipient.
type EmailNotifier struct {
	cfg  SMTPConfig
	log  *slog.Logger
	send Sender
	now  func() time.Time
}

// NewEmailNotifier creates a notifier that sends over SMTP with STARTTLS.
func NewEmailNotifier(cfg SMTPConfig, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{cfg: cfg, log: logger, send: sendSMTP, now: time.Now}
}

func (n *EmailNotifier) Name() string { return "email" }

// Notify emails doc. It returns ErrNotConfigured without contacting any
// server when settings are missing.
func (n *EmailNotifier) Notify(ctx context.Context, doc []byte) error {
	if !n.cfg.Complete() {
		n.log.WarnContext(ctx, "SMTP configuration incomplete",
			"server", n.cfg.Server, "port", n.cfg.Port, "email", n.cfg.Email, "recipient", n.cfg.Recipient)
		return ErrNotConfigured
	}

	msg, err := n.Message(doc)
	if err != nil {
		return err
	}

	n.log.InfoContext(ctx, "Sending backup email", "recipient", n.cfg.Recipient, "server", n.cfg.Server, "port", n.cfg.Port)
	if err := n.send(ctx, n.cfg, msg); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %s: %v", ErrAuth, AuthHint, err)
		}
		return fmt.Errorf("send backup email: %w", err)
	}
	n.log.InfoContext(ctx, "Backup email sent", "recipient", n.cfg.Recipient)
	return nil
}

// Message composes the backup email for doc.
func (n *EmailNotifier) Message(doc []byte) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Email); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject("Backup Xeitosa Social AI - " + n.now().Format(subjectLayout))
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, Body(doc))
	return msg, nil
}

// Body renders the plain-text message body.
func Body(doc []byte) string {
	return "Adxunto atoparás a última versión de artist-config.json:\n\n" + strings.TrimRight(string(doc), "\n") + "\n"
}

func sendSMTP(ctx context.Context, cfg SMTPConfig, msg *mail.Msg) error {
	client, err := mail.NewClient(cfg.Server,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Email),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func isAuthError(err error) bool {
	return strings.Contains(err.Error(), "535")
}
