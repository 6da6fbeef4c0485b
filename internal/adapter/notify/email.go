package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// sendMail is replaced in tests.
var sendMail = smtp.SendMail

// EmailNotifier sends the code by e-mail over SMTP.
type EmailNotifier struct {
	addr   string
	auth   smtp.Auth
	sender string
	log    zerolog.Logger
}

// NewEmailNotifier creates an EmailNotifier. PLAIN auth is used when a username is configured.
func NewEmailNotifier(cfg config.SMTPConfig, log zerolog.Logger) *EmailNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailNotifier{
		addr:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth:   auth,
		sender: cfg.Sender,
		log:    log,
	}
}

func (n *EmailNotifier) Deliver(ctx context.Context, d domain.OtpDelivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(n.sender, d)
	if err := sendMail(n.addr, n.auth, n.sender, []string{d.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}

	n.log.Info().
		Str("account_id", d.AccountID.String()).
		Str("purpose", string(d.Purpose)).
		Msg("otp mailed")
	return nil
}

func buildMessage(sender string, d domain.OtpDelivery) string {
	subject := "Your login code"
	if d.Purpose == domain.OtpPurposeDecrypt {
		subject = "Your transaction decryption code"
	}
	body := fmt.Sprintf("Your one-time code is %s.\r\nIt expires at %s.\r\n",
		d.Code, d.ExpiresAt.UTC().Format(time.RFC1123))

	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		sender, d.Email, subject, body,
	)
}
