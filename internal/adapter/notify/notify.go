// Package notify delivers one-time passwords to account holders.
package notify

import (
	"fmt"
	"net/http"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// New builds the notifier selected by cfg.Driver.
func New(cfg config.NotifierConfig, signer ports.WebhookSigner, log zerolog.Logger) (ports.Notifier, error) {
	switch cfg.Driver {
	case config.NotifierLog, "":
		return NewLogNotifier(log), nil
	case config.NotifierSMTP:
		return NewEmailNotifier(cfg.SMTP, log), nil
	case config.NotifierWebhook:
		client := &http.Client{Timeout: cfg.Webhook.Timeout}
		return NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Secret, signer, client, log), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Driver)
	}
}
