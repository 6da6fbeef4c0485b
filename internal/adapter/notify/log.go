package notify

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogNotifier writes deliveries to the application log. The code itself is only visible at debug
// level, for local development.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Deliver(_ context.Context, d domain.OtpDelivery) error {
	n.log.Info().
		Str("account_id", d.AccountID.String()).
		Str("purpose", string(d.Purpose)).
		Time("expires_at", d.ExpiresAt).
		Msg("otp ready for delivery")

	n.log.Debug().
		Str("email", d.Email).
		Str("purpose", string(d.Purpose)).
		Str("code", d.Code).
		Msg("otp code")
	return nil
}
