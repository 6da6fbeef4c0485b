package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// EventOtpIssued is the webhook event type for code deliveries.
const EventOtpIssued = "OTP_ISSUED"

// Signature headers. HeaderSignature carries "v1=<hex>" computed over the timestamp header and the
// raw body.
const (
	HeaderSignature          = "X-Signature"
	HeaderSignatureTimestamp = "X-Signature-Timestamp"
)

var webhookRetryIntervals = []time.Duration{
	500 * time.Millisecond,
	2 * time.Second,
	5 * time.Second,
}

// WebhookPayload is the JSON body posted to the webhook URL.
type WebhookPayload struct {
	EventType string             `json:"event_type"`
	Data      domain.OtpDelivery `json:"data"`
	Timestamp int64              `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookNotifier posts deliveries to an operator-controlled endpoint (an SMS or push gateway),
// signing each body with the shared secret.
type WebhookNotifier struct {
	url        string
	secret     string
	signer     ports.WebhookSigner
	httpClient HTTPClient
	retries    []time.Duration
	log        zerolog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier.
func NewWebhookNotifier(url, secret string, signer ports.WebhookSigner, httpClient HTTPClient, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		secret:     secret,
		signer:     signer,
		httpClient: httpClient,
		retries:    webhookRetryIntervals,
		log:        log,
	}
}

// Deliver posts the delivery, retrying on transport errors and non-2xx responses until the retry
// schedule or ctx runs out.
func (n *WebhookNotifier) Deliver(ctx context.Context, d domain.OtpDelivery) error {
	ts := time.Now().Unix()
	body, err := json.Marshal(WebhookPayload{
		EventType: EventOtpIssued,
		Data:      d,
		Timestamp: ts,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	signature := n.signer.Sign(n.secret, ts, body)

	var lastErr error
	for attempt := 0; attempt <= len(n.retries); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(n.retries[attempt-1]):
			case <-ctx.Done():
				return fmt.Errorf("webhook delivery abandoned: %w", ctx.Err())
			}
		}

		lastErr = n.post(ctx, body, ts, signature)
		if lastErr == nil {
			n.log.Info().
				Str("account_id", d.AccountID.String()).
				Int("attempt", attempt+1).
				Msg("webhook: otp delivered")
			return nil
		}
		n.log.Warn().Err(lastErr).
			Str("account_id", d.AccountID.String()).
			Int("attempt", attempt+1).
			Msg("webhook: delivery failed")
	}

	return fmt.Errorf("webhook: all retry attempts exhausted: %w", lastErr)
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte, ts int64, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, signature)
	req.Header.Set(HeaderSignatureTimestamp, strconv.FormatInt(ts, 10))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
