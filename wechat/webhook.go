package wechat

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/certs"
)

// Webhook signature headers.
const (
	HeaderSerial    = "Wechatpay-Serial"
	HeaderTimestamp = "Wechatpay-Timestamp"
	HeaderNonce     = "Wechatpay-Nonce"
	HeaderSignature = "Wechatpay-Signature"
)

// WebhookVerifier checks inbound webhook signatures against the rotating
// platform certificates. An unknown serial triggers one rotation through the
// orchestrator before the verification is declared failed.
type WebhookVerifier struct {
	certs      *certs.Rotator
	skipVerify bool
	logger     *slog.Logger
}

// WebhookOption configures a WebhookVerifier.
type WebhookOption func(*WebhookVerifier)

// WithInsecureSkipVerify disables signature verification entirely. This is a
// trust shortcut for sandbox delivery where the provider simulator does not
// sign; it must never be enabled against production traffic.
func WithInsecureSkipVerify() WebhookOption {
	return func(v *WebhookVerifier) {
		v.skipVerify = true
	}
}

// WithWebhookLogger sets the verifier logger. Defaults to slog.Default().
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(v *WebhookVerifier) {
		v.logger = logger
	}
}

// NewWebhookVerifier creates a webhook verifier over a rotation orchestrator.
func NewWebhookVerifier(rotator *certs.Rotator, opts ...WebhookOption) *WebhookVerifier {
	v := &WebhookVerifier{certs: rotator, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signature headers of a webhook delivery against the body.
// The string-to-sign is "timestamp\nnonce\nbody\n". A missing signature
// header is an integrity error; missing serial, timestamp or nonce headers
// are parameter errors naming the header.
func (v *WebhookVerifier) Verify(ctx context.Context, tenant string, header http.Header, body []byte) error {
	if v.skipVerify {
		v.logger.Warn("webhook signature verification skipped", "tenant", tenant)
		return nil
	}

	signature := header.Get(HeaderSignature)
	if signature == "" {
		return easepay.NewProviderError(easepay.ErrCodeIntegrity, "webhook has no signature header", easepay.ErrMissingSignatureHeader).
			WithDetails("header", HeaderSignature)
	}
	serial := header.Get(HeaderSerial)
	timestamp := header.Get(HeaderTimestamp)
	nonce := header.Get(HeaderNonce)
	for name, value := range map[string]string{
		HeaderSerial:    serial,
		HeaderTimestamp: timestamp,
		HeaderNonce:     nonce,
	} {
		if value == "" {
			return easepay.NewProviderError(easepay.ErrCodeParameter, "webhook is missing a required header", easepay.ErrInvalidParameter).
				WithDetails("header", name)
		}
	}

	certPEM, err := v.certs.Certificate(ctx, tenant, serial)
	if err != nil {
		return err
	}

	message := timestamp + "\n" + nonce + "\n" + string(body) + "\n"
	return VerifySerial(certPEM, []byte(message), signature)
}
