package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/encoding"
	"github.com/easepay-go/easepay/wechat"
)

type contextKey string

// WebhookContextKey is the request-context key under which the verified,
// decrypted webhook payload is stored for downstream handlers.
const WebhookContextKey contextKey = "easepay_webhook"

// WebhookConfig wires the webhook middleware.
type WebhookConfig struct {
	// Verifier checks the signature headers; rotation-aware.
	Verifier *wechat.WebhookVerifier

	// Config resolves the tenant's AEAD secret for resource decryption.
	Config easepay.ConfigStore

	// Tenant selects the configuration profile; empty means the default
	// tenant.
	Tenant string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// WebhookPayload is what a verified delivery decomposes into.
type WebhookPayload struct {
	// Notification is the decoded envelope.
	Notification *encoding.Notification

	// Plaintext is the decrypted resource bytes.
	Plaintext []byte

	// Data is the structured form of the plaintext, nil for certificate
	// resources.
	Data map[string]any
}

func (c *WebhookConfig) tenant() string {
	if c.Tenant == "" {
		return easepay.DefaultTenant
	}
	return c.Tenant
}

func (c *WebhookConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// VerifyWebhookRequest runs the full inbound pipeline on a webhook delivery:
// signature verification (rotating certificates on an unknown serial),
// envelope decoding and resource decryption.
func VerifyWebhookRequest(ctx context.Context, cfg *WebhookConfig, r *http.Request) (*WebhookPayload, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "cannot read webhook body", err)
	}

	tenant := cfg.tenant()
	if err := cfg.Verifier.Verify(ctx, tenant, r.Header, body); err != nil {
		return nil, err
	}

	notification, err := encoding.DecodeNotification(body)
	if err != nil {
		return nil, err
	}
	plaintext, data, err := wechat.DecryptResource(cfg.Config, tenant, notification.Resource)
	if err != nil {
		return nil, err
	}

	return &WebhookPayload{
		Notification: notification,
		Plaintext:    plaintext,
		Data:         data,
	}, nil
}

// WebhookFailureStatus maps the error taxonomy to the HTTP status returned to
// the provider: parameter errors are the provider's malformed delivery (400),
// integrity errors an unauthenticated one (401), everything else a local
// fault (500). The provider redelivers on any non-2xx.
func WebhookFailureStatus(err error) int {
	switch {
	case easepay.IsParameterError(err):
		return http.StatusBadRequest
	case easepay.IsIntegrityError(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NewWebhookMiddleware wraps a handler with webhook verification and
// decryption. Failed deliveries are answered with the provider's expected
// {"code":"FAIL"} body; verified ones reach the next handler with the
// payload stored under WebhookContextKey.
func NewWebhookMiddleware(cfg *WebhookConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := VerifyWebhookRequest(r.Context(), cfg, r)
			if err != nil {
				cfg.logger().Warn("webhook rejected", "tenant", cfg.tenant(), "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(WebhookFailureStatus(err))
				w.Write(encoding.EncodeAck("FAIL", "verification failed"))
				return
			}

			ctx := context.WithValue(r.Context(), WebhookContextKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
