// Package chi provides Chi-compatible middleware for payment webhook
// verification. Chi middleware is plain func(http.Handler) http.Handler, so
// this package re-exports the stdlib middleware with a router helper.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpease "github.com/easepay-go/easepay/http"
)

// NewWebhookMiddleware creates webhook verification middleware for Chi.
// The verified payload is stored in the request context under
// httpease.WebhookContextKey.
//
// Example usage:
//
//	r := chi.NewRouter()
//	r.Route("/webhooks", func(r chi.Router) {
//	    r.Use(NewWebhookMiddleware(cfg))
//	    r.Post("/wechat", handler)
//	})
func NewWebhookMiddleware(cfg *httpease.WebhookConfig) func(http.Handler) http.Handler {
	return httpease.NewWebhookMiddleware(cfg)
}

// Mount registers a webhook route on a Chi router with the verification
// middleware applied.
func Mount(r chi.Router, pattern string, cfg *httpease.WebhookConfig, handler http.HandlerFunc) {
	r.With(NewWebhookMiddleware(cfg)).Post(pattern, handler)
}
