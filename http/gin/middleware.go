// Package gin provides Gin-compatible middleware for payment webhook
// verification. It is a thin adapter that translates gin.Context to stdlib
// http patterns and delegates verification and decryption to the http
// package.
package gin

import (
	"github.com/gin-gonic/gin"

	httpease "github.com/easepay-go/easepay/http"
	"github.com/easepay-go/easepay/encoding"
)

// PayloadKey is the gin context key under which the verified webhook payload
// is stored.
const PayloadKey = "easepay_webhook"

// NewWebhookMiddleware creates webhook verification middleware for Gin.
//
// The middleware verifies the delivery's signature headers (rotating platform
// certificates on an unknown serial), decrypts the resource, and stores the
// resulting *httpease.WebhookPayload in the Gin context under PayloadKey.
// Rejected deliveries are answered with the provider's {"code":"FAIL"} body
// and the chain is aborted.
//
// Example usage:
//
//	r := gin.Default()
//	r.POST("/webhooks/wechat", NewWebhookMiddleware(cfg), func(c *gin.Context) {
//	    payload := c.MustGet(PayloadKey).(*httpease.WebhookPayload)
//	    c.JSON(200, gin.H{"event": payload.Notification.EventType})
//	})
func NewWebhookMiddleware(cfg *httpease.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := httpease.VerifyWebhookRequest(c.Request.Context(), cfg, c.Request)
		if err != nil {
			status := httpease.WebhookFailureStatus(err)
			c.Data(status, "application/json", encoding.EncodeAck("FAIL", "verification failed"))
			c.Abort()
			return
		}
		c.Set(PayloadKey, payload)
		c.Next()
	}
}
