// Package encoding decodes and encodes the wire envelopes of the webhook and
// certificate-listing flows: the Wechat Pay notification body, the webhook
// acknowledgement, and the encrypted certificate list.
package encoding

import (
	"encoding/json"

	"github.com/easepay-go/easepay"
)

// Notification is a Wechat Pay v3 webhook body. The interesting part is the
// encrypted Resource; everything else is routing metadata.
type Notification struct {
	ID           string           `json:"id"`
	CreateTime   string           `json:"create_time"`
	EventType    string           `json:"event_type"`
	ResourceType string           `json:"resource_type"`
	Summary      string           `json:"summary"`
	Resource     easepay.Resource `json:"resource"`
}

// DecodeNotification parses a webhook body. A body that does not decode as a
// notification, or that carries no ciphertext, fails the structural check the
// provider's deliveries are expected to pass.
func DecodeNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "webhook body is not a notification", err).
			WithDetails("body", string(body))
	}
	if n.Resource.Ciphertext == "" {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "notification carries no encrypted resource", easepay.ErrMalformedResource).
			WithDetails("body", string(body))
	}
	return &n, nil
}

// Ack is the webhook acknowledgement body the provider expects.
type Ack struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EncodeAck serializes a webhook acknowledgement.
func EncodeAck(code, message string) []byte {
	out, _ := json.Marshal(Ack{Code: code, Message: message})
	return out
}

// EncryptedCertificate is one entry of the provider's certificate listing.
type EncryptedCertificate struct {
	SerialNo           string           `json:"serial_no"`
	EffectiveTime      string           `json:"effective_time"`
	ExpireTime         string           `json:"expire_time"`
	EncryptCertificate easepay.Resource `json:"encrypt_certificate"`
}

// DecodeCertificateList extracts the encrypted certificate entries from a
// decoded certificate-listing response.
func DecodeCertificateList(resp map[string]any) ([]EncryptedCertificate, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "certificate listing does not serialize", err)
	}
	var listing struct {
		Data []EncryptedCertificate `json:"data"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "certificate listing has unexpected shape", err)
	}
	if len(listing.Data) == 0 {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "certificate listing has no data", easepay.ErrMalformedResource)
	}
	return listing.Data, nil
}
