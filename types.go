package easepay

import "context"

// Params is the plain key/value payload assembled per API method by the outer
// request pipeline and forwarded through the trust layer for signing.
type Params map[string]any

// Resource is an encrypted webhook resource as delivered by Wechat Pay:
// base64 ciphertext with a trailing authentication tag, a nonce and the
// associated data that was authenticated alongside the ciphertext.
type Resource struct {
	// Algorithm is the AEAD algorithm tag, normally "AEAD_AES_256_GCM".
	Algorithm string `json:"algorithm"`

	// Ciphertext is the base64-encoded ciphertext with the 16-byte
	// authentication tag appended.
	Ciphertext string `json:"ciphertext"`

	// AssociatedData is authenticated but not encrypted. The literal
	// "certificate" marks a PEM certificate payload; anything else marks a
	// structured JSON payload.
	AssociatedData string `json:"associated_data"`

	// Nonce is the GCM nonce.
	Nonce string `json:"nonce"`

	// OriginalType is the resource type hint carried by some notifications,
	// e.g. "refund" or "transaction".
	OriginalType string `json:"original_type,omitempty"`
}

// CertificateEntry is one provider-published public certificate held by the
// certificate store.
type CertificateEntry struct {
	Provider Provider
	Tenant   string
	Serial   string
	PEM      string
}

// ConfigStore is the injected key/value configuration capability. Keys are
// dotted paths: "<provider>.<tenant>" addresses a tenant's credential map and
// "<provider>.<tenant>.<field>" one field inside it. The trust layer reads
// credentials through Get and writes only the certificate-serial map through
// Set during rotation.
type ConfigStore interface {
	// Get returns the map stored under key, or an empty map when absent.
	Get(key string) map[string]any

	// Set stores value under key, creating intermediate maps as needed.
	Set(key string, value any)
}

// Executor is the outbound request capability supplied by the host system.
// The trust layer uses it only to fetch provider certificate listings during
// rotation; transport policy (timeouts, retries) belongs to the implementation.
type Executor interface {
	Execute(ctx context.Context, provider Provider, method string, params Params) (map[string]any, error)
}
