// Package alipay implements the easepay.Signer capability for Alipay:
// RSA-SHA256 signatures over the raw contents, verified against the tenant's
// configured Alipay public certificate.
package alipay

import (
	"sort"
	"strings"

	"github.com/easepay-go/easepay"
)

// Tenant configuration fields read by this package.
const (
	KeyPrivateKey = "private_key"
	KeyPublicCert = "alipay_public_cert"
)

// Signer signs and verifies Alipay payloads for the tenants held by an
// injected ConfigStore.
type Signer struct {
	config easepay.ConfigStore
}

// NewSigner creates an Alipay signer reading credentials from config.
func NewSigner(config easepay.ConfigStore) (*Signer, error) {
	if config == nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "nil config store", easepay.ErrInvalidParameter)
	}
	return &Signer{config: config}, nil
}

// Provider implements easepay.Signer.
func (s *Signer) Provider() easepay.Provider {
	return easepay.ProviderAlipay
}

// Sign implements easepay.Signer.
func (s *Signer) Sign(tenant string, contents []byte) (string, error) {
	cfg := easepay.GetProviderConfig(s.config, easepay.ProviderAlipay, tenant)
	material := easepay.ConfigString(cfg, KeyPrivateKey)
	if material == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no alipay private key", easepay.ErrMissingPrivateKey).
			WithDetails("field", KeyPrivateKey).
			WithDetails("tenant", tenant)
	}
	key, err := easepay.LoadPrivateKey(material)
	if err != nil {
		return "", err
	}
	return easepay.SignSHA256(key, contents)
}

// Verify implements easepay.Signer.
func (s *Signer) Verify(tenant string, contents []byte, signature string) error {
	cfg := easepay.GetProviderConfig(s.config, easepay.ProviderAlipay, tenant)
	material := easepay.ConfigString(cfg, KeyPublicCert)
	if material == "" {
		return easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no alipay public certificate", easepay.ErrMissingPublicCert).
			WithDetails("field", KeyPublicCert).
			WithDetails("tenant", tenant)
	}
	pub, err := easepay.LoadPublicKey(material)
	if err != nil {
		return err
	}
	return easepay.VerifySHA256(pub, contents, signature)
}

// NotificationContent builds the string-to-sign for an Alipay async
// notification: parameters sorted ascending by key, the sign and sign_type
// fields and empty values dropped, the rest joined as k=v with "&".
func NotificationContent(form map[string]string) string {
	keys := make([]string, 0, len(form))
	for k, v := range form {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+form[k])
	}
	return strings.Join(pairs, "&")
}

// VerifyNotification verifies an Alipay async notification's signature over
// its form parameters.
func (s *Signer) VerifyNotification(tenant string, form map[string]string) error {
	sign, ok := form["sign"]
	if !ok || sign == "" {
		return easepay.NewProviderError(easepay.ErrCodeIntegrity, "notification has no signature", easepay.ErrMissingSignatureHeader)
	}
	return s.Verify(tenant, []byte(NotificationContent(form)), sign)
}
