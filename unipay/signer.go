// Package unipay implements the easepay.Signer capability for China UnionPay.
//
// UnionPay hashes the contents to a lowercase SHA-256 hex digest and then
// signs or verifies that digest with RSA-SHA256. The digest is hashed again
// inside the RSA primitive; this double hash matches the provider's wire
// format and must not be collapsed.
package unipay

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/easepay-go/easepay"
)

// Tenant configuration fields read by this package.
const (
	KeyPrivateKey = "private_key"
	KeyPublicCert = "unipay_public_cert"
)

// Signer signs and verifies UnionPay payloads for the tenants held by an
// injected ConfigStore.
type Signer struct {
	config easepay.ConfigStore
}

// NewSigner creates a UnionPay signer reading credentials from config.
func NewSigner(config easepay.ConfigStore) (*Signer, error) {
	if config == nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "nil config store", easepay.ErrInvalidParameter)
	}
	return &Signer{config: config}, nil
}

// Provider implements easepay.Signer.
func (s *Signer) Provider() easepay.Provider {
	return easepay.ProviderUnipay
}

// digestContents pre-hashes contents to the lowercase hex digest UnionPay
// signs over.
func digestContents(contents []byte) []byte {
	sum := sha256.Sum256(contents)
	return []byte(hex.EncodeToString(sum[:]))
}

// Sign implements easepay.Signer.
func (s *Signer) Sign(tenant string, contents []byte) (string, error) {
	cfg := easepay.GetProviderConfig(s.config, easepay.ProviderUnipay, tenant)
	material := easepay.ConfigString(cfg, KeyPrivateKey)
	if material == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no unipay private key", easepay.ErrMissingPrivateKey).
			WithDetails("field", KeyPrivateKey).
			WithDetails("tenant", tenant)
	}
	key, err := easepay.LoadPrivateKey(material)
	if err != nil {
		return "", err
	}
	return easepay.SignSHA256(key, digestContents(contents))
}

// Verify implements easepay.Signer. The tenant's configured certificate is
// used; responses carrying their own certificate go through VerifyWithCert
// instead.
func (s *Signer) Verify(tenant string, contents []byte, signature string) error {
	cfg := easepay.GetProviderConfig(s.config, easepay.ProviderUnipay, tenant)
	material := easepay.ConfigString(cfg, KeyPublicCert)
	if material == "" {
		return easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no unipay public certificate", easepay.ErrMissingPublicCert).
			WithDetails("field", KeyPublicCert).
			WithDetails("tenant", tenant)
	}
	return s.VerifyWithCert(material, contents, signature)
}

// VerifyWithCert implements easepay.CertVerifier: it verifies against a
// certificate supplied inline with the response, checked before any
// configured key by the registry.
func (s *Signer) VerifyWithCert(cert string, contents []byte, signature string) error {
	pub, err := easepay.LoadPublicKey(cert)
	if err != nil {
		return err
	}
	return easepay.VerifySHA256(pub, digestContents(contents), signature)
}
