// Package wechat implements the easepay.Signer capability for Wechat Pay.
//
// The current v3 scheme signs with the merchant's private certificate
// (RSA-SHA256, base64) and verifies responses and webhooks against rotating
// platform certificates selected by serial number. The legacy v2 scheme is a
// keyed MD5 over a deterministic string built from the request parameters;
// the provider never publishes a verification key for it.
package wechat

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/easepay-go/easepay"
)

// Tenant configuration fields read by this package.
const (
	KeyMchID      = "mch_id"
	KeySecretKey  = "mch_secret_key"  // 32-byte APIv3 key, also the AEAD secret
	KeySecretCert = "mch_secret_cert" // merchant private key: path, PEM or bare base64
	KeySerialNo   = "mch_serial_no"   // merchant certificate serial
	KeyV2Secret   = "key"             // legacy v2 shared secret
	KeyCertMap    = "wechat_public_cert_map"
)

// Signer signs and verifies Wechat Pay payloads for the tenants held by an
// injected ConfigStore.
type Signer struct {
	config      easepay.ConfigStore
	v2Uppercase bool
}

// SignerOption configures a Signer.
type SignerOption func(*Signer) error

// NewSigner creates a Wechat Pay signer reading credentials from config.
func NewSigner(config easepay.ConfigStore, opts ...SignerOption) (*Signer, error) {
	if config == nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "nil config store", easepay.ErrInvalidParameter)
	}
	s := &Signer{config: config, v2Uppercase: true}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithLowercaseV2Signature emits legacy v2 signatures in lowercase hex.
// The default is uppercase, which is what the provider documents.
func WithLowercaseV2Signature() SignerOption {
	return func(s *Signer) error {
		s.v2Uppercase = false
		return nil
	}
}

// Provider implements easepay.Signer.
func (s *Signer) Provider() easepay.Provider {
	return easepay.ProviderWechat
}

func (s *Signer) tenantConfig(tenant string) map[string]any {
	return easepay.GetProviderConfig(s.config, easepay.ProviderWechat, tenant)
}

// Sign implements easepay.Signer using the v3 scheme.
func (s *Signer) Sign(tenant string, contents []byte) (string, error) {
	material := easepay.ConfigString(s.tenantConfig(tenant), KeySecretCert)
	if material == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no wechat merchant private key", easepay.ErrMissingPrivateKey).
			WithDetails("field", KeySecretCert).
			WithDetails("tenant", tenant)
	}
	key, err := easepay.LoadPrivateKey(material)
	if err != nil {
		return "", err
	}
	return easepay.SignSHA256(key, contents)
}

// Verify implements easepay.Signer. It tries every platform certificate
// cached for the tenant; responses that carry a serial header should go
// through VerifySerial instead so rotation can kick in.
func (s *Signer) Verify(tenant string, contents []byte, signature string) error {
	certMap := easepay.ConfigCertMap(s.tenantConfig(tenant), KeyCertMap)
	if len(certMap) == 0 {
		return easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no wechat platform certificates", easepay.ErrMissingPublicCert).
			WithDetails("field", KeyCertMap).
			WithDetails("tenant", tenant)
	}
	var lastErr error
	for _, pemText := range certMap {
		pub, err := easepay.LoadPublicKey(pemText)
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = easepay.VerifySHA256(pub, contents, signature)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// VerifySerial verifies a v3 signature against one specific platform
// certificate, already resolved to PEM by the caller (normally through the
// rotation orchestrator).
func VerifySerial(certPEM string, contents []byte, signature string) error {
	pub, err := easepay.LoadPublicKey(certPEM)
	if err != nil {
		return err
	}
	return easepay.VerifySHA256(pub, contents, signature)
}

// SignV2 produces a legacy v2 signature over the request parameters.
func (s *Signer) SignV2(tenant string, params easepay.Params) (string, error) {
	secret := easepay.ConfigString(s.tenantConfig(tenant), KeyV2Secret)
	if secret == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no wechat v2 secret", easepay.ErrMissingSecret).
			WithDetails("field", KeyV2Secret).
			WithDetails("tenant", tenant)
	}
	digest := md5.Sum([]byte(V2SigningString(params, secret)))
	sig := hex.EncodeToString(digest[:])
	if s.v2Uppercase {
		sig = strings.ToUpper(sig)
	}
	return sig, nil
}

// V2SigningString builds the deterministic legacy signing string: parameters
// sorted ascending by key, entries with empty-string or array-typed values
// and the "sign" key dropped, the rest joined as "k=v&", terminated with
// "key=<secret>". The filter and ordering are load-bearing for interop.
func V2SigningString(params easepay.Params, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || skipV2Value(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fmt.Sprintf("%v", params[k]))
		b.WriteByte('&')
	}
	b.WriteString("key=")
	b.WriteString(secret)
	return b.String()
}

func skipV2Value(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}
