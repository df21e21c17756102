package wechat

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"

	"github.com/easepay-go/easepay"
)

const (
	// AlgorithmAESGCM is the only resource algorithm the provider emits.
	AlgorithmAESGCM = "AEAD_AES_256_GCM"

	// TagLength is the length of the authentication tag appended to the
	// ciphertext.
	TagLength = 16

	// SecretLength is the required length of the APIv3 shared secret.
	SecretLength = 32

	// AssociatedDataCertificate marks a resource whose plaintext is a PEM
	// certificate rather than structured JSON.
	AssociatedDataCertificate = "certificate"
)

// Decrypt opens an AEAD_AES_256_GCM resource. The ciphertext is base64 with
// the tag appended; secret must be the tenant's 32-byte APIv3 key. Length
// violations are rejected before any cryptography runs.
func Decrypt(secret, nonce, associatedData, ciphertext string) ([]byte, error) {
	if len(secret) != SecretLength {
		return nil, easepay.NewProviderError(easepay.ErrCodeConfig, "shared secret must be 32 bytes", easepay.ErrMissingSecret).
			WithDetails("field", KeySecretKey).
			WithDetails("length", len(secret))
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "ciphertext is not valid base64", easepay.ErrInvalidParameter)
	}
	if len(raw) <= TagLength {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "ciphertext shorter than authentication tag", easepay.ErrInvalidParameter).
			WithDetails("length", len(raw))
	}

	block, err := aes.NewCipher([]byte(secret))
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeConfig, "cannot initialize cipher", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, len(nonce))
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "invalid nonce length", easepay.ErrInvalidParameter).
			WithDetails("length", len(nonce))
	}
	plaintext, err := gcm.Open(nil, []byte(nonce), raw, []byte(associatedData))
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "resource decryption failed", easepay.ErrDecryptionFailed).
			WithDetails("ciphertext", ciphertext).
			WithDetails("associated_data", associatedData)
	}
	return plaintext, nil
}

// DecryptResource decrypts a webhook resource with the tenant's APIv3 key.
// For "certificate" associated data the plaintext is returned raw and parsed
// is nil; for anything else the plaintext must decode as a JSON object,
// returned in parsed.
func DecryptResource(config easepay.ConfigStore, tenant string, res easepay.Resource) (plaintext []byte, parsed map[string]any, err error) {
	cfg := easepay.GetProviderConfig(config, easepay.ProviderWechat, tenant)
	secret := easepay.ConfigString(cfg, KeySecretKey)
	if secret == "" {
		return nil, nil, easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has no wechat apiv3 secret", easepay.ErrMissingSecret).
			WithDetails("field", KeySecretKey).
			WithDetails("tenant", tenant)
	}

	plaintext, err = Decrypt(secret, res.Nonce, res.AssociatedData, res.Ciphertext)
	if err != nil {
		return nil, nil, err
	}
	if res.AssociatedData == AssociatedDataCertificate {
		return plaintext, nil, nil
	}
	if err := json.Unmarshal(plaintext, &parsed); err != nil {
		return nil, nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "decrypted resource is not structured data", easepay.ErrMalformedResource).
			WithDetails("plaintext", string(plaintext)).
			WithDetails("associated_data", res.AssociatedData)
	}
	return plaintext, parsed, nil
}
