package easepay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
)

// Low-level RSA-SHA256 primitives shared by the provider signers. All three
// providers sign with PKCS#1 v1.5 and transport signatures as standard base64.

// SignSHA256 signs contents with RSA-SHA256 and returns the base64 signature.
func SignSHA256(key *rsa.PrivateKey, contents []byte) (string, error) {
	digest := sha256.Sum256(contents)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", NewProviderError(ErrCodeConfig, "signing failed", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifySHA256 checks a base64 RSA-SHA256 signature over contents.
// Any failure is a response-integrity error carrying the original inputs.
func VerifySHA256(pub *rsa.PublicKey, contents []byte, signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return NewProviderError(ErrCodeIntegrity, "signature is not valid base64", err).
			WithDetails("signature", signature).
			WithDetails("contents", string(contents))
	}
	digest := sha256.Sum256(contents)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], raw); err != nil {
		return NewProviderError(ErrCodeIntegrity, "signature verification failed", ErrInvalidSignature).
			WithDetails("signature", signature).
			WithDetails("contents", string(contents))
	}
	return nil
}
