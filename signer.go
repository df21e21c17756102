package easepay

// Signer is the per-provider signing and verification capability.
// Implementations live in the alipay, wechat and unipay subpackages and read
// tenant credentials from an injected ConfigStore.
type Signer interface {
	// Provider returns the provider this signer serves.
	Provider() Provider

	// Sign signs contents with the tenant's private key and returns the
	// provider's wire encoding of the signature (base64 for the RSA schemes).
	Sign(tenant string, contents []byte) (string, error)

	// Verify checks signature over contents against the tenant's configured
	// provider public key. A missing or unparseable key is a configuration
	// error; a failed cryptographic check is a response-integrity error.
	Verify(tenant string, contents []byte, signature string) error
}

// CertVerifier is implemented by signers that accept a public certificate
// supplied inline with the request, checked before any configured key.
// UnionPay responses may carry their verification certificate this way.
type CertVerifier interface {
	VerifyWithCert(cert string, contents []byte, signature string) error
}
