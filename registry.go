package easepay

// InlineCertParam is the request parameter under which UnionPay responses
// carry the public certificate to verify against. When present it is checked
// before any configured key.
const InlineCertParam = "signPubKeyCert"

// Registry dispatches sign and verify calls to the signer registered for a
// provider, resolving the tenant from the request parameters first.
type Registry struct {
	signers map[Provider]Signer
}

// NewRegistry creates a registry over the given signers.
func NewRegistry(signers ...Signer) *Registry {
	r := &Registry{signers: make(map[Provider]Signer, len(signers))}
	for _, s := range signers {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the signer for its provider.
func (r *Registry) Register(s Signer) {
	r.signers[s.Provider()] = s
}

// Signer returns the signer registered for p.
func (r *Registry) Signer(p Provider) (Signer, error) {
	s, ok := r.signers[p]
	if !ok {
		return nil, NewProviderError(ErrCodeConfig, "no signer registered for provider", ErrUnknownProvider).
			WithDetails("provider", string(p))
	}
	return s, nil
}

// Sign resolves the tenant from params and signs contents with the provider's
// signer.
func (r *Registry) Sign(p Provider, params Params, contents []byte) (string, error) {
	s, err := r.Signer(p)
	if err != nil {
		return "", err
	}
	return s.Sign(ResolveTenant(params), contents)
}

// Verify resolves the tenant from params and verifies signature over contents.
// An inline certificate supplied under InlineCertParam wins over configured
// keys when the provider's signer supports it.
func (r *Registry) Verify(p Provider, params Params, contents []byte, signature string) error {
	s, err := r.Signer(p)
	if err != nil {
		return err
	}
	if cert, ok := params[InlineCertParam].(string); ok && cert != "" {
		if cv, ok := s.(CertVerifier); ok {
			return cv.VerifyWithCert(cert, contents, signature)
		}
	}
	return s.Verify(ResolveTenant(params), contents, signature)
}
