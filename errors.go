package easepay

import (
	"errors"
	"fmt"
)

// Standard easepay error definitions

var (
	// ErrMissingPrivateKey indicates the tenant has no usable private key configured.
	ErrMissingPrivateKey = errors.New("easepay: missing private key")

	// ErrMissingPublicCert indicates the tenant has no usable public certificate configured.
	ErrMissingPublicCert = errors.New("easepay: missing public certificate")

	// ErrMissingSecret indicates the tenant has no shared secret configured.
	ErrMissingSecret = errors.New("easepay: missing shared secret")

	// ErrInvalidKey indicates key or certificate material failed to parse.
	ErrInvalidKey = errors.New("easepay: invalid key material")

	// ErrUnknownProvider indicates no signer is registered for the provider.
	ErrUnknownProvider = errors.New("easepay: unknown provider")

	// ErrUnknownSerial indicates a certificate serial is absent even after rotation.
	ErrUnknownSerial = errors.New("easepay: unknown certificate serial")

	// ErrInvalidSignature indicates a signature failed cryptographic verification.
	ErrInvalidSignature = errors.New("easepay: invalid signature")

	// ErrDecryptionFailed indicates AEAD decryption failed (authentication tag mismatch).
	ErrDecryptionFailed = errors.New("easepay: resource decryption failed")

	// ErrMalformedResource indicates decrypted content failed to parse as structured data.
	ErrMalformedResource = errors.New("easepay: malformed resource plaintext")

	// ErrMissingSignatureHeader indicates a webhook arrived without a signature header.
	ErrMissingSignatureHeader = errors.New("easepay: missing signature header")

	// ErrInvalidParameter indicates a malformed input to a core call.
	ErrInvalidParameter = errors.New("easepay: invalid parameter")

	// ErrProviderUnavailable indicates the provider API call made during rotation failed.
	ErrProviderUnavailable = errors.New("easepay: provider request failed")
)

// ErrorCode classifies a ProviderError into the error taxonomy.
type ErrorCode string

const (
	// ErrCodeConfig marks configuration errors: a required credential,
	// certificate or secret is missing or malformed. Never retried; the
	// missing field is named in the details.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeIntegrity marks response-integrity errors: a signature failed
	// verification, a decryption failed, or decrypted content failed to parse.
	// The offending contents travel in the details for diagnostics.
	ErrCodeIntegrity ErrorCode = "INTEGRITY_ERROR"

	// ErrCodeParameter marks malformed input shapes to a core call.
	ErrCodeParameter ErrorCode = "PARAMETER_ERROR"

	// ErrCodeTransport marks failures of the outbound provider call made
	// during certificate rotation.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
)

// ProviderError is a structured error with a taxonomy code, a human-readable
// message, an optional underlying cause and free-form diagnostic details.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]any
}

// NewProviderError creates a ProviderError with an initialized details map.
func NewProviderError(code ErrorCode, message string, err error) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]any),
	}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a diagnostic key/value pair and returns the error for chaining.
func (e *ProviderError) WithDetails(key string, value any) *ProviderError {
	e.Details[key] = value
	return e
}

// codeOf extracts the taxonomy code from err, or "" if err is not a ProviderError.
func codeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool { return codeOf(err) == ErrCodeConfig }

// IsIntegrityError reports whether err is a response-integrity error.
func IsIntegrityError(err error) bool { return codeOf(err) == ErrCodeIntegrity }

// IsParameterError reports whether err is a parameter error.
func IsParameterError(err error) bool { return codeOf(err) == ErrCodeParameter }
