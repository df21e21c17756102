package easepay

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"
)

// Key and certificate material in tenant configuration is either a filesystem
// path (recognized by a .cer/.crt/.pem suffix) or inline content. Inline
// private keys may be bare base64 without a PEM envelope, as issued by the
// provider consoles; they are normalized into a 64-column RSA PRIVATE KEY
// envelope before parsing.

func isCertPath(material string) bool {
	return strings.HasSuffix(material, ".cer") ||
		strings.HasSuffix(material, ".crt") ||
		strings.HasSuffix(material, ".pem")
}

func readMaterial(material string) (string, error) {
	if !isCertPath(material) {
		return material, nil
	}
	data, err := os.ReadFile(material)
	if err != nil {
		return "", NewProviderError(ErrCodeConfig, "cannot read certificate file", err).
			WithDetails("path", material)
	}
	return string(data), nil
}

// NormalizePrivateKeyPEM wraps bare base64 private key content into a PEM
// RSA PRIVATE KEY envelope with 64-column base64 lines. Content that already
// carries a PEM header is returned unchanged.
func NormalizePrivateKeyPEM(material string) string {
	if strings.Contains(material, "-----BEGIN") {
		return material
	}
	compact := strings.Join(strings.Fields(material), "")
	der, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return material
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}))
}

// LoadPrivateKey resolves private key material (path or inline, PEM or bare
// base64) into an RSA private key. Both PKCS#1 and PKCS#8 encodings parse.
func LoadPrivateKey(material string) (*rsa.PrivateKey, error) {
	content, err := readMaterial(material)
	if err != nil {
		return nil, err
	}
	content = NormalizePrivateKeyPEM(content)

	block, _ := pem.Decode([]byte(content))
	if block == nil {
		return nil, NewProviderError(ErrCodeConfig, "private key is not valid PEM", ErrInvalidKey)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, NewProviderError(ErrCodeConfig, "cannot parse private key", ErrInvalidKey)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, NewProviderError(ErrCodeConfig, "private key is not RSA", ErrInvalidKey)
	}
	return key, nil
}

// LoadPublicKey resolves public certificate material (path or inline) into an
// RSA public key. Accepted shapes: an X.509 certificate, a PKIX public key,
// or bare base64 of either.
func LoadPublicKey(material string) (*rsa.PublicKey, error) {
	content, err := readMaterial(material)
	if err != nil {
		return nil, err
	}

	var der []byte
	if block, _ := pem.Decode([]byte(content)); block != nil {
		der = block.Bytes
	} else {
		compact := strings.Join(strings.Fields(content), "")
		der, err = base64.StdEncoding.DecodeString(compact)
		if err != nil {
			return nil, NewProviderError(ErrCodeConfig, "public certificate is not valid PEM or base64", ErrInvalidKey)
		}
	}

	if cert, err := x509.ParseCertificate(der); err == nil {
		if key, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			return key, nil
		}
		return nil, NewProviderError(ErrCodeConfig, "certificate public key is not RSA", ErrInvalidKey)
	}
	if parsed, err := x509.ParsePKIXPublicKey(der); err == nil {
		if key, ok := parsed.(*rsa.PublicKey); ok {
			return key, nil
		}
	}
	return nil, NewProviderError(ErrCodeConfig, "cannot parse public certificate", ErrInvalidKey)
}
