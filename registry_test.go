package easepay_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/alipay"
	"github.com/easepay-go/easepay/unipay"
)

func newKeyPair(t *testing.T) (privPEM, certPEM string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	privPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	return privPEM, certPEM
}

func newRegistry(t *testing.T, config easepay.ConfigStore) *easepay.Registry {
	t.Helper()
	ali, err := alipay.NewSigner(config)
	if err != nil {
		t.Fatal(err)
	}
	uni, err := unipay.NewSigner(config)
	if err != nil {
		t.Fatal(err)
	}
	return easepay.NewRegistry(ali, uni)
}

func TestRegistry_SignVerify_RoundTrip(t *testing.T) {
	privPEM, certPEM := newKeyPair(t)
	config := easepay.NewMemoryConfig()
	config.Load(easepay.ProviderAlipay, "default", map[string]any{
		alipay.KeyPrivateKey: privPEM,
		alipay.KeyPublicCert: certPEM,
	})
	config.Load(easepay.ProviderUnipay, "default", map[string]any{
		unipay.KeyPrivateKey: privPEM,
		unipay.KeyPublicCert: certPEM,
	})
	registry := newRegistry(t, config)

	contents := []byte("biz_content=1")
	for _, provider := range []easepay.Provider{easepay.ProviderAlipay, easepay.ProviderUnipay} {
		t.Run(string(provider), func(t *testing.T) {
			sig, err := registry.Sign(provider, nil, contents)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if err := registry.Verify(provider, nil, contents, sig); err != nil {
				t.Fatalf("Verify: %v", err)
			}
		})
	}
}

func TestRegistry_Verify_WrongKeyPair(t *testing.T) {
	privPEM, _ := newKeyPair(t)
	_, otherCert := newKeyPair(t)
	config := easepay.NewMemoryConfig()
	config.Load(easepay.ProviderAlipay, "default", map[string]any{
		alipay.KeyPrivateKey: privPEM,
		alipay.KeyPublicCert: otherCert,
	})
	registry := newRegistry(t, config)

	contents := []byte("biz_content=1")
	sig, err := registry.Sign(easepay.ProviderAlipay, nil, contents)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err = registry.Verify(easepay.ProviderAlipay, nil, contents, sig)
	if err == nil {
		t.Fatal("verification with a different keypair's public half must fail")
	}
	if !easepay.IsIntegrityError(err) {
		t.Errorf("expected response-integrity error, got %v", err)
	}
}

func TestRegistry_TenantResolution(t *testing.T) {
	privPEM, certPEM := newKeyPair(t)
	config := easepay.NewMemoryConfig()
	config.Load(easepay.ProviderAlipay, "merchant_b", map[string]any{
		alipay.KeyPrivateKey: privPEM,
		alipay.KeyPublicCert: certPEM,
	})
	registry := newRegistry(t, config)

	params := easepay.Params{easepay.TenantParam: "merchant_b"}
	sig, err := registry.Sign(easepay.ProviderAlipay, params, []byte("x"))
	if err != nil {
		t.Fatalf("Sign for merchant_b: %v", err)
	}
	if err := registry.Verify(easepay.ProviderAlipay, params, []byte("x"), sig); err != nil {
		t.Fatalf("Verify for merchant_b: %v", err)
	}

	// The default tenant was never configured.
	if _, err := registry.Sign(easepay.ProviderAlipay, nil, []byte("x")); !easepay.IsConfigError(err) {
		t.Errorf("expected configuration error for unconfigured default tenant, got %v", err)
	}
}

func TestRegistry_InlineCertOverride(t *testing.T) {
	privPEM, certPEM := newKeyPair(t)
	config := easepay.NewMemoryConfig()
	config.Load(easepay.ProviderUnipay, "default", map[string]any{
		unipay.KeyPrivateKey: privPEM,
		// No configured public certificate: only the inline one can verify.
	})
	registry := newRegistry(t, config)

	contents := []byte("txnAmt=100")
	sig, err := registry.Sign(easepay.ProviderUnipay, nil, contents)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	params := easepay.Params{easepay.InlineCertParam: certPEM}
	if err := registry.Verify(easepay.ProviderUnipay, params, contents, sig); err != nil {
		t.Fatalf("Verify with inline certificate: %v", err)
	}

	if err := registry.Verify(easepay.ProviderUnipay, nil, contents, sig); !easepay.IsConfigError(err) {
		t.Errorf("expected configuration error without any certificate, got %v", err)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := easepay.NewRegistry()
	_, err := registry.Sign(easepay.ProviderWechat, nil, []byte("x"))
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
	if !errors.Is(err, easepay.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}
