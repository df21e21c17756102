package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/retry"
	"github.com/easepay-go/easepay/wechat"
)

func testPrivatePEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func fastRetry() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestExecutor_Execute(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"trade_no":"2026082912345"}`))
	}))
	defer server.Close()

	config := easepay.NewMemoryConfig()
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderAlipay, server.URL), WithRetryPolicy(fastRetry()))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := exec.Execute(context.Background(), easepay.ProviderAlipay, "alipay.trade.query", easepay.Params{
		"out_trade_no": "EP-1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp["trade_no"] != "2026082912345" {
		t.Errorf("resp = %v", resp)
	}
	if gotMethod != http.MethodPost || gotPath != "/alipay.trade.query" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if payload["out_trade_no"] != "EP-1" {
		t.Errorf("payload = %v", payload)
	}
}

func TestExecutor_TenantParamNeverLeaves(t *testing.T) {
	var gotMethod string
	var gotLength int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotLength = r.ContentLength
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	config := easepay.NewMemoryConfig()
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderAlipay, server.URL))
	if err != nil {
		t.Fatal(err)
	}

	// Only the tenant selector: the request degenerates to a bodiless GET.
	_, err = exec.Execute(context.Background(), easepay.ProviderAlipay, "status", easepay.Params{
		easepay.TenantParam: "merchant_b",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotMethod != http.MethodGet || gotLength > 0 {
		t.Errorf("request = %s with %d body bytes", gotMethod, gotLength)
	}
}

func TestExecutor_WechatAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	config := easepay.NewMemoryConfig()
	config.Load(easepay.ProviderWechat, "default", map[string]any{
		wechat.KeyMchID:      "1500000001",
		wechat.KeySerialNo:   "SER100",
		wechat.KeySecretCert: testPrivatePEM(t),
	})
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderWechat, server.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := exec.Execute(context.Background(), easepay.ProviderWechat, "v3/certificates", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(gotAuth, "WECHATPAY2-SHA256-RSA2048 ") {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	for _, field := range []string{`mchid="1500000001"`, `serial_no="SER100"`, "nonce_str=", "timestamp=", "signature="} {
		if !strings.Contains(gotAuth, field) {
			t.Errorf("Authorization missing %s: %q", field, gotAuth)
		}
	}
}

func TestExecutor_WechatIncompleteCredentials(t *testing.T) {
	config := easepay.NewMemoryConfig()
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderWechat, "http://127.0.0.1:1"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = exec.Execute(context.Background(), easepay.ProviderWechat, "v3/certificates", nil)
	if !errors.Is(err, easepay.ErrMissingPrivateKey) {
		t.Errorf("expected ErrMissingPrivateKey, got %v", err)
	}
	if !easepay.IsConfigError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestExecutor_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	config := easepay.NewMemoryConfig()
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderAlipay, server.URL), WithRetryPolicy(fastRetry()))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := exec.Execute(context.Background(), easepay.ProviderAlipay, "status", easepay.Params{"q": 1})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp["ok"] != true || calls != 3 {
		t.Errorf("resp = %v, calls = %d", resp, calls)
	}
}

func TestExecutor_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	config := easepay.NewMemoryConfig()
	exec, err := NewExecutor(config, WithGateway(easepay.ProviderAlipay, server.URL), WithRetryPolicy(fastRetry()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = exec.Execute(context.Background(), easepay.ProviderAlipay, "status", easepay.Params{"q": 1})
	if !errors.Is(err, easepay.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecutor_UnknownProviderGateway(t *testing.T) {
	exec, err := NewExecutor(easepay.NewMemoryConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, err = exec.Execute(context.Background(), easepay.Provider("paypal"), "status", nil)
	if !easepay.IsConfigError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
