// Package http is the transport side of the trust layer: an outbound
// executor implementing the easepay.Executor capability, and webhook
// middleware that verifies and decrypts inbound notifications before they
// reach application handlers. Framework adapters live in the gin and chi
// subpackages.
package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/retry"
	"github.com/easepay-go/easepay/validation"
	"github.com/easepay-go/easepay/wechat"
)

// Executor performs provider API calls over HTTP. The trust core hands it
// method names and parameters; gateway selection, authentication headers and
// retry policy are decided here.
type Executor struct {
	config   easepay.ConfigStore
	client   *http.Client
	policy   retry.Policy
	gateways map[easepay.Provider]string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor) error

// NewExecutor creates an executor reading tenant credentials from config.
func NewExecutor(config easepay.ConfigStore, opts ...ExecutorOption) (*Executor, error) {
	if config == nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "nil config store", easepay.ErrInvalidParameter)
	}
	e := &Executor{
		config:   config,
		client:   &http.Client{Timeout: 10 * time.Second},
		policy:   retry.DefaultPolicy,
		gateways: map[easepay.Provider]string{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) ExecutorOption {
	return func(e *Executor) error {
		e.client = client
		return nil
	}
}

// WithGateway overrides the base URL for one provider, mainly for tests and
// private forwarding proxies.
func WithGateway(p easepay.Provider, baseURL string) ExecutorOption {
	return func(e *Executor) error {
		e.gateways[p] = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithRetryPolicy sets the transient-failure retry policy.
func WithRetryPolicy(policy retry.Policy) ExecutorOption {
	return func(e *Executor) error {
		e.policy = policy
		return nil
	}
}

func (e *Executor) gateway(p easepay.Provider, mode easepay.Mode) string {
	if base, ok := e.gateways[p]; ok {
		return base
	}
	return easepay.Gateway(p, mode)
}

// Execute implements easepay.Executor. Methods with no parameters beyond the
// tenant selector are sent as GET, everything else as a JSON POST. Wechat
// calls carry the v3 Authorization header signed with the tenant's merchant
// key.
func (e *Executor) Execute(ctx context.Context, provider easepay.Provider, method string, params easepay.Params) (map[string]any, error) {
	tenant := easepay.ResolveTenant(params)
	if err := validation.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	if err := validation.ValidateMethod(method); err != nil {
		return nil, err
	}
	cfg := easepay.GetProviderConfig(e.config, provider, tenant)
	mode := easepay.Mode(easepay.ConfigString(cfg, "mode"))

	base := e.gateway(provider, mode)
	if base == "" {
		return nil, easepay.NewProviderError(easepay.ErrCodeConfig, "no gateway for provider", easepay.ErrUnknownProvider).
			WithDetails("provider", string(provider))
	}

	body, httpMethod, err := requestBody(params)
	if err != nil {
		return nil, err
	}
	path := "/" + strings.TrimLeft(method, "/")

	return retry.Do(ctx, e.policy, transient, func() (map[string]any, error) {
		req, err := http.NewRequestWithContext(ctx, httpMethod, base+path, bytes.NewReader(body))
		if err != nil {
			return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "cannot build provider request", err)
		}
		req.Header.Set("Accept", "application/json")
		if len(body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}
		if provider == easepay.ProviderWechat {
			auth, err := e.wechatAuthorization(cfg, tenant, httpMethod, path, body)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", auth)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, &transientError{fmt.Errorf("%w: %v", easepay.ErrProviderUnavailable, err)}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &transientError{fmt.Errorf("%w: %v", easepay.ErrProviderUnavailable, err)}
		}
		if resp.StatusCode >= 500 {
			return nil, &transientError{easepay.NewProviderError(easepay.ErrCodeTransport, "provider returned a server error", easepay.ErrProviderUnavailable).
				WithDetails("status", resp.StatusCode).
				WithDetails("body", string(data))}
		}
		if resp.StatusCode >= 300 {
			return nil, easepay.NewProviderError(easepay.ErrCodeTransport, "provider rejected the request", easepay.ErrProviderUnavailable).
				WithDetails("status", resp.StatusCode).
				WithDetails("body", string(data))
		}

		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, easepay.NewProviderError(easepay.ErrCodeIntegrity, "provider response is not JSON", err).
				WithDetails("body", string(data))
		}
		return out, nil
	})
}

func requestBody(params easepay.Params) ([]byte, string, error) {
	payload := make(map[string]any, len(params))
	for k, v := range params {
		if k == easepay.TenantParam {
			continue
		}
		payload[k] = v
	}
	if len(payload) == 0 {
		return nil, http.MethodGet, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", easepay.NewProviderError(easepay.ErrCodeParameter, "parameters do not serialize", err)
	}
	return body, http.MethodPost, nil
}

// wechatAuthorization builds the v3 "WECHATPAY2-SHA256-RSA2048" header:
// a signature over "method\npath\ntimestamp\nnonce\nbody\n" with the
// merchant's private certificate.
func (e *Executor) wechatAuthorization(cfg map[string]any, tenant, method, path string, body []byte) (string, error) {
	mchID := easepay.ConfigString(cfg, wechat.KeyMchID)
	serial := easepay.ConfigString(cfg, wechat.KeySerialNo)
	material := easepay.ConfigString(cfg, wechat.KeySecretCert)
	if mchID == "" || serial == "" || material == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "tenant has incomplete wechat merchant credentials", easepay.ErrMissingPrivateKey).
			WithDetails("tenant", tenant).
			WithDetails("fields", []string{wechat.KeyMchID, wechat.KeySerialNo, wechat.KeySecretCert})
	}

	key, err := easepay.LoadPrivateKey(material)
	if err != nil {
		return "", err
	}
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	message := method + "\n" + path + "\n" + timestamp + "\n" + nonce + "\n" + string(body) + "\n"
	signature, err := easepay.SignSHA256(key, []byte(message))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		`WECHATPAY2-SHA256-RSA2048 mchid="%s",nonce_str="%s",timestamp="%s",serial_no="%s",signature="%s"`,
		mchID, nonce, timestamp, serial, signature,
	), nil
}

func randomNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", easepay.NewProviderError(easepay.ErrCodeParameter, "cannot generate nonce", err)
	}
	return hex.EncodeToString(buf), nil
}

// transientError marks failures worth another attempt.
type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

func transient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
