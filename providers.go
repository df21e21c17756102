// Package easepay implements the trust layer of a multi-provider payment
// gateway client: it signs outbound request payloads, verifies inbound
// responses and webhooks against provider public keys, decrypts encrypted
// webhook resources, and keeps the providers' rotating public-certificate
// material fresh without manual intervention.
//
// Supported providers are Alipay, Wechat Pay and China UnionPay. Each has a
// distinct signature algorithm and certificate distribution scheme; the
// per-provider engines live in the alipay, wechat and unipay subpackages and
// plug into this package through the Signer interface.
package easepay

// Provider identifies a payment provider.
type Provider string

const (
	// ProviderAlipay is Alipay (RSA-SHA256 signatures, inline or file-based
	// public certificates).
	ProviderAlipay Provider = "alipay"

	// ProviderWechat is Wechat Pay (v3 RSA-SHA256 plus the legacy v2 keyed-MD5
	// scheme; platform certificates are fetched and rotated via the v3 API).
	ProviderWechat Provider = "wechat"

	// ProviderUnipay is China UnionPay (RSA-SHA256 over a SHA-256 hex digest
	// of the contents; certificates may be supplied inline per request).
	ProviderUnipay Provider = "unipay"
)

// ProviderInfo describes provider-level constants that do not vary per
// tenant: the production and sandbox gateways and the config field that holds
// the rotating serial-to-certificate map.
type ProviderInfo struct {
	// Gateway is the production API base URL.
	Gateway string

	// SandboxGateway is the sandbox API base URL, empty if the provider has
	// no sandbox environment.
	SandboxGateway string

	// CertMapKey is the tenant-config field holding the serial number to
	// PEM certificate map written during rotation. Empty for providers that
	// do not distribute rotating platform certificates.
	CertMapKey string

	// CertListMethod is the provider API method that lists the current
	// public certificate set, empty if not applicable.
	CertListMethod string
}

var providerInfo = map[Provider]ProviderInfo{
	ProviderAlipay: {
		Gateway:        "https://openapi.alipay.com/gateway.do",
		SandboxGateway: "https://openapi-sandbox.dl.alipaydev.com/gateway.do",
		CertMapKey:     "alipay_public_cert_map",
	},
	ProviderWechat: {
		Gateway:        "https://api.mch.weixin.qq.com",
		CertMapKey:     "wechat_public_cert_map",
		CertListMethod: "v3/certificates",
	},
	ProviderUnipay: {
		Gateway: "https://gateway.95516.com",
	},
}

// Info returns the provider-level constants for p.
// The second return value is false for unknown providers.
func Info(p Provider) (ProviderInfo, bool) {
	info, ok := providerInfo[p]
	return info, ok
}

// Mode selects the operating environment for a tenant.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeSandbox Mode = "sandbox"
)

// Gateway returns the API base URL for the provider under the tenant's
// configured mode. Unknown providers yield an empty string.
func Gateway(p Provider, mode Mode) string {
	info, ok := providerInfo[p]
	if !ok {
		return ""
	}
	if mode == ModeSandbox && info.SandboxGateway != "" {
		return info.SandboxGateway
	}
	return info.Gateway
}
