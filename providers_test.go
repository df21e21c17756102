package easepay

import "testing"

func TestInfo(t *testing.T) {
	tests := []struct {
		provider   Provider
		ok         bool
		certMapKey string
	}{
		{ProviderAlipay, true, "alipay_public_cert_map"},
		{ProviderWechat, true, "wechat_public_cert_map"},
		{ProviderUnipay, true, ""},
		{Provider("paypal"), false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			info, ok := Info(tt.provider)
			if ok != tt.ok {
				t.Fatalf("Info ok = %v, want %v", ok, tt.ok)
			}
			if info.CertMapKey != tt.certMapKey {
				t.Errorf("CertMapKey = %q, want %q", info.CertMapKey, tt.certMapKey)
			}
		})
	}
}

func TestGateway(t *testing.T) {
	if got := Gateway(ProviderWechat, ModeNormal); got != "https://api.mch.weixin.qq.com" {
		t.Errorf("wechat gateway = %q", got)
	}
	// Wechat has no sandbox gateway; the production one is used.
	if got := Gateway(ProviderWechat, ModeSandbox); got != "https://api.mch.weixin.qq.com" {
		t.Errorf("wechat sandbox gateway = %q", got)
	}
	if got := Gateway(ProviderAlipay, ModeSandbox); got != "https://openapi-sandbox.dl.alipaydev.com/gateway.do" {
		t.Errorf("alipay sandbox gateway = %q", got)
	}
	if got := Gateway(Provider("paypal"), ModeNormal); got != "" {
		t.Errorf("unknown provider gateway = %q", got)
	}
}
