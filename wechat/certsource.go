package wechat

import (
	"context"

	"github.com/easepay-go/easepay"
	"github.com/easepay-go/easepay/encoding"
)

// CertificateSource fetches the provider's current platform certificates
// through the host-supplied outbound executor and decrypts each entry with
// the tenant's APIv3 key. It satisfies certs.Source.
type CertificateSource struct {
	config easepay.ConfigStore
	exec   easepay.Executor
}

// NewCertificateSource creates a certificate source for Wechat Pay.
func NewCertificateSource(config easepay.ConfigStore, exec easepay.Executor) (*CertificateSource, error) {
	if config == nil || exec == nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "nil config store or executor", easepay.ErrInvalidParameter)
	}
	return &CertificateSource{config: config, exec: exec}, nil
}

// FetchCertificates implements certs.Source.
func (cs *CertificateSource) FetchCertificates(ctx context.Context, tenant string) (map[string]string, error) {
	info, _ := easepay.Info(easepay.ProviderWechat)
	resp, err := cs.exec.Execute(ctx, easepay.ProviderWechat, info.CertListMethod, easepay.Params{
		easepay.TenantParam: tenant,
	})
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeTransport, "cannot list platform certificates", err).
			WithDetails("tenant", tenant)
	}

	items, err := encoding.DecodeCertificateList(resp)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(items))
	for _, item := range items {
		plaintext, _, err := DecryptResource(cs.config, tenant, item.EncryptCertificate)
		if err != nil {
			return nil, err
		}
		out[item.SerialNo] = string(plaintext)
	}
	return out, nil
}
