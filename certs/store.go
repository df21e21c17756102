// Package certs owns the provider public-certificate material: a
// config-store-backed map from (provider, tenant, serial number) to PEM text,
// plus the reactive rotation that refreshes it when verification meets an
// unknown serial.
package certs

import (
	"sync"

	"github.com/easepay-go/easepay"
)

// Store maps (provider, tenant, serial) to PEM certificate text. The entries
// live inside the injected config store under the provider's certificate-map
// field, so they survive as long as the host's configuration does and new
// processes start from whatever the host seeded.
//
// Merge performs a read-merge-write; concurrent Merge calls on the same Store
// are serialized internally, but writers going behind the Store directly to
// the config store are the caller's problem.
type Store struct {
	mu     sync.Mutex
	config easepay.ConfigStore
}

// NewStore creates a certificate store over the injected config store.
func NewStore(config easepay.ConfigStore) *Store {
	return &Store{config: config}
}

func certMapKey(p easepay.Provider) (string, error) {
	info, ok := easepay.Info(p)
	if !ok || info.CertMapKey == "" {
		return "", easepay.NewProviderError(easepay.ErrCodeConfig, "provider has no rotating certificates", easepay.ErrUnknownProvider).
			WithDetails("provider", string(p))
	}
	return info.CertMapKey, nil
}

// All returns the tenant's serial-to-PEM map, empty when nothing is cached.
func (s *Store) All(p easepay.Provider, tenant string) map[string]string {
	key, err := certMapKey(p)
	if err != nil {
		return map[string]string{}
	}
	cfg := easepay.GetProviderConfig(s.config, p, tenant)
	return easepay.ConfigCertMap(cfg, key)
}

// Entries returns the tenant's cached certificates as typed entries.
func (s *Store) Entries(p easepay.Provider, tenant string) []easepay.CertificateEntry {
	all := s.All(p, tenant)
	entries := make([]easepay.CertificateEntry, 0, len(all))
	for serial, pemText := range all {
		entries = append(entries, easepay.CertificateEntry{
			Provider: p,
			Tenant:   tenant,
			Serial:   serial,
			PEM:      pemText,
		})
	}
	return entries
}

// Get returns the PEM for one serial and whether it is cached.
func (s *Store) Get(p easepay.Provider, tenant, serial string) (string, bool) {
	pemText, ok := s.All(p, tenant)[serial]
	return pemText, ok
}

// Merge folds a freshly fetched serial-to-PEM map into the tenant's cached
// map and persists the result back into the config store. Returns the merged
// map.
func (s *Store) Merge(p easepay.Provider, tenant string, fetched map[string]string) (map[string]string, error) {
	key, err := certMapKey(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := MergeCertMaps(s.All(p, tenant), fetched)
	s.config.Set(string(p)+"."+tenant+"."+key, merged)
	return merged, nil
}

// MergeCertMaps is the pure merge: additive, never a destructive replace.
// Every serial already held stays unless the fetch returned a fresh PEM for
// that same serial, in which case the fresh one wins.
func MergeCertMaps(existing, fetched map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(fetched))
	for serial, pemText := range existing {
		merged[serial] = pemText
	}
	for serial, pemText := range fetched {
		merged[serial] = pemText
	}
	return merged
}
