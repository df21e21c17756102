package certs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/easepay-go/easepay"
)

// Source fetches the provider's current public-certificate set for a tenant,
// returning serial-to-PEM entries. Implementations route the call through the
// host's outbound request pipeline; the wechat package provides one built on
// the easepay.Executor capability.
type Source interface {
	FetchCertificates(ctx context.Context, tenant string) (map[string]string, error)
}

// Rotator reacts to verification cache-misses: one fetch through the Source,
// one additive merge into the Store, no retry loop and no periodic refresh.
type Rotator struct {
	provider easepay.Provider
	store    *Store
	source   Source
	logger   *slog.Logger
}

// RotatorOption configures a Rotator.
type RotatorOption func(*Rotator)

// WithLogger sets the rotation logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RotatorOption {
	return func(r *Rotator) {
		r.logger = logger
	}
}

// NewRotator creates a rotation orchestrator for one provider.
func NewRotator(p easepay.Provider, store *Store, source Source, opts ...RotatorOption) *Rotator {
	r := &Rotator{provider: p, store: store, source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Certificate resolves one serial to PEM, rotating once when the serial is
// not cached. A serial the provider still does not publish after the refresh
// is a configuration error naming the missing certificate.
func (r *Rotator) Certificate(ctx context.Context, tenant, serial string) (string, error) {
	if pemText, ok := r.store.Get(r.provider, tenant, serial); ok {
		return pemText, nil
	}

	r.logger.Info("certificate serial not cached, rotating",
		"provider", string(r.provider), "tenant", tenant, "serial", serial)

	merged, err := r.Rotate(ctx, tenant)
	if err != nil {
		return "", err
	}
	if pemText, ok := merged[serial]; ok {
		return pemText, nil
	}
	return "", easepay.NewProviderError(easepay.ErrCodeConfig, "provider does not publish the requested certificate", easepay.ErrUnknownSerial).
		WithDetails("provider", string(r.provider)).
		WithDetails("tenant", tenant).
		WithDetails("serial", serial)
}

// Rotate fetches the current certificate set and merges it into the store.
// Single attempt; a failed fetch surfaces as a transport error.
func (r *Rotator) Rotate(ctx context.Context, tenant string) (map[string]string, error) {
	fetched, err := r.source.FetchCertificates(ctx, tenant)
	if err != nil {
		return nil, easepay.NewProviderError(easepay.ErrCodeTransport, "certificate listing failed", err).
			WithDetails("provider", string(r.provider)).
			WithDetails("tenant", tenant)
	}

	merged, err := r.store.Merge(r.provider, tenant, fetched)
	if err != nil {
		return nil, err
	}
	r.logger.Info("certificate set refreshed",
		"provider", string(r.provider), "tenant", tenant, "fetched", len(fetched), "held", len(merged))
	return merged, nil
}

// EnsureCertificates rotates unconditionally and, when exportDir is
// non-empty, writes each held certificate to <exportDir>/<serial>.crt.
func (r *Rotator) EnsureCertificates(ctx context.Context, tenant, exportDir string) (map[string]string, error) {
	merged, err := r.Rotate(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if exportDir == "" {
		return merged, nil
	}
	for _, entry := range r.store.Entries(r.provider, tenant) {
		path := filepath.Join(exportDir, entry.Serial+".crt")
		if err := os.WriteFile(path, []byte(entry.PEM), 0o600); err != nil {
			return nil, easepay.NewProviderError(easepay.ErrCodeParameter, "cannot export certificate", err).
				WithDetails("path", path)
		}
	}
	return merged, nil
}
