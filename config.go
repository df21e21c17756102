package easepay

import (
	"strings"

	"github.com/pocketbase/pocketbase/tools/store"
)

// MemoryConfig is a concurrent in-memory ConfigStore. It satisfies the
// capability the trust layer consumes; hosts with their own configuration
// storage can supply any other ConfigStore implementation instead.
type MemoryConfig struct {
	data *store.Store[string, map[string]any]
}

// NewMemoryConfig creates an empty MemoryConfig.
func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{data: store.New[string, map[string]any](nil)}
}

// Load seeds the full credential map for a provider tenant.
func (c *MemoryConfig) Load(p Provider, tenant string, cfg map[string]any) {
	c.data.Set(string(p)+"."+tenant, cloneMap(cfg))
}

// Get implements ConfigStore. The returned map is a shallow copy; mutating it
// does not write back into the store.
func (c *MemoryConfig) Get(key string) map[string]any {
	if m, ok := c.data.GetOk(key); ok {
		return cloneMap(m)
	}
	return map[string]any{}
}

// Set implements ConfigStore. A two-segment key ("provider.tenant") replaces
// the whole tenant map; a longer key updates one field inside it.
func (c *MemoryConfig) Set(key string, value any) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 3 {
		if m, ok := value.(map[string]any); ok {
			c.data.Set(key, cloneMap(m))
		}
		return
	}
	parent := parts[0] + "." + parts[1]
	m := cloneMap(c.data.Get(parent))
	m[parts[2]] = value
	c.data.Set(parent, m)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetProviderConfig returns the tenant's configuration sub-map for a provider,
// empty when absent.
func GetProviderConfig(cfg ConfigStore, p Provider, tenant string) map[string]any {
	return cfg.Get(string(p) + "." + tenant)
}

// ConfigString reads a string field from a tenant configuration map,
// returning "" when the field is absent or not a string.
func ConfigString(cfg map[string]any, key string) string {
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ConfigCertMap reads a serial-to-PEM certificate map field. Both
// map[string]string and map[string]any (as produced by JSON decoding) shapes
// are accepted.
func ConfigCertMap(cfg map[string]any, key string) map[string]string {
	out := map[string]string{}
	switch m := cfg[key].(type) {
	case map[string]string:
		for serial, pem := range m {
			out[serial] = pem
		}
	case map[string]any:
		for serial, v := range m {
			if pem, ok := v.(string); ok {
				out[serial] = pem
			}
		}
	}
	return out
}
