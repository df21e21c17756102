package easepay

// TenantParam is the reserved request parameter selecting the tenant, the
// named configuration profile used for the call. The parameter never reaches
// the provider; the outer pipeline strips it after resolution.
const TenantParam = "_config"

// DefaultTenant is used when a request carries no tenant parameter.
const DefaultTenant = "default"

// ResolveTenant returns the tenant key for a request's parameters.
// Absent or non-string values resolve to DefaultTenant. Pure function, no
// failure mode.
func ResolveTenant(params Params) string {
	if params == nil {
		return DefaultTenant
	}
	if v, ok := params[TenantParam]; ok {
		if tenant, ok := v.(string); ok && tenant != "" {
			return tenant
		}
	}
	return DefaultTenant
}
