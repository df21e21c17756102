// Package validation checks merchant-supplied request material before it is
// signed and sent: tenant selectors, order numbers and amounts. Everything
// here fails as a parameter error so hosts can separate their own bad input
// from provider rejections.
package validation

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/easepay-go/easepay"
)

var (
	// tradeNoRegex matches provider order numbers: 6-64 characters drawn
	// from the set every provider accepts.
	tradeNoRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

	// tenantRegex matches tenant names. Dots are excluded because the
	// configuration key space uses them as segment separators.
	tenantRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateTenant validates a configuration profile name.
func ValidateTenant(tenant string) error {
	if tenant == "" {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "tenant cannot be empty", easepay.ErrInvalidParameter)
	}
	if !tenantRegex.MatchString(tenant) {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "tenant name has invalid characters", easepay.ErrInvalidParameter).
			WithDetails("tenant", tenant)
	}
	return nil
}

// ValidateAmount validates an amount expressed in minor units (fen). Amounts
// are carried as strings end to end; arbitrary precision avoids silently
// truncating large values.
func ValidateAmount(amount string) error {
	if amount == "" {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "amount cannot be empty", easepay.ErrInvalidParameter)
	}
	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "amount is not a base-10 integer", easepay.ErrInvalidParameter).
			WithDetails("amount", amount)
	}
	if amt.Sign() <= 0 {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "amount must be greater than zero", easepay.ErrInvalidParameter).
			WithDetails("amount", amount)
	}
	return nil
}

// ValidateTradeNo validates a merchant order number.
func ValidateTradeNo(tradeNo string) error {
	if !tradeNoRegex.MatchString(tradeNo) {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "order number must be 6-64 characters of [A-Za-z0-9_-]", easepay.ErrInvalidParameter).
			WithDetails("out_trade_no", tradeNo)
	}
	return nil
}

// ValidateMethod validates a provider API method path. Leading slashes are
// tolerated; traversal segments and whitespace are not.
func ValidateMethod(method string) error {
	trimmed := strings.TrimLeft(method, "/")
	if trimmed == "" {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "method cannot be empty", easepay.ErrInvalidParameter)
	}
	if strings.ContainsAny(trimmed, " \t\n") || strings.Contains(trimmed, "..") {
		return easepay.NewProviderError(easepay.ErrCodeParameter, "method path has invalid characters", easepay.ErrInvalidParameter).
			WithDetails("method", method)
	}
	return nil
}
