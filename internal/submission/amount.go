package submission

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"wpp/internal/services"
)

// ErrInvalidAmount reports a txnAmount that is not a decimal number.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", services.ErrValidation)

// ParseAmount converts the wire amount string into an exact decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, services.Wrap(ErrInvalidAmount, "submission", "parse amount", "empty txnAmount", nil)
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, services.Wrap(ErrInvalidAmount, "submission", "parse amount", fmt.Sprintf("txnAmount %q", raw), err)
	}
	return amount, nil
}
