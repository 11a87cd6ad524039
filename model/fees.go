package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer fee schedule. Domestic transfers pay a flat fee per amount tier;
// cross-border transfers pay a percentage of the amount plus a base fee.
var (
	feeTierLow = decimal.NewFromInt(5000)
	feeTierMid = decimal.NewFromInt(50000)

	domesticFeeLow  = decimal.NewFromInt(10)
	domesticFeeMid  = decimal.NewFromInt(25)
	domesticFeeHigh = decimal.NewFromInt(50)

	internationalFeeRate = decimal.RequireFromString("0.015")
	internationalFeeBase = decimal.NewFromInt(1000)
)

// DomesticTransferFee returns the flat fee for a domestic transfer amount:
// amounts at or below 5,000 pay 10.00; at or below 50,000 pay 25.00; larger
// amounts pay 50.00.
func DomesticTransferFee(amount decimal.Decimal) decimal.Decimal {
	switch {
	case amount.Cmp(feeTierLow) <= 0:
		return domesticFeeLow
	case amount.Cmp(feeTierMid) <= 0:
		return domesticFeeMid
	default:
		return domesticFeeHigh
	}
}

// InternationalTransferFee returns 1.5% of the amount plus a 1,000.00 base
// fee, rounded to 2 decimal places.
func InternationalTransferFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(internationalFeeRate).Add(internationalFeeBase).Round(2)
}

// AmountValue reads a named amount out of a values map. Amounts are stored as
// decimals in memory but come back from JSONB as strings or float64s.
func AmountValue(values map[string]interface{}, name string) (decimal.Decimal, error) {
	raw, ok := values[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("value %q is not set", name)
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	default:
		return decimal.Zero, fmt.Errorf("value %q has unsupported type %T", name, raw)
	}
}
