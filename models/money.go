package models

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits stored by every NUMERIC(18, 6) column
const MoneyScale = 6

// maxMoneyExclusive is the first magnitude a NUMERIC(18, 6) column cannot hold
var maxMoneyExclusive = decimal.New(1, 18-MoneyScale)

// IsStorableAmount reports whether amount fits a money column without rounding or overflow
func IsStorableAmount(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MoneyScale)) && amount.Abs().LessThan(maxMoneyExclusive)
}
