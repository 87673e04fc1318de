package payroll

import "github.com/shopspring/decimal"

// Round rounds to centavos, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Sum adds amounts; an empty list sums to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Peso is a test and fixture convenience for whole or fractional amounts.
func Peso(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
