package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds an amount to 2 decimal places for monetary output
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// MinMoney returns the smaller of two amounts
func MinMoney(a, b decimal.Decimal) decimal.Decimal {
	return decimal.Min(a, b)
}

// SumMoney adds all amounts; an empty list sums to zero
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}
