/*
rounding.go - Client-protective rounding conventions

PURPOSE:
  Every rounded figure in the engine rounds AGAINST the borrower's optimism:
  loan eligibility rounds DOWN, money the buyer must produce rounds UP,
  monthly payments round UP. The conventions come straight from the
  regulatory calculation standards the engine implements and are applied
  identically by all three calculators.

RULES:
  RoundLoanEligibility   DOWN to the nearest $1,000
  RoundFundsRequired     UP   to the nearest $1,000
  RoundMonthlyPayment    UP   to the nearest $1
  RoundPercent           half-up to two decimal places
*/
package engine

import "github.com/shopspring/decimal"

var thousand = decimal.NewFromInt(1000)

// RoundLoanEligibility rounds a loan amount down to the nearest thousand.
func RoundLoanEligibility(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(thousand).Floor().Mul(thousand)
}

// RoundFundsRequired rounds funds the buyer must supply up to the nearest
// thousand.
func RoundFundsRequired(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(thousand).Ceil().Mul(thousand)
}

// RoundMonthlyPayment rounds a monthly payment up to the nearest dollar.
func RoundMonthlyPayment(amount decimal.Decimal) decimal.Decimal {
	return amount.Ceil()
}

// RoundPercent rounds a percentage to two decimal places.
func RoundPercent(pct decimal.Decimal) decimal.Decimal {
	return pct.Round(2)
}
