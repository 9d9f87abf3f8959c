/*
amortize.go - Fixed-payment amortization, both directions

PURPOSE:
  The standard mortgage formula and its inverse:

    payment = P * r(1+r)^n / ((1+r)^n - 1)
    P       = payment * ((1+r)^n - 1) / (r(1+r)^n)

  where r is the monthly rate and n the number of monthly payments. The
  calculators always evaluate these at the stress-test rate (tables.go), not
  the quoted rate.

ZERO-RATE GUARD:
  A zero rate degenerates to straight-line division; the guard keeps the
  formula from dividing by zero and keeps scenario seeding with 0% rates
  usable in tests.
*/
package engine

import "github.com/shopspring/decimal"

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
	cent   = decimal.NewFromInt(100)
)

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(cent).Div(twelve)
}

// MonthlyPayment computes the fixed monthly payment for a loan at the given
// annual rate over tenure months, rounded up to the dollar.
func MonthlyPayment(principal decimal.Decimal, annualPercent decimal.Decimal, months int) decimal.Decimal {
	if !principal.IsPositive() || months <= 0 {
		return decimal.Zero
	}
	r := monthlyRate(annualPercent)
	n := decimal.NewFromInt(int64(months))
	if r.IsZero() {
		return RoundMonthlyPayment(principal.Div(n))
	}
	growth := one.Add(r).Pow(n)
	exact := principal.Mul(r).Mul(growth).Div(growth.Sub(one))
	return RoundMonthlyPayment(exact)
}

// LoanFromBudget inverts the payment formula: the largest principal a
// monthly budget can service at the given annual rate over tenure months,
// rounded down to the nearest thousand. A non-positive budget yields zero.
func LoanFromBudget(budget decimal.Decimal, annualPercent decimal.Decimal, months int) decimal.Decimal {
	if !budget.IsPositive() || months <= 0 {
		return decimal.Zero
	}
	r := monthlyRate(annualPercent)
	n := decimal.NewFromInt(int64(months))
	if r.IsZero() {
		return RoundLoanEligibility(budget.Mul(n))
	}
	growth := one.Add(r).Pow(n)
	exact := budget.Mul(growth.Sub(one)).Div(r.Mul(growth))
	return RoundLoanEligibility(exact)
}
