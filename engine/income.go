/*
income.go - Income recognition, commitment normalization, and IWAA

PURPOSE:
  Shared helpers that turn raw applicant data into the figures the
  calculators consume:

  - RecognizedIncome: gross income discounted by the employment-type
    recognition rate (full for salaried, reduced for self-employed and
    variable income, zero for not-working)
  - CreditCardCommitment / OverdraftCommitment: minimum-payment rules that
    normalize revolving facilities into monthly commitments
  - IncomeWeightedAverageAge: the joint-applicant effective age used for
    tenure caps

IWAA:
  IWAA = ceil( sum(age_i * income_i) / sum(income_i) )

  Rounded UP: a conservative (older) effective age shortens tenure. Zero-
  income applicants are excluded from both the weighted sum and the
  denominator. If the inputs are empty, mismatched, or carry no usable
  income, the primary applicant's age is used directly; that fallback is
  part of the contract and is tested explicitly.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// INCOME RECOGNITION
// =============================================================================

// RecognitionRate returns the fraction of gross income recognized for an
// employment type. Unknown types are rejected by validation before this runs.
func RecognitionRate(employment EmploymentType) decimal.Decimal {
	return recognitionRates[employment]
}

// RecognizedIncome applies the employment-type recognition rate to gross
// monthly income, rounded down to the dollar. Rounding down is the
// client-protective direction for income.
func RecognizedIncome(employment EmploymentType, gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(RecognitionRate(employment)).Floor()
}

// recognizedProfileIncome sums recognition across all applicants in a
// profile and reports whether any applicant's income was discounted.
func recognizedProfileIncome(profile ApplicantProfile) (total decimal.Decimal, discounted bool) {
	total = decimal.Zero
	for _, a := range profile.Applicants {
		total = total.Add(RecognizedIncome(a.Employment, a.GrossMonthlyIncome))
		if a.GrossMonthlyIncome.IsPositive() && RecognitionRate(a.Employment).LessThan(decimal.NewFromInt(1)) {
			discounted = true
		}
	}
	return total, discounted
}

// =============================================================================
// COMMITMENT NORMALIZATION
// =============================================================================

var (
	creditCardMinPayment = decimal.NewFromInt(50)
	creditCardRate       = decimal.NewFromFloat(0.03)
	overdraftRate        = decimal.NewFromFloat(0.05)
)

// CreditCardCommitment converts a card's assumed outstanding balance into a
// monthly commitment: the greater of the flat minimum and 3% of the balance.
func CreditCardCommitment(outstandingBalance decimal.Decimal) decimal.Decimal {
	pct := outstandingBalance.Mul(creditCardRate)
	if pct.GreaterThan(creditCardMinPayment) {
		return pct
	}
	return creditCardMinPayment
}

// OverdraftCommitment converts an overdraft facility limit into a monthly
// commitment at 5% of the limit.
func OverdraftCommitment(facilityLimit decimal.Decimal) decimal.Decimal {
	return facilityLimit.Mul(overdraftRate)
}

// NormalizeCommitments folds revolving facilities into a base monthly
// commitment figure. Each entry in cardBalances is one card.
func NormalizeCommitments(base decimal.Decimal, cardBalances []decimal.Decimal, overdraftLimits []decimal.Decimal) decimal.Decimal {
	total := base
	for _, bal := range cardBalances {
		total = total.Add(CreditCardCommitment(bal))
	}
	for _, limit := range overdraftLimits {
		total = total.Add(OverdraftCommitment(limit))
	}
	return total
}

// =============================================================================
// INCOME-WEIGHTED AVERAGE AGE
// =============================================================================

// IncomeWeightedAverageAge computes the effective age for tenure purposes
// from parallel (age, income) sequences. See the file header for the exact
// exclusion and fallback rules.
func IncomeWeightedAverageAge(ages []int, incomes []decimal.Decimal) int {
	if len(ages) == 0 {
		return 0
	}
	if len(incomes) != len(ages) {
		return ages[0]
	}

	weighted := decimal.Zero
	totalIncome := decimal.Zero
	for i, age := range ages {
		if !incomes[i].IsPositive() {
			continue // zero-income applicants carry no tenure weight
		}
		weighted = weighted.Add(decimal.NewFromInt(int64(age)).Mul(incomes[i]))
		totalIncome = totalIncome.Add(incomes[i])
	}
	if totalIncome.IsZero() {
		return ages[0]
	}

	return int(weighted.Div(totalIncome).Ceil().IntPart())
}

// effectiveAge resolves the profile's age for tenure purposes: IWAA for
// usable joint data, the primary applicant's age otherwise.
func effectiveAge(profile ApplicantProfile) int {
	if len(profile.Applicants) <= 1 {
		return profile.Primary().Age
	}
	ages := make([]int, len(profile.Applicants))
	incomes := make([]decimal.Decimal, len(profile.Applicants))
	for i, a := range profile.Applicants {
		ages[i] = a.Age
		incomes[i] = a.GrossMonthlyIncome
	}
	return IncomeWeightedAverageAge(ages, incomes)
}
