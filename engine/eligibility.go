/*
eligibility.go - Eligibility Profile Calculator

PURPOSE:
  Given an applicant profile, a property, and requested loan parameters,
  compute the maximum loan the rules permit and label the binding
  constraint. The result carries everything the intake form renders and the
  audit store persists: LTV ceiling, surcharge rate, cash/CPF requirements,
  tenure cap with its binding source, reason codes and policy references.

ALGORITHM (in order):
  1. Validate inputs; unknown enum values and non-positive price/income fail
     fast with a field-naming ValidationError.
  2. Recognize income per applicant and resolve the effective age (IWAA for
     joint applicants).
  3. Resolve the LTV ceiling from the property-count tier table, reduced when
     the age/tenure trigger fires, then capped by the selected tier.
  4. Resolve the tenure cap (statutory vs age-derived) and the stress rate.
  5. Convert the general and housing servicing budgets into loan bounds via
     the inverse amortization formula; take the minimum of all bounds.
  6. Classify the limiting factor. Near-ties go to the ratio, not LTV: when
     a ratio-derived bound sits within 1% of the LTV bound the regulatory
     ratio is reported as binding. The loan amount itself is always the
     strict minimum.
  7. Round, derive down payment and CPF figures, resolve ABSD, emit codes.

TIE-BREAK POLICY:
  The 1% band in step 6 is deliberate. When a servicing ratio and the LTV
  ceiling produce near-identical bounds, audit clarity demands the stricter
  regulatory classification, so the ratio wins the label while the payable
  amount stays at the true minimum.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// nearTieBand is the tolerance within which a ratio bound is treated as tied
// with the LTV bound for limiting-factor classification.
var nearTieBand = decimal.NewFromFloat(1.01)

// CalculateEligibility runs the Eligibility Profile Calculator. It is pure:
// no I/O, no state, and identical inputs always produce identical results.
func CalculateEligibility(in EligibilityInput) (*EligibilityResult, error) {
	in = applyEligibilityDefaults(in)
	if err := validateEligibility(in); err != nil {
		return nil, err
	}

	reasons := newCodeSet()
	refs := newCodeSet()

	recognized, discounted := recognizedProfileIncome(in.Applicants)
	age := effectiveAge(in.Applicants)
	isCommercial := in.Property.Category == PropertyCommercial

	// Reduced-LTV trigger: long tenure or a loan running past the cutoff age.
	// Commercial property sits outside the residential tier table entirely.
	reducedTriggered := !isCommercial &&
		(in.Loan.TenureYears > reducedTriggerThreshold(in.Property.Category) ||
			age+in.Loan.TenureYears > retirementCutoffAge)

	tier := ltvTierFor(in.Property.ExistingProperties)
	var ltvPercent, minCashPercent decimal.Decimal
	switch {
	case isCommercial:
		ltvPercent = decimal.NewFromInt(commercialLTVPercent)
		minCashPercent = decimal.NewFromInt(commercialMinCashPercent)
	case reducedTriggered:
		ltvPercent = decimal.NewFromInt(tier.reducedPercent)
		minCashPercent = decimal.NewFromInt(tier.minCashReducedPct)
	default:
		ltvPercent = decimal.NewFromInt(tier.basePercent)
		minCashPercent = decimal.NewFromInt(tier.minCashPercent)
	}
	// First HDB purchases carry no minimum-cash component.
	if in.Property.Category == PropertyHDB && in.Property.ExistingProperties == 0 {
		minCashPercent = decimal.Zero
	}
	if cap := tierCapPercent(in.Loan.Tier); ltvPercent.GreaterThan(cap) {
		ltvPercent = cap
	}

	tenureCap, tenureSource := TenureCap(in.Property.Category, in.Loan.Tier, age)
	effectiveTenure := in.Loan.TenureYears
	if effectiveTenure > tenureCap {
		effectiveTenure = tenureCap
	}
	months := effectiveTenure * 12

	stress := StressRatePercent(in.Property.Category, in.Loan.AnnualRatePercent)

	tdsrAvailable := recognized.Mul(tdsrCap).Sub(in.Applicants.MonthlyCommitments).Floor()
	if tdsrAvailable.IsNegative() {
		tdsrAvailable = decimal.Zero
	}

	ltvBound := RoundLoanEligibility(in.Property.Price.Mul(ltvPercent).Div(cent))
	tdsrBound := LoanFromBudget(tdsrAvailable, stress, months)

	msrApplicable := in.Property.Category.HousingRatioApplies()
	msrLimit := decimal.Zero
	msrBound := decimal.Zero
	if msrApplicable {
		msrLimit = recognized.Mul(msrCap).Floor()
		msrBound = LoanFromBudget(msrLimit, stress, months)
	}

	maxLoan := ltvBound
	limiting := LimitLTV
	if tdsrBound.LessThan(maxLoan) {
		maxLoan = tdsrBound
		limiting = LimitTDSR
	}
	if msrApplicable && msrBound.LessThan(maxLoan) {
		maxLoan = msrBound
		limiting = LimitMSR
	}
	// A servicing budget of zero is a breach, not a tie.
	if !tdsrAvailable.IsPositive() {
		maxLoan = decimal.Zero
		limiting = LimitTDSR
	}
	// Near-tie classification: the ratio wins the label, the amount stays put.
	if limiting == LimitLTV {
		tieCeiling := ltvBound.Mul(nearTieBand)
		if msrApplicable && msrBound.LessThanOrEqual(tieCeiling) {
			limiting = LimitMSR
		} else if tdsrBound.LessThanOrEqual(tieCeiling) {
			limiting = LimitTDSR
		}
	}

	downPayment := in.Property.Price.Sub(maxLoan)
	if downPayment.IsNegative() {
		downPayment = decimal.Zero
	}
	downPayment = RoundFundsRequired(downPayment)
	minCashAmount := RoundFundsRequired(in.Property.Price.Mul(minCashPercent).Div(cent))

	cpfAllowed := CPFUsable(in.Property.Category, in.Property.Residency)
	cpfLimit := CPFWithdrawalLimit(in.Property.Category, in.Property.Price)
	cpfAmount := decimal.Zero
	if cpfAllowed {
		pool := downPayment.Sub(minCashAmount)
		if pool.IsNegative() {
			pool = decimal.Zero
		}
		cpfAmount = decimal.Min(pool, cpfLimit)
	}

	absd := ABSDRatePercent(in.Property.Residency, in.Property.ExistingProperties, in.Loan.Purpose)

	// Reason codes: every rule that fired, in evaluation order.
	switch limiting {
	case LimitLTV:
		reasons.add(ReasonLTVBinding)
	case LimitTDSR:
		reasons.add(ReasonTDSRBinding)
	case LimitMSR:
		reasons.add(ReasonMSRBinding)
	}
	switch {
	case reducedTriggered:
		reasons.add(ReasonLTVReducedAge)
	case in.Property.ExistingProperties == 1:
		reasons.add(ReasonLTVSecondLoan)
	case in.Property.ExistingProperties >= 2:
		reasons.add(ReasonLTVThirdLoan)
	default:
		if limiting == LimitLTV {
			reasons.add(ReasonLTVFirstLoan)
		}
	}
	if !recognized.IsPositive() {
		reasons.add(ReasonNoRecognizedInc)
	}
	if discounted {
		reasons.add(ReasonVariableIncome)
		refs.add(PolicyIncomeRecog)
	}
	if stress.GreaterThan(stressFloorPercent(in.Property.Category)) {
		reasons.add(ReasonStressRateQuoted)
	}
	switch {
	case tenureSource == TenureCapByAge:
		reasons.add(ReasonTenureCapAge)
	case msrApplicable:
		reasons.add(ReasonTenureCapProperty)
	default:
		reasons.add(ReasonTenureCapStandard)
	}
	if !cpfAllowed {
		reasons.add(ReasonCPFNotAllowed)
		refs.add(PolicySaleProceeds)
	}
	if absd.IsPositive() {
		reasons.add(ReasonABSDApplies)
		refs.add(PolicyABSD)
	}

	refs.add(PolicyTDSR)
	if msrApplicable {
		refs.add(PolicyMSR)
	}
	refs.add(tenurePolicyRef(in.Property.Category))
	if cpfAmount.IsPositive() {
		refs.add(PolicyCPFInterest)
	}

	return &EligibilityResult{
		MaxLoan:            maxLoan,
		MaxLTVPercent:      RoundPercent(ltvPercent),
		MinCashPercent:     RoundPercent(minCashPercent),
		ABSDRatePercent:    RoundPercent(absd),
		TDSRAvailable:      tdsrAvailable,
		MSRLimit:           msrLimit,
		MSRApplicable:      msrApplicable,
		LimitingFactor:     limiting,
		DownPayment:        downPayment,
		CPFAllowed:         cpfAllowed,
		CPFAllowedAmount:   cpfAmount,
		CPFWithdrawalLimit: cpfLimit,
		TenureCapYears:     tenureCap,
		TenureCapSource:    tenureSource,
		StressRatePercent:  RoundPercent(stress),
		ReasonCodes:        reasons.list(),
		PolicyRefs:         refs.list(),
	}, nil
}

func applyEligibilityDefaults(in EligibilityInput) EligibilityInput {
	if in.Loan.Tier == "" {
		in.Loan.Tier = TierStandard
	}
	if in.Loan.Purpose == "" {
		in.Loan.Purpose = PurposeNewPurchase
	}
	return in
}

func validateEligibility(in EligibilityInput) error {
	if !in.Property.Price.IsPositive() {
		return validationErr("property.price", in.Property.Price.String(), "must be positive")
	}
	if !in.Property.Category.Valid() {
		return validationErr("property.category", string(in.Property.Category), "unknown property category")
	}
	if !in.Property.Residency.Valid() {
		return validationErr("property.residency", string(in.Property.Residency), "unknown residency class")
	}
	if in.Property.ExistingProperties < 0 {
		return validationErr("property.existing_properties", fmt.Sprintf("%d", in.Property.ExistingProperties), "must not be negative")
	}
	if !in.Loan.Tier.Valid() {
		return validationErr("loan.tier", string(in.Loan.Tier), "unknown ltv tier")
	}
	if !in.Loan.Purpose.Valid() {
		return validationErr("loan.purpose", string(in.Loan.Purpose), "unknown loan purpose")
	}
	if in.Loan.TenureYears < 1 {
		return validationErr("loan.tenure_years", fmt.Sprintf("%d", in.Loan.TenureYears), "must be at least 1")
	}
	if in.Loan.AnnualRatePercent.IsNegative() {
		return validationErr("loan.annual_rate_percent", in.Loan.AnnualRatePercent.String(), "must not be negative")
	}
	if len(in.Applicants.Applicants) == 0 {
		return validationErr("applicants", "[]", "at least one applicant required")
	}
	if in.Applicants.MonthlyCommitments.IsNegative() {
		return validationErr("applicants.monthly_commitments", in.Applicants.MonthlyCommitments.String(), "must not be negative")
	}
	gross := decimal.Zero
	for i, a := range in.Applicants.Applicants {
		if !a.Employment.Valid() {
			return validationErr(fmt.Sprintf("applicants[%d].employment", i), string(a.Employment), "unknown employment type")
		}
		if a.Age <= 0 {
			return validationErr(fmt.Sprintf("applicants[%d].age", i), fmt.Sprintf("%d", a.Age), "must be positive")
		}
		if a.GrossMonthlyIncome.IsNegative() {
			return validationErr(fmt.Sprintf("applicants[%d].gross_monthly_income", i), a.GrossMonthlyIncome.String(), "must not be negative")
		}
		gross = gross.Add(a.GrossMonthlyIncome)
	}
	if !gross.IsPositive() {
		return validationErr("applicants.gross_monthly_income", gross.String(), "combined income must be positive")
	}
	return nil
}
