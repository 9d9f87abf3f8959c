/*
compliance.go - Compliance Snapshot Calculator

PURPOSE:
  Given a specific proposed loan, report debt-servicing compliance: the
  general ratio against the 55% cap, and for HDB/EC the housing-specific
  ratio against the 30% cap, both evaluated at the stress-test rate.

RATIO FORMULATION:
  The general ratio counts all monthly obligations:

    general ratio = (stress payment + commitments) / recognized income

  compliant when at or below 55%. The currency budget reported in TDSRLimit
  (0.55 * income - commitments) is the algebraic rearrangement of the same
  inequality; the compliance decision itself is made on the exact decimal
  comparison, with the two-decimal ratio kept for display. The housing ratio
  counts the mortgage payment alone against 30%.

OUTCOMES:
  A breached ratio is a valid result, not an error. Both ratios can breach
  at once; both reason codes are then present.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculateCompliance runs the Compliance Snapshot Calculator.
func CalculateCompliance(in ComplianceInput) (*ComplianceResult, error) {
	in = applyComplianceDefaults(in)
	if err := validateCompliance(in); err != nil {
		return nil, err
	}

	reasons := newCodeSet()
	refs := newCodeSet()

	recognized := in.RecognizedIncome
	if !recognized.IsPositive() {
		recognized = RecognizedIncome(in.Employment, in.GrossIncome)
	}
	if in.Employment == EmploymentSelfEmployed || in.Employment == EmploymentVariableIncome {
		reasons.add(ReasonVariableIncome)
		refs.add(PolicyIncomeRecog)
	}
	if !recognized.IsPositive() {
		reasons.add(ReasonNoRecognizedInc)
	}

	stress := StressRatePercent(in.Category, in.AnnualRatePercent)
	if stress.GreaterThan(stressFloorPercent(in.Category)) {
		reasons.add(ReasonStressRateQuoted)
	}
	payment := MonthlyPayment(in.LoanAmount, stress, in.TenureYears*12)

	tdsrLimit := recognized.Mul(tdsrCap).Sub(in.Commitments).Floor()
	tdsrCompliant := payment.LessThanOrEqual(tdsrLimit)
	tdsrRatio := decimal.Zero
	if recognized.IsPositive() {
		tdsrRatio = RoundPercent(payment.Add(in.Commitments).Div(recognized).Mul(cent))
	} else {
		tdsrCompliant = false
	}

	msrApplicable := in.Category.HousingRatioApplies()
	msrLimit := decimal.Zero
	msrRatio := decimal.Zero
	msrCompliant := false
	if msrApplicable {
		reasons.add(ReasonMSRApplied)
		msrLimit = recognized.Mul(msrCap).Floor()
		msrCompliant = payment.LessThanOrEqual(msrLimit)
		if recognized.IsPositive() {
			msrRatio = RoundPercent(payment.Div(recognized).Mul(cent))
		}
	}

	// Limiting factor: whichever ratio breached; a fully compliant snapshot
	// reports the LTV label as a neutral default.
	limiting := LimitLTV
	if !tdsrCompliant {
		limiting = LimitTDSR
		reasons.add(ReasonTDSRExceeded)
	}
	if msrApplicable && !msrCompliant {
		if limiting == LimitLTV {
			limiting = LimitMSR
		}
		reasons.add(ReasonMSRExceeded)
	}

	refs.add(PolicyTDSR)
	if msrApplicable {
		refs.add(PolicyMSR)
	}

	return &ComplianceResult{
		RecognizedIncome:  recognized,
		MonthlyPayment:    payment,
		TDSRLimit:         tdsrLimit,
		TDSRRatioPercent:  tdsrRatio,
		TDSRCompliant:     tdsrCompliant,
		MSRApplicable:     msrApplicable,
		MSRLimit:          msrLimit,
		MSRRatioPercent:   msrRatio,
		MSRCompliant:      msrCompliant,
		LimitingFactor:    limiting,
		StressRatePercent: RoundPercent(stress),
		ReasonCodes:       reasons.list(),
		PolicyRefs:        refs.list(),
	}, nil
}

func applyComplianceDefaults(in ComplianceInput) ComplianceInput {
	if in.Employment == "" {
		in.Employment = EmploymentSalaried
	}
	return in
}

func validateCompliance(in ComplianceInput) error {
	if !in.Category.Valid() {
		return validationErr("category", string(in.Category), "unknown property category")
	}
	if !in.Employment.Valid() {
		return validationErr("employment", string(in.Employment), "unknown employment type")
	}
	if !in.LoanAmount.IsPositive() {
		return validationErr("loan_amount", in.LoanAmount.String(), "must be positive")
	}
	if in.TenureYears < 1 {
		return validationErr("tenure_years", fmt.Sprintf("%d", in.TenureYears), "must be at least 1")
	}
	if in.AnnualRatePercent.IsNegative() {
		return validationErr("annual_rate_percent", in.AnnualRatePercent.String(), "must not be negative")
	}
	if in.Commitments.IsNegative() {
		return validationErr("commitments", in.Commitments.String(), "must not be negative")
	}
	if !in.RecognizedIncome.IsPositive() && !in.GrossIncome.IsPositive() {
		return validationErr("gross_income", in.GrossIncome.String(), "income must be positive")
	}
	return nil
}
