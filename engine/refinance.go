/*
refinance.go - Refinance Outlook Calculator

PURPOSE:
  Given an existing loan and property, project what a refinance is worth:
  monthly savings against a best-available reference rate, maximum cash-out
  capacity, and timing guidance keyed to the remaining lock-in period.

CASH-OUT RULES:
  Cash-out is available only for private residential property, and only when
  owner equity is positive:

    equity = value * LTV cap - outstanding balance - CPF redemption

  where CPF redemption is the retirement savings drawn on the property plus
  notional accrued interest (2.5%/yr, compounded monthly). HDB and EC equity
  cannot be cashed out; investment properties get a tighter 70% cap. Every
  zero-capacity outcome names its cause with a reason code.

SAVINGS:
  A shortened tenure usually RAISES the payment; the resulting negative
  savings figure is reported as-is. Suppressing it would hide exactly the
  trade-off the borrower asked about.

TIMING BANDS (months of lock-in remaining):
  <= 3   immediate   lock-in expired or about to; act now
  <= 6   critical    start paperwork to secure offers in time
  <= 18  planning    monitor packages, prepare documentation
  >  18  long        wait out the penalty period
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// defaultRemainingMonths stands in for the loan's remaining term when the
// lock-in figure is absent: 25 years.
const defaultRemainingMonths = 300

// CalculateRefinanceOutlook runs the Refinance Outlook Calculator.
func CalculateRefinanceOutlook(in RefinanceInput) (*RefinanceOutlookResult, error) {
	in = applyRefinanceDefaults(in)
	if err := validateRefinance(in); err != nil {
		return nil, err
	}

	reasons := newCodeSet()
	refs := newCodeSet()
	recs := newCodeSet()
	refs.add(PolicyTDSR)

	balance := in.OutstandingBalance
	value := in.PropertyValue
	if !value.IsPositive() && balance.IsPositive() {
		// Back out a valuation from the balance at the standard first-loan LTV.
		value = balance.Div(decimal.NewFromFloat(0.75))
	}

	months := in.MonthsRemaining
	totalPayments := months
	if totalPayments <= 0 {
		totalPayments = defaultRemainingMonths
	}

	currentRate := in.CurrentRatePercent
	if !currentRate.IsPositive() && balance.IsPositive() {
		currentRate = estimatedCurrentRatePercent(in.Category)
		reasons.add(ReasonRateEstimated)
	}
	targetRate := in.TargetRatePercent
	if !targetRate.IsPositive() {
		targetRate = bestAvailableRatePercent(in.Category)
	}

	currentPayment := MonthlyPayment(balance, currentRate, totalPayments)
	targetPayment := MonthlyPayment(balance, targetRate, totalPayments)
	savings := currentPayment.Sub(targetPayment)

	switch in.Objective {
	case ObjectiveLowerPayment:
		recs.add(RecLowerPayment)
	case ObjectiveShortenTenure:
		if balance.IsPositive() {
			reduced := totalPayments - 60
			if reduced < 12 {
				reduced = 12
			}
			targetPayment = MonthlyPayment(balance, targetRate, reduced)
			savings = currentPayment.Sub(targetPayment)
		}
		recs.add(RecTenureReduction)
		if savings.IsNegative() {
			recs.add(RecHigherPayment)
		}
	case ObjectiveRateCertainty:
		recs.add(RecRateCertainty)
		reasons.add(ReasonRateCertainty)
	}
	if savings.IsPositive() {
		reasons.add(ReasonRateSavings)
	}

	ltvCapPercent := refinanceLTVCapPercent(in.Category, in.OwnerOccupied)

	cpfRedemption := decimal.Zero
	if in.CPFUsed.IsPositive() {
		yearsHeld := in.PropertyAgeYears
		if yearsHeld < 1 {
			yearsHeld = 5 // unknown holding period: assume an established loan
		}
		growth := one.Add(cpfAccrualAnnualRate.Div(twelve)).Pow(decimal.NewFromInt(int64(yearsHeld * 12)))
		accrued := in.CPFUsed.Mul(growth.Sub(one)).Round(0)
		cpfRedemption = in.CPFUsed.Add(accrued)
		reasons.add(ReasonCPFAccruedInterest)
		refs.add(PolicyCPFInterest)
		refs.add(PolicySaleProceeds)
	}

	maxCashOut := decimal.Zero
	if value.IsPositive() {
		allowable := RoundLoanEligibility(value.Mul(ltvCapPercent).Div(cent))
		equity := allowable.Sub(balance).Sub(cpfRedemption)

		switch {
		case balance.GreaterThan(value):
			reasons.add(ReasonNegativeEquity)
		case in.Category == PropertyHDB, in.Category == PropertyEC:
			reasons.add(ReasonCashOutCategory)
		case in.Category == PropertyCommercial:
			reasons.add(ReasonCPFCommercial)
		case equity.IsPositive():
			maxCashOut = RoundLoanEligibility(equity)
			reasons.add(ReasonCashOutAllowed)
			refs.add(PolicyChargesPriority)
			if balance.IsZero() {
				reasons.add(ReasonFullyPaid)
			}
		default:
			reasons.add(ReasonCashOutExhausted)
		}
	}

	if in.Category == PropertyPrivate && !in.OwnerOccupied {
		reasons.add(ReasonInvestmentRules)
		if in.RentalIncome.IsPositive() {
			reasons.add(ReasonRentalRecognised)
		}
	}

	var band TimingBand
	var guidance string
	switch {
	case months <= 3:
		band = TimingImmediate
		guidance = "Lock-in is expired or about to expire; immediate refinance review advised"
		reasons.add(ReasonTimingImmediate)
		recs.add(RecUrgentReferral)
	case months <= 6:
		band = TimingCritical
		guidance = fmt.Sprintf("Start paperwork now (%d months left) to secure offers before lock-in ends", months)
		reasons.add(ReasonTimingCritical)
	case months <= 18:
		band = TimingPlanning
		guidance = fmt.Sprintf("Monitor packages and prepare documentation with about %d months remaining", months)
		reasons.add(ReasonTimingPlanning)
		recs.add(RecMonitorRates)
	default:
		band = TimingLong
		guidance = "Wait until the penalty period ends before committing to a switch"
		reasons.add(ReasonTimingLong)
		recs.add(RecMonitorRates)
	}

	if in.Objective == ObjectiveCashOut && maxCashOut.IsPositive() {
		recs.add(RecCashOutUtilization)
	}
	if len(recs.list()) == 0 {
		recs.add(RecReview)
	}

	return &RefinanceOutlookResult{
		CurrentMonthlyPayment: currentPayment,
		TargetMonthlyPayment:  targetPayment,
		MonthlySavings:        savings,
		MaxCashOut:            maxCashOut,
		LTVCapPercent:         RoundPercent(ltvCapPercent),
		CPFRedemptionAmount:   cpfRedemption,
		TimingBand:            band,
		TimingGuidance:        guidance,
		Recommendations:       recs.list(),
		ReasonCodes:           reasons.list(),
		PolicyRefs:            refs.list(),
	}, nil
}

func applyRefinanceDefaults(in RefinanceInput) RefinanceInput {
	if in.Objective == "" {
		in.Objective = ObjectiveLowerPayment
	}
	return in
}

func validateRefinance(in RefinanceInput) error {
	if !in.Category.Valid() {
		return validationErr("category", string(in.Category), "unknown property category")
	}
	if !in.Objective.Valid() {
		return validationErr("objective", string(in.Objective), "unknown refinance objective")
	}
	if in.PropertyValue.IsNegative() {
		return validationErr("property_value", in.PropertyValue.String(), "must not be negative")
	}
	if in.OutstandingBalance.IsNegative() {
		return validationErr("outstanding_balance", in.OutstandingBalance.String(), "must not be negative")
	}
	if !in.PropertyValue.IsPositive() && !in.OutstandingBalance.IsPositive() {
		return validationErr("property_value", in.PropertyValue.String(), "property value or outstanding balance required")
	}
	if in.CurrentRatePercent.IsNegative() {
		return validationErr("current_rate_percent", in.CurrentRatePercent.String(), "must not be negative")
	}
	if in.MonthsRemaining < 0 {
		return validationErr("months_remaining", fmt.Sprintf("%d", in.MonthsRemaining), "must not be negative")
	}
	if in.CPFUsed.IsNegative() {
		return validationErr("cpf_used", in.CPFUsed.String(), "must not be negative")
	}
	return nil
}
