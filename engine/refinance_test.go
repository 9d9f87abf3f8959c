package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian/mortgage-engine/engine"
)

// =============================================================================
// CASH-OUT CAPACITY
// =============================================================================

func TestRefinance_PrivateOwnerOccupied_CashOut(t *testing.T) {
	// GIVEN: a 1,000,000 condo with 600,000 outstanding and no CPF drawn
	in := engine.RefinanceInput{
		PropertyValue:      di(1000000),
		OutstandingBalance: di(600000),
		CurrentRatePercent: d(4.2),
		MonthsRemaining:    12,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
	}

	// WHEN
	res, err := engine.CalculateRefinanceOutlook(in)
	require.NoError(t, err)

	// THEN: 75% cap leaves 750,000 - 600,000 = 150,000 of equity
	equalDec(t, di(150000), res.MaxCashOut, "cash-out capacity")
	equalDec(t, di(75), res.LTVCapPercent, "owner-occupied cap")
	if !hasCode(res.ReasonCodes, engine.ReasonCashOutAllowed) {
		t.Errorf("missing cash-out code: %v", res.ReasonCodes)
	}
	if res.TimingBand != engine.TimingPlanning {
		t.Errorf("12 months left: want planning band, got %s", res.TimingBand)
	}
	// 4.2% current vs the 2.8% reference rate must save money
	if !res.MonthlySavings.IsPositive() {
		t.Errorf("savings should be positive: %s", res.MonthlySavings)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonRateSavings) {
		t.Errorf("missing savings code: %v", res.ReasonCodes)
	}
	if !thousandMultiple(res.MaxCashOut) {
		t.Errorf("cash-out rounds down to a thousand: %s", res.MaxCashOut)
	}
}

func TestRefinance_HDB_NoCashOut(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(600000),
		OutstandingBalance: di(300000),
		CurrentRatePercent: d(2.6),
		MonthsRemaining:    10,
		Category:           engine.PropertyHDB,
		OwnerOccupied:      true,
	})
	require.NoError(t, err)

	equalDec(t, decimal.Zero, res.MaxCashOut, "no HDB cash-out")
	equalDec(t, decimal.Zero, res.LTVCapPercent, "no bank refinance cap for HDB")
	if !hasCode(res.ReasonCodes, engine.ReasonCashOutCategory) {
		t.Errorf("zero capacity must name its cause: %v", res.ReasonCodes)
	}
}

func TestRefinance_NegativeEquity(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(500000),
		OutstandingBalance: di(600000),
		CurrentRatePercent: d(4.0),
		MonthsRemaining:    8,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
	})
	require.NoError(t, err)

	equalDec(t, decimal.Zero, res.MaxCashOut, "underwater loan has no capacity")
	if !hasCode(res.ReasonCodes, engine.ReasonNegativeEquity) {
		t.Errorf("missing negative-equity code: %v", res.ReasonCodes)
	}
}

func TestRefinance_InvestmentProperty_TighterCap(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(1000000),
		OutstandingBalance: di(600000),
		CurrentRatePercent: d(4.0),
		MonthsRemaining:    12,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      false,
		RentalIncome:       di(3500),
	})
	require.NoError(t, err)

	// 70% cap leaves 700,000 - 600,000 = 100,000
	equalDec(t, di(100000), res.MaxCashOut, "investment cash-out capacity")
	equalDec(t, di(70), res.LTVCapPercent, "investment cap")
	if !hasCode(res.ReasonCodes, engine.ReasonInvestmentRules) {
		t.Errorf("missing investment code: %v", res.ReasonCodes)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonRentalRecognised) {
		t.Errorf("missing rental code: %v", res.ReasonCodes)
	}
}

func TestRefinance_CPFRedemption_ReducesCapacity(t *testing.T) {
	// GIVEN: a fully paid condo with 200,000 of CPF drawn 5 years ago
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:    di(1000000),
		CPFUsed:          di(200000),
		PropertyAgeYears: 5,
		MonthsRemaining:  2,
		Category:         engine.PropertyPrivate,
		OwnerOccupied:    true,
	})
	require.NoError(t, err)

	// THEN: the redemption is principal plus monthly-compounded 2.5% accrual
	if !res.CPFRedemptionAmount.GreaterThan(di(200000)) {
		t.Errorf("redemption must exceed the principal: %s", res.CPFRedemptionAmount)
	}
	if res.CPFRedemptionAmount.GreaterThan(di(230000)) {
		t.Errorf("five years of 2.5%% accrual is under 15%%: %s", res.CPFRedemptionAmount)
	}
	want := engine.RoundLoanEligibility(di(750000).Sub(res.CPFRedemptionAmount))
	equalDec(t, want, res.MaxCashOut, "capacity net of redemption")
	if !hasCode(res.ReasonCodes, engine.ReasonCPFAccruedInterest) {
		t.Errorf("missing accrual code: %v", res.ReasonCodes)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonFullyPaid) {
		t.Errorf("missing fully-paid code: %v", res.ReasonCodes)
	}
	if !hasCode(res.PolicyRefs, engine.PolicyCPFInterest) {
		t.Errorf("missing accrual policy ref: %v", res.PolicyRefs)
	}
}

// =============================================================================
// SAVINGS AND OBJECTIVES
// =============================================================================

func TestRefinance_UnknownCurrentRate_IsEstimated(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(900000),
		OutstandingBalance: di(500000),
		MonthsRemaining:    12,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
	})
	require.NoError(t, err)

	// Estimated 3.5% against the 2.8% reference still saves
	if !res.MonthlySavings.IsPositive() {
		t.Errorf("estimated-rate savings should be positive: %s", res.MonthlySavings)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonRateEstimated) {
		t.Errorf("estimation must be disclosed: %v", res.ReasonCodes)
	}
}

func TestRefinance_ShortenTenure_NegativeSavingsReported(t *testing.T) {
	// GIVEN: a modest rate gap and a five-year tenure cut
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(900000),
		OutstandingBalance: di(500000),
		CurrentRatePercent: d(3.0),
		MonthsRemaining:    240,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
		Objective:          engine.ObjectiveShortenTenure,
	})
	require.NoError(t, err)

	// THEN: the higher payment is reported as negative savings, not hidden
	if !res.MonthlySavings.IsNegative() {
		t.Errorf("a shortened tenure should raise the payment: savings %s", res.MonthlySavings)
	}
	if !res.TargetMonthlyPayment.GreaterThan(res.CurrentMonthlyPayment) {
		t.Errorf("target %s should exceed current %s", res.TargetMonthlyPayment, res.CurrentMonthlyPayment)
	}
	if !hasCode(res.Recommendations, engine.RecTenureReduction) || !hasCode(res.Recommendations, engine.RecHigherPayment) {
		t.Errorf("missing tenure recommendations: %v", res.Recommendations)
	}
}

func TestRefinance_RateCertaintyObjective(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(800000),
		OutstandingBalance: di(400000),
		CurrentRatePercent: d(3.2),
		MonthsRemaining:    9,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
		Objective:          engine.ObjectiveRateCertainty,
	})
	require.NoError(t, err)

	if !hasCode(res.Recommendations, engine.RecRateCertainty) {
		t.Errorf("missing rate-certainty recommendation: %v", res.Recommendations)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonRateCertainty) {
		t.Errorf("missing rate-certainty code: %v", res.ReasonCodes)
	}
}

func TestRefinance_CashOutObjective_FlagsUtilization(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(1200000),
		OutstandingBalance: di(500000),
		CurrentRatePercent: d(3.8),
		MonthsRemaining:    4,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
		Objective:          engine.ObjectiveCashOut,
	})
	require.NoError(t, err)

	equalDec(t, di(400000), res.MaxCashOut, "75% of 1.2M minus 500k")
	if !hasCode(res.Recommendations, engine.RecCashOutUtilization) {
		t.Errorf("missing utilization recommendation: %v", res.Recommendations)
	}
}

// =============================================================================
// TIMING BANDS
// =============================================================================

func TestRefinance_TimingBands(t *testing.T) {
	cases := []struct {
		months int
		band   engine.TimingBand
		code   string
	}{
		{2, engine.TimingImmediate, engine.ReasonTimingImmediate},
		{5, engine.TimingCritical, engine.ReasonTimingCritical},
		{12, engine.TimingPlanning, engine.ReasonTimingPlanning},
		{18, engine.TimingPlanning, engine.ReasonTimingPlanning},
		{24, engine.TimingLong, engine.ReasonTimingLong},
	}

	for _, tc := range cases {
		res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
			PropertyValue:      di(800000),
			OutstandingBalance: di(400000),
			CurrentRatePercent: d(3.5),
			MonthsRemaining:    tc.months,
			Category:           engine.PropertyPrivate,
			OwnerOccupied:      true,
		})
		require.NoError(t, err)

		if res.TimingBand != tc.band {
			t.Errorf("%d months: want band %s, got %s", tc.months, tc.band, res.TimingBand)
		}
		if !hasCode(res.ReasonCodes, tc.code) {
			t.Errorf("%d months: missing code %s in %v", tc.months, tc.code, res.ReasonCodes)
		}
		if res.TimingGuidance == "" {
			t.Errorf("%d months: guidance text required", tc.months)
		}
	}
}

func TestRefinance_ImmediateBand_UrgentReferral(t *testing.T) {
	res, err := engine.CalculateRefinanceOutlook(engine.RefinanceInput{
		PropertyValue:      di(800000),
		OutstandingBalance: di(400000),
		CurrentRatePercent: d(3.5),
		MonthsRemaining:    0,
		Category:           engine.PropertyPrivate,
		OwnerOccupied:      true,
	})
	require.NoError(t, err)

	if res.TimingBand != engine.TimingImmediate {
		t.Errorf("expired lock-in: want immediate, got %s", res.TimingBand)
	}
	if !hasCode(res.Recommendations, engine.RecUrgentReferral) {
		t.Errorf("missing urgent referral: %v", res.Recommendations)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestRefinance_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   engine.RefinanceInput
	}{
		{"unknown category", engine.RefinanceInput{
			PropertyValue: di(500000), Category: "yacht",
		}},
		{"unknown objective", engine.RefinanceInput{
			PropertyValue: di(500000), Category: engine.PropertyPrivate, Objective: "win",
		}},
		{"neither value nor balance", engine.RefinanceInput{
			Category: engine.PropertyPrivate,
		}},
		{"negative cpf", engine.RefinanceInput{
			PropertyValue: di(500000), Category: engine.PropertyPrivate, CPFUsed: di(-1),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CalculateRefinanceOutlook(tc.in)
			if err == nil || !engine.IsValidationError(err) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}
