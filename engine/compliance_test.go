package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian/mortgage-engine/engine"
)

func TestCompliance_PrivateLoanWithinBudget(t *testing.T) {
	// GIVEN: 10,000 salaried income, 2,000 commitments, a 500,000 private
	//        loan over 25 years quoted at 3.5%
	in := engine.ComplianceInput{
		GrossIncome:       di(10000),
		Commitments:       di(2000),
		Category:          engine.PropertyPrivate,
		LoanAmount:        di(500000),
		AnnualRatePercent: d(3.5),
		TenureYears:       25,
	}

	// WHEN
	res, err := engine.CalculateCompliance(in)
	require.NoError(t, err)

	// THEN: evaluated at the 4% stress floor, well inside the 55% cap
	equalDec(t, di(10000), res.RecognizedIncome, "salaried income fully recognized")
	equalDec(t, di(3500), res.TDSRLimit, "0.55*10000 - 2000")
	equalDec(t, di(4), res.StressRatePercent, "stress floor")
	if !res.TDSRCompliant {
		t.Errorf("payment %s should sit inside budget %s", res.MonthlyPayment, res.TDSRLimit)
	}
	if res.MSRApplicable {
		t.Error("housing ratio must not apply to private property")
	}
	if res.LimitingFactor != engine.LimitLTV {
		t.Errorf("fully compliant snapshot reports the neutral ltv label, got %s", res.LimitingFactor)
	}
	if res.TDSRRatioPercent.GreaterThan(di(55)) {
		t.Errorf("ratio %s should be under the cap", res.TDSRRatioPercent)
	}
	if !hasCode(res.PolicyRefs, engine.PolicyTDSR) {
		t.Errorf("servicing policy ref always present: %v", res.PolicyRefs)
	}
}

func TestCompliance_HDBHousingRatioBreach(t *testing.T) {
	// GIVEN: an HDB loan whose stress payment clears the 55% cap but not
	//        the 30% housing cap
	in := engine.ComplianceInput{
		GrossIncome:       di(8000),
		Commitments:       di(500),
		Category:          engine.PropertyHDB,
		LoanAmount:        di(500000),
		AnnualRatePercent: d(2.8),
		TenureYears:       25,
	}

	res, err := engine.CalculateCompliance(in)
	require.NoError(t, err)

	equalDec(t, di(2400), res.MSRLimit, "0.30*8000")
	equalDec(t, di(3900), res.TDSRLimit, "0.55*8000 - 500")
	if !res.MSRApplicable {
		t.Error("housing ratio applies to HDB")
	}
	if !res.TDSRCompliant {
		t.Errorf("general ratio should pass: payment %s vs %s", res.MonthlyPayment, res.TDSRLimit)
	}
	if res.MSRCompliant {
		t.Errorf("housing ratio should breach: payment %s vs %s", res.MonthlyPayment, res.MSRLimit)
	}
	if res.LimitingFactor != engine.LimitMSR {
		t.Errorf("limiting factor: want msr, got %s", res.LimitingFactor)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonMSRExceeded) || !hasCode(res.ReasonCodes, engine.ReasonMSRApplied) {
		t.Errorf("missing housing-ratio codes: %v", res.ReasonCodes)
	}
	if hasCode(res.ReasonCodes, engine.ReasonTDSRExceeded) {
		t.Errorf("general ratio did not breach: %v", res.ReasonCodes)
	}
	if !hasCode(res.PolicyRefs, engine.PolicyMSR) {
		t.Errorf("missing housing policy ref: %v", res.PolicyRefs)
	}
}

func TestCompliance_BothRatiosBreach(t *testing.T) {
	// GIVEN: commitments alone exceed 55% of income
	in := engine.ComplianceInput{
		GrossIncome:       di(4000),
		Commitments:       di(3000),
		Category:          engine.PropertyHDB,
		LoanAmount:        di(300000),
		AnnualRatePercent: d(2.8),
		TenureYears:       25,
	}

	res, err := engine.CalculateCompliance(in)
	require.NoError(t, err)

	// THEN: a breach is a result, not an error; both codes are present
	if res.TDSRCompliant || res.MSRCompliant {
		t.Errorf("both ratios should breach: tdsr=%v msr=%v", res.TDSRCompliant, res.MSRCompliant)
	}
	if res.LimitingFactor != engine.LimitTDSR {
		t.Errorf("the general ratio takes precedence when both breach, got %s", res.LimitingFactor)
	}
	if !hasCode(res.ReasonCodes, engine.ReasonTDSRExceeded) || !hasCode(res.ReasonCodes, engine.ReasonMSRExceeded) {
		t.Errorf("both breach codes expected: %v", res.ReasonCodes)
	}
	equalDec(t, di(-800), res.TDSRLimit, "negative budget reported as-is")
}

func TestCompliance_IncomeRecognition(t *testing.T) {
	cases := []struct {
		name       string
		employment engine.EmploymentType
		gross      int64
		recognized int64
		limit      int64
		flagged    bool
	}{
		{"variable income haircut", engine.EmploymentVariableIncome, 10000, 7000, 3850, true},
		{"self-employed haircut", engine.EmploymentSelfEmployed, 15000, 10500, 5775, true},
		{"salaried full recognition", engine.EmploymentSalaried, 10000, 10000, 5500, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := engine.CalculateCompliance(engine.ComplianceInput{
				GrossIncome:       di(tc.gross),
				Employment:        tc.employment,
				Category:          engine.PropertyPrivate,
				LoanAmount:        di(300000),
				AnnualRatePercent: d(3.0),
				TenureYears:       25,
			})
			require.NoError(t, err)

			equalDec(t, di(tc.recognized), res.RecognizedIncome, "recognized income")
			equalDec(t, di(tc.limit), res.TDSRLimit, "servicing budget")
			if got := hasCode(res.ReasonCodes, engine.ReasonVariableIncome); got != tc.flagged {
				t.Errorf("income-discount code present=%v, want %v (%v)", got, tc.flagged, res.ReasonCodes)
			}
		})
	}
}

func TestCompliance_PreRecognizedIncomeUsedAsIs(t *testing.T) {
	// A caller that already applied recognition passes the figure directly.
	res, err := engine.CalculateCompliance(engine.ComplianceInput{
		RecognizedIncome:  di(7000),
		Commitments:       di(1000),
		Category:          engine.PropertyPrivate,
		LoanAmount:        di(300000),
		AnnualRatePercent: d(3.0),
		TenureYears:       25,
	})
	require.NoError(t, err)

	equalDec(t, di(7000), res.RecognizedIncome, "supplied figure untouched")
	equalDec(t, di(2850), res.TDSRLimit, "0.55*7000 - 1000")
}

func TestCompliance_QuotedRateAboveFloor(t *testing.T) {
	res, err := engine.CalculateCompliance(engine.ComplianceInput{
		GrossIncome:       di(12000),
		Category:          engine.PropertyPrivate,
		LoanAmount:        di(400000),
		AnnualRatePercent: d(5.1),
		TenureYears:       20,
	})
	require.NoError(t, err)

	equalDec(t, d(5.1), res.StressRatePercent, "quoted rate above the floor is used")
	if !hasCode(res.ReasonCodes, engine.ReasonStressRateQuoted) {
		t.Errorf("missing quoted-rate code: %v", res.ReasonCodes)
	}
}

func TestCompliance_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   engine.ComplianceInput
	}{
		{"unknown category", engine.ComplianceInput{
			GrossIncome: di(8000), Category: "houseboat",
			LoanAmount: di(100000), TenureYears: 20,
		}},
		{"zero loan", engine.ComplianceInput{
			GrossIncome: di(8000), Category: engine.PropertyHDB,
			LoanAmount: decimal.Zero, TenureYears: 20,
		}},
		{"zero tenure", engine.ComplianceInput{
			GrossIncome: di(8000), Category: engine.PropertyHDB,
			LoanAmount: di(100000), TenureYears: 0,
		}},
		{"no income at all", engine.ComplianceInput{
			Category:   engine.PropertyHDB,
			LoanAmount: di(100000), TenureYears: 20,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CalculateCompliance(tc.in)
			if err == nil || !engine.IsValidationError(err) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}
