/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal decimal-based domain model from the external API contract:
  clients speak float64 JSON, the engine speaks decimal, and the conversion
  happens exactly once in each direction here.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO:     Response types returned to clients

TYPES:
  Eligibility:
    EligibilityRequest, EligibilityResultDTO

  Compliance:
    ComplianceRequest, ComplianceResultDTO

  Refinance:
    RefinanceRequest, RefinanceResultDTO

  History:
    CalculationRecordDTO

  Scenarios:
    ScenarioDTO, ScenarioRunDTO

VALIDATION:
  Validation is done by the engine, not in DTOs. DTOs are pure data
  carriers; a request that decodes is handed straight to the calculator and
  any rule violation comes back as a field-naming validation error.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The domain model these mirror
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian/mortgage-engine/engine"
	"github.com/meridian/mortgage-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ApplicantDTO is one borrower in an eligibility request.
type ApplicantDTO struct {
	Age                int     `json:"age"`
	GrossMonthlyIncome float64 `json:"gross_monthly_income"`
	Employment         string  `json:"employment"`
}

// PropertyDTO describes the property under consideration.
type PropertyDTO struct {
	Price              float64 `json:"price"`
	Category           string  `json:"category"`
	ExistingProperties int     `json:"existing_properties"`
	Residency          string  `json:"residency"`
	OwnerOccupied      bool    `json:"owner_occupied"`
}

// LoanDTO describes the requested loan terms.
type LoanDTO struct {
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TenureYears       int     `json:"tenure_years"`
	Purpose           string  `json:"purpose,omitempty"`
	Tier              string  `json:"tier,omitempty"`
}

// EligibilityRequest is the input to POST /api/calculations/eligibility.
// Credit card balances and overdraft limits are folded into the commitment
// figure using the minimum-payment rules before the calculator runs.
type EligibilityRequest struct {
	Applicants         []ApplicantDTO `json:"applicants"`
	MonthlyCommitments float64        `json:"monthly_commitments"`
	CreditCardBalances []float64      `json:"credit_card_balances,omitempty"`
	OverdraftLimits    []float64      `json:"overdraft_limits,omitempty"`
	Property           PropertyDTO    `json:"property"`
	Loan               LoanDTO        `json:"loan"`
}

// ComplianceRequest is the input to POST /api/calculations/compliance.
type ComplianceRequest struct {
	RecognizedIncome  float64 `json:"recognized_income,omitempty"`
	GrossIncome       float64 `json:"gross_income,omitempty"`
	Employment        string  `json:"employment,omitempty"`
	Commitments       float64 `json:"commitments"`
	Category          string  `json:"category"`
	LoanAmount        float64 `json:"loan_amount"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TenureYears       int     `json:"tenure_years"`
}

// RefinanceRequest is the input to POST /api/calculations/refinance.
type RefinanceRequest struct {
	PropertyValue      float64 `json:"property_value,omitempty"`
	OutstandingBalance float64 `json:"outstanding_balance,omitempty"`
	CurrentRatePercent float64 `json:"current_rate_percent,omitempty"`
	TargetRatePercent  float64 `json:"target_rate_percent,omitempty"`
	MonthsRemaining    int     `json:"months_remaining"`
	Category           string  `json:"category"`
	OwnerOccupied      bool    `json:"owner_occupied"`
	Objective          string  `json:"objective,omitempty"`
	CPFUsed            float64 `json:"cpf_used,omitempty"`
	PropertyAgeYears   int     `json:"property_age_years,omitempty"`
	RentalIncome       float64 `json:"rental_income,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EligibilityResultDTO mirrors engine.EligibilityResult for JSON clients.
type EligibilityResultDTO struct {
	CalculationID      string   `json:"calculation_id,omitempty"`
	Cached             bool     `json:"cached,omitempty"`
	MaxLoan            float64  `json:"max_loan"`
	MaxLTVPercent      float64  `json:"max_ltv_percent"`
	MinCashPercent     float64  `json:"min_cash_percent"`
	ABSDRatePercent    float64  `json:"absd_rate_percent"`
	TDSRAvailable      float64  `json:"tdsr_available"`
	MSRLimit           float64  `json:"msr_limit"`
	MSRApplicable      bool     `json:"msr_applicable"`
	LimitingFactor     string   `json:"limiting_factor"`
	DownPayment        float64  `json:"down_payment"`
	CPFAllowed         bool     `json:"cpf_allowed"`
	CPFAllowedAmount   float64  `json:"cpf_allowed_amount"`
	CPFWithdrawalLimit float64  `json:"cpf_withdrawal_limit"`
	TenureCapYears     int      `json:"tenure_cap_years"`
	TenureCapSource    string   `json:"tenure_cap_source"`
	StressRatePercent  float64  `json:"stress_rate_percent"`
	ReasonCodes        []string `json:"reason_codes"`
	PolicyRefs         []string `json:"policy_refs"`
}

// ComplianceResultDTO mirrors engine.ComplianceResult for JSON clients.
type ComplianceResultDTO struct {
	CalculationID     string   `json:"calculation_id,omitempty"`
	Cached            bool     `json:"cached,omitempty"`
	RecognizedIncome  float64  `json:"recognized_income"`
	MonthlyPayment    float64  `json:"monthly_payment"`
	TDSRLimit         float64  `json:"tdsr_limit"`
	TDSRRatioPercent  float64  `json:"tdsr_ratio_percent"`
	TDSRCompliant     bool     `json:"tdsr_compliant"`
	MSRApplicable     bool     `json:"msr_applicable"`
	MSRLimit          float64  `json:"msr_limit"`
	MSRRatioPercent   float64  `json:"msr_ratio_percent"`
	MSRCompliant      bool     `json:"msr_compliant"`
	LimitingFactor    string   `json:"limiting_factor"`
	StressRatePercent float64  `json:"stress_rate_percent"`
	ReasonCodes       []string `json:"reason_codes"`
	PolicyRefs        []string `json:"policy_refs"`
}

// RefinanceResultDTO mirrors engine.RefinanceOutlookResult for JSON clients.
type RefinanceResultDTO struct {
	CalculationID         string   `json:"calculation_id,omitempty"`
	Cached                bool     `json:"cached,omitempty"`
	CurrentMonthlyPayment float64  `json:"current_monthly_payment"`
	TargetMonthlyPayment  float64  `json:"target_monthly_payment"`
	MonthlySavings        float64  `json:"monthly_savings"`
	MaxCashOut            float64  `json:"max_cash_out"`
	LTVCapPercent         float64  `json:"ltv_cap_percent"`
	CPFRedemptionAmount   float64  `json:"cpf_redemption_amount"`
	TimingBand            string   `json:"timing_band"`
	TimingGuidance        string   `json:"timing_guidance"`
	Recommendations       []string `json:"recommendations"`
	ReasonCodes           []string `json:"reason_codes"`
	PolicyRefs            []string `json:"policy_refs"`
}

// CalculationRecordDTO is one audit record in history responses.
type CalculationRecordDTO struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	LimitingFactor string   `json:"limiting_factor,omitempty"`
	ReasonCodes    []string `json:"reason_codes"`
	Input          any      `json:"input"`
	Output         any      `json:"output"`
	CreatedAt      string   `json:"created_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// ScenarioRunDTO is the response to running a demo scenario.
type ScenarioRunDTO struct {
	Scenario ScenarioDTO `json:"scenario"`
	Result   any         `json:"result"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func decs(vs []float64) []decimal.Decimal {
	if len(vs) == 0 {
		return nil
	}
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = dec(v)
	}
	return out
}

func f(v decimal.Decimal) float64 {
	return v.InexactFloat64()
}

func (r EligibilityRequest) toEngineInput() engine.EligibilityInput {
	applicants := make([]engine.Applicant, len(r.Applicants))
	for i, a := range r.Applicants {
		applicants[i] = engine.Applicant{
			Age:                a.Age,
			GrossMonthlyIncome: dec(a.GrossMonthlyIncome),
			Employment:         engine.EmploymentType(a.Employment),
		}
	}

	commitments := engine.NormalizeCommitments(
		dec(r.MonthlyCommitments),
		decs(r.CreditCardBalances),
		decs(r.OverdraftLimits),
	)

	return engine.EligibilityInput{
		Applicants: engine.ApplicantProfile{
			Applicants:         applicants,
			MonthlyCommitments: commitments,
		},
		Property: engine.PropertyContext{
			Price:              dec(r.Property.Price),
			Category:           engine.PropertyCategory(r.Property.Category),
			ExistingProperties: r.Property.ExistingProperties,
			Residency:          engine.Residency(r.Property.Residency),
			OwnerOccupied:      r.Property.OwnerOccupied,
		},
		Loan: engine.LoanParameters{
			AnnualRatePercent: dec(r.Loan.AnnualRatePercent),
			TenureYears:       r.Loan.TenureYears,
			Purpose:           engine.LoanPurpose(r.Loan.Purpose),
			Tier:              engine.LTVTier(r.Loan.Tier),
		},
	}
}

func (r ComplianceRequest) toEngineInput() engine.ComplianceInput {
	return engine.ComplianceInput{
		RecognizedIncome:  dec(r.RecognizedIncome),
		GrossIncome:       dec(r.GrossIncome),
		Employment:        engine.EmploymentType(r.Employment),
		Commitments:       dec(r.Commitments),
		Category:          engine.PropertyCategory(r.Category),
		LoanAmount:        dec(r.LoanAmount),
		AnnualRatePercent: dec(r.AnnualRatePercent),
		TenureYears:       r.TenureYears,
	}
}

func (r RefinanceRequest) toEngineInput() engine.RefinanceInput {
	return engine.RefinanceInput{
		PropertyValue:      dec(r.PropertyValue),
		OutstandingBalance: dec(r.OutstandingBalance),
		CurrentRatePercent: dec(r.CurrentRatePercent),
		TargetRatePercent:  dec(r.TargetRatePercent),
		MonthsRemaining:    r.MonthsRemaining,
		Category:           engine.PropertyCategory(r.Category),
		OwnerOccupied:      r.OwnerOccupied,
		Objective:          engine.RefinanceObjective(r.Objective),
		CPFUsed:            dec(r.CPFUsed),
		PropertyAgeYears:   r.PropertyAgeYears,
		RentalIncome:       dec(r.RentalIncome),
	}
}

func toEligibilityDTO(res *engine.EligibilityResult) EligibilityResultDTO {
	return EligibilityResultDTO{
		MaxLoan:            f(res.MaxLoan),
		MaxLTVPercent:      f(res.MaxLTVPercent),
		MinCashPercent:     f(res.MinCashPercent),
		ABSDRatePercent:    f(res.ABSDRatePercent),
		TDSRAvailable:      f(res.TDSRAvailable),
		MSRLimit:           f(res.MSRLimit),
		MSRApplicable:      res.MSRApplicable,
		LimitingFactor:     string(res.LimitingFactor),
		DownPayment:        f(res.DownPayment),
		CPFAllowed:         res.CPFAllowed,
		CPFAllowedAmount:   f(res.CPFAllowedAmount),
		CPFWithdrawalLimit: f(res.CPFWithdrawalLimit),
		TenureCapYears:     res.TenureCapYears,
		TenureCapSource:    string(res.TenureCapSource),
		StressRatePercent:  f(res.StressRatePercent),
		ReasonCodes:        res.ReasonCodes,
		PolicyRefs:         res.PolicyRefs,
	}
}

func toComplianceDTO(res *engine.ComplianceResult) ComplianceResultDTO {
	return ComplianceResultDTO{
		RecognizedIncome:  f(res.RecognizedIncome),
		MonthlyPayment:    f(res.MonthlyPayment),
		TDSRLimit:         f(res.TDSRLimit),
		TDSRRatioPercent:  f(res.TDSRRatioPercent),
		TDSRCompliant:     res.TDSRCompliant,
		MSRApplicable:     res.MSRApplicable,
		MSRLimit:          f(res.MSRLimit),
		MSRRatioPercent:   f(res.MSRRatioPercent),
		MSRCompliant:      res.MSRCompliant,
		LimitingFactor:    string(res.LimitingFactor),
		StressRatePercent: f(res.StressRatePercent),
		ReasonCodes:       res.ReasonCodes,
		PolicyRefs:        res.PolicyRefs,
	}
}

func toRefinanceDTO(res *engine.RefinanceOutlookResult) RefinanceResultDTO {
	return RefinanceResultDTO{
		CurrentMonthlyPayment: f(res.CurrentMonthlyPayment),
		TargetMonthlyPayment:  f(res.TargetMonthlyPayment),
		MonthlySavings:        f(res.MonthlySavings),
		MaxCashOut:            f(res.MaxCashOut),
		LTVCapPercent:         f(res.LTVCapPercent),
		CPFRedemptionAmount:   f(res.CPFRedemptionAmount),
		TimingBand:            string(res.TimingBand),
		TimingGuidance:        res.TimingGuidance,
		Recommendations:       res.Recommendations,
		ReasonCodes:           res.ReasonCodes,
		PolicyRefs:            res.PolicyRefs,
	}
}

func toRecordDTO(rec sqlite.CalculationRecord) CalculationRecordDTO {
	return CalculationRecordDTO{
		ID:             rec.ID,
		Kind:           rec.Kind,
		LimitingFactor: rec.LimitingFactor,
		ReasonCodes:    rec.ReasonCodes,
		Input:          rawOrString(rec.InputJSON),
		Output:         rawOrString(rec.OutputJSON),
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
	}
}
