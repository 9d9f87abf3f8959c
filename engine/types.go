/*
Package engine provides the mortgage eligibility and compliance calculation engine.

PURPOSE:
  This package contains the pure numeric core of the system: three calculators
  that evaluate a prospective borrower against MAS-style lending regulation.
  Whether the caller is the intake form, the audit store, or the conversational
  assistant, the same deterministic functions produce the same answers.

KEY CONCEPTS IN THIS FILE (types.go):
  - ApplicantProfile: One or two applicants with age, income and employment
  - PropertyContext: Price, category, residency, existing-property count
  - LoanParameters: Amount, rate, tenure, purpose and selected LTV tier
  - Results: EligibilityResult, ComplianceResult, RefinanceOutlookResult
  - Reason codes / policy refs: machine-readable audit justification

DESIGN PRINCIPLES:
  1. Purity: No I/O, no state, no clocks. Identical input, identical output.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors in money.
  3. Closed enumerations: Property categories, residency classes, employment
     types and LTV tiers are tagged constants, never free-form strings.
  4. Auditability: Every constrained outcome carries at least one reason code
     from the fixed vocabulary and at least one policy reference.

USAGE:
  result, err := engine.CalculateEligibility(engine.EligibilityInput{
      Applicants: engine.ApplicantProfile{
          Applicants: []engine.Applicant{{Age: 35, GrossMonthlyIncome: d(10000), Employment: engine.EmploymentSalaried}},
          MonthlyCommitments: d(500),
      },
      Property: engine.PropertyContext{Price: d(1000000), Category: engine.PropertyPrivate, Residency: engine.ResidencyCitizen},
      Loan:     engine.LoanParameters{AnnualRatePercent: d(3.6), TenureYears: 25, Purpose: engine.PurposeNewPurchase, Tier: engine.TierStandard},
  })

SEE ALSO:
  - tables.go: Regulatory lookup tables (LTV, ABSD, tenure, stress floors)
  - eligibility.go / compliance.go / refinance.go: The three calculators
  - income.go: Income recognition, commitment normalization, IWAA
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOSED ENUMERATIONS
// =============================================================================

// PropertyCategory is the closed set of property categories the engine knows.
// Adding a category is a deliberate change: every table in tables.go and every
// switch in the calculators must be extended.
type PropertyCategory string

const (
	PropertyHDB        PropertyCategory = "hdb"        // Public housing (resale or new)
	PropertyEC         PropertyCategory = "ec"         // Executive condominium
	PropertyPrivate    PropertyCategory = "private"    // Private residential
	PropertyCommercial PropertyCategory = "commercial" // Commercial / non-residential
)

// Valid reports whether the category is one of the known constants.
func (c PropertyCategory) Valid() bool {
	switch c {
	case PropertyHDB, PropertyEC, PropertyPrivate, PropertyCommercial:
		return true
	}
	return false
}

// HousingRatioApplies reports whether the housing-specific servicing ratio
// (MSR) is evaluated for this category. Only HDB and EC.
func (c PropertyCategory) HousingRatioApplies() bool {
	return c == PropertyHDB || c == PropertyEC
}

// Residency is the buyer's residency class for stamp-duty purposes.
type Residency string

const (
	ResidencyCitizen   Residency = "citizen"
	ResidencyPR        Residency = "pr"
	ResidencyForeigner Residency = "foreigner"
)

func (r Residency) Valid() bool {
	switch r {
	case ResidencyCitizen, ResidencyPR, ResidencyForeigner:
		return true
	}
	return false
}

// EmploymentType selects the income-recognition rate for an applicant.
type EmploymentType string

const (
	EmploymentSalaried       EmploymentType = "salaried"        // Fixed income, full recognition
	EmploymentSelfEmployed   EmploymentType = "self_employed"   // Reduced recognition
	EmploymentVariableIncome EmploymentType = "variable_income" // Commission / contract, reduced recognition
	EmploymentNotWorking     EmploymentType = "not_working"     // Zero recognition
)

func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentSalaried, EmploymentSelfEmployed, EmploymentVariableIncome, EmploymentNotWorking:
		return true
	}
	return false
}

// LoanPurpose distinguishes purchases from refinances. Stamp-duty surcharge
// applies only to purchases.
type LoanPurpose string

const (
	PurposeNewPurchase LoanPurpose = "new_purchase"
	PurposeRefinance   LoanPurpose = "refinance"
)

func (p LoanPurpose) Valid() bool {
	return p == PurposeNewPurchase || p == PurposeRefinance
}

// LTVTier is the borrower-selected loan-to-value tier. The extended tier
// trades a lower LTV ceiling for a longer statutory tenure ceiling.
type LTVTier string

const (
	TierStandard LTVTier = "standard" // 75% ceiling, standard tenure
	TierExtended LTVTier = "extended" // 55% ceiling, extended tenure
)

func (t LTVTier) Valid() bool {
	return t == TierStandard || t == TierExtended
}

// RefinanceObjective is the borrower's stated goal for a refinance.
type RefinanceObjective string

const (
	ObjectiveLowerPayment  RefinanceObjective = "lower_payment"
	ObjectiveShortenTenure RefinanceObjective = "shorten_tenure"
	ObjectiveRateCertainty RefinanceObjective = "rate_certainty"
	ObjectiveCashOut       RefinanceObjective = "cash_out"
)

func (o RefinanceObjective) Valid() bool {
	switch o {
	case ObjectiveLowerPayment, ObjectiveShortenTenure, ObjectiveRateCertainty, ObjectiveCashOut:
		return true
	}
	return false
}

// LimitingFactor labels the binding constraint of a calculation.
type LimitingFactor string

const (
	LimitTDSR LimitingFactor = "tdsr" // General debt-servicing ratio binds
	LimitMSR  LimitingFactor = "msr"  // Housing-specific ratio binds
	LimitLTV  LimitingFactor = "ltv"  // Loan-to-value ceiling binds
)

// TenureCapSource records which bound produced the tenure cap.
type TenureCapSource string

const (
	TenureCapByAge        TenureCapSource = "age"        // Retirement cutoff minus IWAA
	TenureCapByRegulation TenureCapSource = "regulation" // Statutory ceiling for category/tier
)

// TimingBand classifies how far away the refinance window is.
type TimingBand string

const (
	TimingImmediate TimingBand = "immediate" // Lock-in expired or about to
	TimingCritical  TimingBand = "critical"  // Start paperwork now
	TimingPlanning  TimingBand = "planning"  // Monitor and prepare
	TimingLong      TimingBand = "long"      // Wait out the penalty period
)

// =============================================================================
// INPUTS
// =============================================================================

// Applicant is a single borrower. Age is in whole years; income is gross
// monthly income before recognition.
type Applicant struct {
	Age                int
	GrossMonthlyIncome decimal.Decimal
	Employment         EmploymentType
}

// ApplicantProfile holds one or two applicants plus their combined normalized
// monthly commitments. For joint applicants the income-weighted average age
// drives the tenure cap; see IWAA in income.go.
type ApplicantProfile struct {
	Applicants         []Applicant
	MonthlyCommitments decimal.Decimal
}

// Primary returns the first applicant. The zero Applicant is returned for an
// empty profile; validation catches that before any arithmetic runs.
func (p ApplicantProfile) Primary() Applicant {
	if len(p.Applicants) == 0 {
		return Applicant{}
	}
	return p.Applicants[0]
}

// PropertyContext describes the property under consideration.
type PropertyContext struct {
	Price              decimal.Decimal // Purchase price or market value
	Category           PropertyCategory
	ExistingProperties int // Properties the buyer already owns
	Residency          Residency
	OwnerOccupied      bool
}

// LoanParameters describes the requested or outstanding loan.
type LoanParameters struct {
	Amount            decimal.Decimal // Requested or outstanding amount
	AnnualRatePercent decimal.Decimal // Quoted nominal rate, e.g. 3.6
	TenureYears       int
	Purpose           LoanPurpose
	Tier              LTVTier // Defaults to TierStandard when empty
}

// EligibilityInput is the full input to the Eligibility Profile Calculator.
type EligibilityInput struct {
	Applicants ApplicantProfile
	Property   PropertyContext
	Loan       LoanParameters
}

// ComplianceInput is the input to the Compliance Snapshot Calculator.
// Either RecognizedIncome is supplied directly, or GrossIncome plus
// Employment and the engine derives recognition itself.
type ComplianceInput struct {
	RecognizedIncome  decimal.Decimal // Optional; used as-is when positive
	GrossIncome       decimal.Decimal
	Employment        EmploymentType // Defaults to EmploymentSalaried when empty
	Commitments       decimal.Decimal
	Category          PropertyCategory
	LoanAmount        decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TenureYears       int
}

// RefinanceInput is the input to the Refinance Outlook Calculator.
type RefinanceInput struct {
	PropertyValue      decimal.Decimal
	OutstandingBalance decimal.Decimal
	CurrentRatePercent decimal.Decimal // Zero means unknown; a conservative estimate is used
	MonthsRemaining    int             // Months left in the lock-in period
	Category           PropertyCategory
	OwnerOccupied      bool
	Objective          RefinanceObjective // Defaults to ObjectiveLowerPayment when empty
	CPFUsed            decimal.Decimal    // Retirement savings already drawn on the property
	PropertyAgeYears   int                // Years held; zero means unknown
	RentalIncome       decimal.Decimal
	TargetRatePercent  decimal.Decimal // Optional override for the reference rate
}

// =============================================================================
// RESULTS
// =============================================================================

// EligibilityResult is the output of the Eligibility Profile Calculator.
// MaxLoan is rounded DOWN to the nearest thousand; DownPayment UP.
type EligibilityResult struct {
	MaxLoan            decimal.Decimal
	MaxLTVPercent      decimal.Decimal
	MinCashPercent     decimal.Decimal
	ABSDRatePercent    decimal.Decimal
	TDSRAvailable      decimal.Decimal // Monthly servicing budget after commitments
	MSRLimit           decimal.Decimal // Populated only for HDB/EC
	MSRApplicable      bool
	LimitingFactor     LimitingFactor
	DownPayment        decimal.Decimal
	CPFAllowed         bool
	CPFAllowedAmount   decimal.Decimal
	CPFWithdrawalLimit decimal.Decimal
	TenureCapYears     int
	TenureCapSource    TenureCapSource
	StressRatePercent  decimal.Decimal
	ReasonCodes        []string
	PolicyRefs         []string
}

// ComplianceResult is the output of the Compliance Snapshot Calculator.
// Ratio fields are percentages rounded to two decimal places. The housing
// ratio fields are populated only when MSRApplicable is true.
type ComplianceResult struct {
	RecognizedIncome  decimal.Decimal
	MonthlyPayment    decimal.Decimal // At the stress rate, rounded up to $1
	TDSRLimit         decimal.Decimal // Currency budget: 0.55*income - commitments
	TDSRRatioPercent  decimal.Decimal
	TDSRCompliant     bool
	MSRApplicable     bool
	MSRLimit          decimal.Decimal
	MSRRatioPercent   decimal.Decimal
	MSRCompliant      bool
	LimitingFactor    LimitingFactor
	StressRatePercent decimal.Decimal
	ReasonCodes       []string
	PolicyRefs        []string
}

// RefinanceOutlookResult is the output of the Refinance Outlook Calculator.
// MonthlySavings may be negative (shortened tenure raises the payment) and is
// reported as-is.
type RefinanceOutlookResult struct {
	CurrentMonthlyPayment decimal.Decimal
	TargetMonthlyPayment  decimal.Decimal
	MonthlySavings        decimal.Decimal
	MaxCashOut            decimal.Decimal
	LTVCapPercent         decimal.Decimal
	CPFRedemptionAmount   decimal.Decimal // Principal plus accrued interest
	TimingBand            TimingBand
	TimingGuidance        string
	Recommendations       []string
	ReasonCodes           []string
	PolicyRefs            []string
}

// =============================================================================
// REASON CODE VOCABULARY
// =============================================================================
// Fixed vocabulary. Downstream consumers key UI copy and assistant
// explanations off these strings, so they are append-only.

const (
	ReasonLTVBinding        = "ltv_binding"
	ReasonTDSRBinding       = "tdsr_binding"
	ReasonMSRBinding        = "msr_binding"
	ReasonLTVFirstLoan      = "ltv_first_loan"
	ReasonLTVSecondLoan     = "ltv_second_loan"
	ReasonLTVThirdLoan      = "ltv_third_loan"
	ReasonLTVReducedAge     = "ltv_reduced_age_trigger"
	ReasonTDSRExceeded      = "tdsr_exceeded"
	ReasonMSRExceeded       = "msr_exceeded"
	ReasonMSRApplied        = "msr_applied"
	ReasonStressRateQuoted  = "stress_rate_quoted_applied"
	ReasonTenureCapAge      = "tenure_cap_age_limit"
	ReasonTenureCapProperty = "tenure_cap_property_limit"
	ReasonTenureCapStandard = "tenure_cap_standard_limit"
	ReasonABSDApplies       = "absd_applies"
	ReasonCPFNotAllowed     = "cpf_not_allowed"
	ReasonVariableIncome    = "variable_income_recognition"
	ReasonNoRecognizedInc   = "no_recognized_income"

	// Refinance codes
	ReasonRateEstimated       = "current_rate_estimated"
	ReasonRateSavings         = "rate_differential_savings"
	ReasonRateCertainty       = "rate_certainty_analysis"
	ReasonCashOutAllowed      = "private_property_cash_out_allowed"
	ReasonCashOutCategory     = "hdb_cash_out_not_allowed"
	ReasonCashOutExhausted    = "high_ltv_no_cash_out"
	ReasonNegativeEquity      = "negative_equity_no_refinance"
	ReasonFullyPaid           = "fully_paid_property"
	ReasonInvestmentRules     = "investment_property_rules"
	ReasonRentalRecognised    = "rental_income_recognised"
	ReasonCPFAccruedInterest  = "cpf_accrued_interest_considered"
	ReasonCPFCommercial       = "cpf_not_allowed_commercial"
	ReasonTimingImmediate     = "timing_immediate_window"
	ReasonTimingCritical      = "timing_critical_window"
	ReasonTimingPlanning      = "timing_planning_window"
	ReasonTimingLong          = "timing_long_window"
)

// Recommendation codes emitted by the refinance calculator.
const (
	RecUrgentReferral     = "urgent_referral"
	RecMonitorRates       = "monitor_rates"
	RecLowerPayment       = "lower_payment_strategy"
	RecTenureReduction    = "tenure_reduction_strategy"
	RecHigherPayment      = "higher_payment_shorter_tenure"
	RecRateCertainty      = "rate_certainty_benefits"
	RecCashOutUtilization = "cash_out_equity_utilization"
	RecReview             = "review_recommended"
)

// Policy references name the regulatory instrument a figure came from.
const (
	PolicyTDSR             = "MAS Notice 645"
	PolicyMSR              = "MAS Notice 632"
	PolicyABSD             = "IRAS ABSD Rates"
	PolicyTenureHDB        = "mas_tenure_cap_hdb"
	PolicyTenurePrivate    = "mas_tenure_cap_private"
	PolicyTenureCommercial = "mas_tenure_cap_commercial"
	PolicyIncomeRecog      = "MAS Income Recognition Guidelines"
	PolicyCPFInterest      = "cpf_accrued_interest"
	PolicySaleProceeds     = "sale_proceeds_order"
	PolicyChargesPriority  = "charges_priority"
)

// =============================================================================
// CODE SET - ordered, de-duplicated reason/policy accumulation
// =============================================================================

// codeSet accumulates reason codes or policy refs preserving first-insertion
// order. Deterministic output ordering is part of the audit contract.
type codeSet struct {
	seen  map[string]bool
	codes []string
}

func newCodeSet() *codeSet {
	return &codeSet{seen: make(map[string]bool)}
}

func (s *codeSet) add(code string) {
	if s.seen[code] {
		return
	}
	s.seen[code] = true
	s.codes = append(s.codes, code)
}

func (s *codeSet) list() []string {
	if s.codes == nil {
		return []string{}
	}
	return s.codes
}
