/*
scenarios.go - Demo scenario definitions

PURPOSE:
  Ships a set of named, pre-built calculator inputs so the service can be
  demonstrated (and smoke-tested) without hand-crafting request bodies.
  Each scenario is a realistic borrower situation chosen to light up a
  different part of the rule tables.

SCENARIOS:
  Eligibility:
    first-home-hdb       First HDB flat, housing ratio in play
    private-upgrader     Second property, tighter tier plus surcharge
    foreign-investor     Flat surcharge, no CPF
    senior-borrower      Age trigger reduces the LTV ceiling
    commercial-purchase  Flat 60% ceiling, 5% stress floor
    joint-applicants     Income-weighted average age

  Compliance:
    stretched-budget     Commitments breach the general ratio
    hdb-msr-check        Housing ratio evaluated alongside the general one

  Refinance:
    cash-out-equity      Private property with extractable equity
    lock-in-expiring     Immediate timing window
    tenure-crunch        Shortened tenure raises the payment

RUNNING:
  Scenario runs go through the same engine path as client requests,
  including audit records, so a demo run is indistinguishable from a real
  one in the history listing.

SEE ALSO:
  - handlers.go: Shared audit and response plumbing
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian/mortgage-engine/engine"
	"github.com/meridian/mortgage-engine/store/sqlite"
)

// Scenario is one named demo input. Exactly one of the three input fields
// is set, matching Kind.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Kind        string

	Eligibility *engine.EligibilityInput
	Compliance  *engine.ComplianceInput
	Refinance   *engine.RefinanceInput
}

func (s Scenario) dto() ScenarioDTO {
	return ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description, Kind: s.Kind}
}

// scenarios is the fixed demo catalog, in display order.
var scenarios = []Scenario{
	{
		ID:          "first-home-hdb",
		Name:        "First HDB Flat",
		Description: "Young couple's first flat; the housing ratio and the LTV ceiling land close together",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profile(applicant(32, 8000, engine.EmploymentSalaried)),
			Property:   property(600000, engine.PropertyHDB, 0, engine.ResidencyCitizen),
			Loan:       loan(2.6, 25),
		},
	},
	{
		ID:          "private-upgrader",
		Name:        "Private Property Upgrader",
		Description: "Second property while keeping the first: tighter LTV tier plus stamp duty surcharge",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profileWithCommitments(2000, applicant(35, 20000, engine.EmploymentSalaried)),
			Property:   property(1500000, engine.PropertyPrivate, 1, engine.ResidencyCitizen),
			Loan:       loan(3.8, 25),
		},
	},
	{
		ID:          "foreign-investor",
		Name:        "Foreign Investor",
		Description: "Foreign buyer: flat surcharge rate and no retirement-savings usage",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profile(applicant(40, 30000, engine.EmploymentSalaried)),
			Property:   property(2000000, engine.PropertyPrivate, 0, engine.ResidencyForeigner),
			Loan:       loan(3.5, 25),
		},
	},
	{
		ID:          "senior-borrower",
		Name:        "Senior Borrower",
		Description: "Requested tenure runs past the retirement cutoff, reducing the LTV ceiling",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profileWithCommitments(1000, applicant(45, 12000, engine.EmploymentSalaried)),
			Property:   property(800000, engine.PropertyPrivate, 0, engine.ResidencyCitizen),
			Loan:       loan(3.2, 30),
		},
	},
	{
		ID:          "commercial-purchase",
		Name:        "Commercial Unit Purchase",
		Description: "Shophouse purchase: flat ceiling, higher stress floor, no retirement savings",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profileWithCommitments(5000, applicant(38, 25000, engine.EmploymentSelfEmployed)),
			Property:   property(2000000, engine.PropertyCommercial, 0, engine.ResidencyCitizen),
			Loan:       loan(4.5, 20),
		},
	},
	{
		ID:          "joint-applicants",
		Name:        "Joint Applicants",
		Description: "Two incomes, two ages: the income-weighted average age drives the tenure cap",
		Kind:        sqlite.KindEligibility,
		Eligibility: &engine.EligibilityInput{
			Applicants: profile(
				applicant(35, 5000, engine.EmploymentSalaried),
				applicant(30, 3000, engine.EmploymentSalaried),
			),
			Property: property(500000, engine.PropertyHDB, 0, engine.ResidencyCitizen),
			Loan:     loan(2.6, 25),
		},
	},
	{
		ID:          "stretched-budget",
		Name:        "Stretched Budget",
		Description: "Existing commitments alone breach the general servicing ratio",
		Kind:        sqlite.KindCompliance,
		Compliance: &engine.ComplianceInput{
			GrossIncome: dec(4000), Commitments: dec(3000),
			Category: engine.PropertyHDB, LoanAmount: dec(300000),
			AnnualRatePercent: dec(2.8), TenureYears: 25,
		},
	},
	{
		ID:          "hdb-msr-check",
		Name:        "HDB Housing Ratio Check",
		Description: "The proposed payment clears the general ratio but not the housing-specific one",
		Kind:        sqlite.KindCompliance,
		Compliance: &engine.ComplianceInput{
			GrossIncome: dec(8000), Commitments: dec(500),
			Category: engine.PropertyHDB, LoanAmount: dec(500000),
			AnnualRatePercent: dec(2.8), TenureYears: 25,
		},
	},
	{
		ID:          "cash-out-equity",
		Name:        "Cash-Out Equity",
		Description: "Private property with paid-down balance and extractable equity",
		Kind:        sqlite.KindRefinance,
		Refinance: &engine.RefinanceInput{
			PropertyValue: dec(1000000), OutstandingBalance: dec(600000),
			CurrentRatePercent: dec(4.2), MonthsRemaining: 12,
			Category: engine.PropertyPrivate, OwnerOccupied: true,
			Objective: engine.ObjectiveCashOut,
		},
	},
	{
		ID:          "lock-in-expiring",
		Name:        "Lock-In Expiring",
		Description: "Two months of lock-in left: the immediate timing window",
		Kind:        sqlite.KindRefinance,
		Refinance: &engine.RefinanceInput{
			PropertyValue: dec(900000), OutstandingBalance: dec(500000),
			CurrentRatePercent: dec(4.0), MonthsRemaining: 2,
			Category: engine.PropertyPrivate, OwnerOccupied: true,
		},
	},
	{
		ID:          "tenure-crunch",
		Name:        "Tenure Crunch",
		Description: "Shortening the tenure raises the payment; the negative savings are reported as-is",
		Kind:        sqlite.KindRefinance,
		Refinance: &engine.RefinanceInput{
			PropertyValue: dec(900000), OutstandingBalance: dec(500000),
			CurrentRatePercent: dec(3.0), MonthsRemaining: 240,
			Category: engine.PropertyPrivate, OwnerOccupied: true,
			Objective: engine.ObjectiveShortenTenure,
		},
	},
}

func findScenario(id string) *Scenario {
	for i := range scenarios {
		if scenarios[i].ID == id {
			return &scenarios[i]
		}
	}
	return nil
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the demo scenario catalog.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.dto()
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunScenario executes one scenario through its calculator, recording an
// audit entry like any client request.
// POST /api/scenarios/{id}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	s := findScenario(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	var result any
	switch s.Kind {
	case sqlite.KindEligibility:
		res, err := engine.CalculateEligibility(*s.Eligibility)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto := toEligibilityDTO(res)
		id, ok := h.audit(w, r, s.Kind, *s.Eligibility, dto, dto.LimitingFactor, dto.ReasonCodes)
		if !ok {
			return
		}
		dto.CalculationID = id
		result = dto
	case sqlite.KindCompliance:
		res, err := engine.CalculateCompliance(*s.Compliance)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto := toComplianceDTO(res)
		id, ok := h.audit(w, r, s.Kind, *s.Compliance, dto, dto.LimitingFactor, dto.ReasonCodes)
		if !ok {
			return
		}
		dto.CalculationID = id
		result = dto
	case sqlite.KindRefinance:
		res, err := engine.CalculateRefinanceOutlook(*s.Refinance)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto := toRefinanceDTO(res)
		id, ok := h.audit(w, r, s.Kind, *s.Refinance, dto, "", dto.ReasonCodes)
		if !ok {
			return
		}
		dto.CalculationID = id
		result = dto
	default:
		writeError(w, http.StatusInternalServerError, "Scenario has no calculator", nil)
		return
	}

	writeJSON(w, http.StatusOK, ScenarioRunDTO{Scenario: s.dto(), Result: result})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func applicant(age int, income float64, employment engine.EmploymentType) engine.Applicant {
	return engine.Applicant{Age: age, GrossMonthlyIncome: dec(income), Employment: employment}
}

func profile(applicants ...engine.Applicant) engine.ApplicantProfile {
	return engine.ApplicantProfile{Applicants: applicants}
}

func profileWithCommitments(commitments float64, applicants ...engine.Applicant) engine.ApplicantProfile {
	return engine.ApplicantProfile{Applicants: applicants, MonthlyCommitments: dec(commitments)}
}

func property(price float64, category engine.PropertyCategory, existing int, residency engine.Residency) engine.PropertyContext {
	return engine.PropertyContext{
		Price:              dec(price),
		Category:           category,
		ExistingProperties: existing,
		Residency:          residency,
		OwnerOccupied:      true,
	}
}

func loan(rate float64, tenure int) engine.LoanParameters {
	return engine.LoanParameters{AnnualRatePercent: dec(rate), TenureYears: tenure}
}
