/*
tables.go - Regulatory lookup tables

PURPOSE:
  Every rate, ceiling and threshold the calculators branch on lives here as
  an explicit table over the closed enumerations in types.go. Nothing in the
  calculators hard-codes a regulatory number; each figure is auditable and
  testable in isolation.

TABLES:
  ltvTiers            LTV ceilings and minimum-cash percentages by
                      existing-property count, with the reduced column used
                      when the age/tenure trigger fires
  absdRates           Stamp-duty surcharge by residency class and count
  tenureRules         Statutory tenure ceiling and retirement age base by
                      property category and LTV tier
  stressFloors        Regulatory stress-test floor rates by category
  recognitionRates    Income recognition by employment type
  cpfLimitMultiples   Retirement-savings withdrawal cap as a multiple of price

CHANGE DISCIPLINE:
  Regulatory figures change by notice, not by refactor. A change here should
  be a one-line diff reviewable against the published instrument.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RATIO CAPS AND STRESS FLOORS
// =============================================================================

var (
	// tdsrCap is the general debt-servicing cap: 55% of recognized income.
	tdsrCap = decimal.NewFromFloat(0.55)

	// msrCap is the housing-specific servicing cap: 30% of recognized income.
	// Applies to HDB and EC only.
	msrCap = decimal.NewFromFloat(0.30)
)

// stressFloorPercent returns the regulatory floor rate (annual percent) used
// to stress-test affordability. Commercial property carries a higher floor.
func stressFloorPercent(category PropertyCategory) decimal.Decimal {
	if category == PropertyCommercial {
		return decimal.NewFromInt(5)
	}
	return decimal.NewFromInt(4)
}

// StressRatePercent selects the stress-test rate: the regulatory floor for
// the category, overridden upward when the quoted rate is higher.
func StressRatePercent(category PropertyCategory, quotedPercent decimal.Decimal) decimal.Decimal {
	floor := stressFloorPercent(category)
	if quotedPercent.GreaterThan(floor) {
		return quotedPercent
	}
	return floor
}

// =============================================================================
// LTV TIERS
// =============================================================================

// ltvTier holds the ceilings for one existing-property-count band. The
// reduced column applies when the extended-tenure/age trigger fires.
type ltvTier struct {
	basePercent       int64
	reducedPercent    int64
	minCashPercent    int64 // with the base ceiling
	minCashReducedPct int64 // with the reduced ceiling
}

var ltvTiers = map[int]ltvTier{
	0: {basePercent: 75, reducedPercent: 55, minCashPercent: 5, minCashReducedPct: 10},
	1: {basePercent: 45, reducedPercent: 25, minCashPercent: 25, minCashReducedPct: 25},
	2: {basePercent: 35, reducedPercent: 15, minCashPercent: 25, minCashReducedPct: 25},
}

// Commercial property sits outside the residential tier table.
const (
	commercialLTVPercent     = 60
	commercialMinCashPercent = 25
)

// ltvTierFor buckets the existing-property count into the tier table.
// Residency participates in validation upstream; the ceilings themselves do
// not differ by residency class under the current notices.
func ltvTierFor(existingProperties int) ltvTier {
	if existingProperties >= 2 {
		return ltvTiers[2]
	}
	return ltvTiers[existingProperties]
}

// tierCapPercent is the ceiling the selected tier itself imposes on top of
// the property-count table.
func tierCapPercent(tier LTVTier) decimal.Decimal {
	if tier == TierExtended {
		return decimal.NewFromInt(55)
	}
	return decimal.NewFromInt(75)
}

// reducedTriggerThreshold is the tenure beyond which the reduced LTV column
// applies, by category. HDB trips earlier than the rest.
func reducedTriggerThreshold(category PropertyCategory) int {
	if category == PropertyHDB {
		return 25
	}
	return 30
}

// retirementCutoffAge is the loan-end age beyond which the reduced LTV
// column applies.
const retirementCutoffAge = 65

// =============================================================================
// STAMP-DUTY SURCHARGE (ABSD)
// =============================================================================

// absdRates maps residency class to surcharge percentages for the first,
// second and third-or-later property. Foreigners pay a flat rate.
var absdRates = map[Residency][3]int64{
	ResidencyCitizen:   {0, 20, 30},
	ResidencyPR:        {5, 30, 35},
	ResidencyForeigner: {60, 60, 60},
}

// ABSDRatePercent resolves the stamp-duty surcharge for a purchase. Always
// zero for refinances: the surcharge is a transfer tax, not a loan cost.
func ABSDRatePercent(residency Residency, existingProperties int, purpose LoanPurpose) decimal.Decimal {
	if purpose == PurposeRefinance {
		return decimal.Zero
	}
	rates := absdRates[residency]
	idx := existingProperties
	if idx > 2 {
		idx = 2
	}
	return decimal.NewFromInt(rates[idx])
}

// =============================================================================
// TENURE RULES
// =============================================================================

// tenureRule pairs the statutory tenure ceiling with the retirement age base
// used for the age-derived bound.
type tenureRule struct {
	statutoryYears int
	ageBase        int
}

// tenureRules is keyed by category and tier. The extended tier always
// permits a longer statutory ceiling than the standard tier for the same
// category; the age base is the retirement cutoff for every rule, so the
// age-derived bound never runs a loan past 65 regardless of tier.
var tenureRules = map[PropertyCategory]map[LTVTier]tenureRule{
	PropertyHDB: {
		TierStandard: {statutoryYears: 25, ageBase: 65},
		TierExtended: {statutoryYears: 30, ageBase: 65},
	},
	PropertyEC: {
		TierStandard: {statutoryYears: 30, ageBase: 65},
		TierExtended: {statutoryYears: 35, ageBase: 65},
	},
	PropertyPrivate: {
		TierStandard: {statutoryYears: 30, ageBase: 65},
		TierExtended: {statutoryYears: 35, ageBase: 65},
	},
	PropertyCommercial: {
		TierStandard: {statutoryYears: 30, ageBase: 65},
		TierExtended: {statutoryYears: 35, ageBase: 65},
	},
}

// TenureCap resolves the binding tenure limit for a category/tier given the
// effective (income-weighted) age, floored at one year, and reports which
// bound was binding.
func TenureCap(category PropertyCategory, tier LTVTier, effectiveAge int) (int, TenureCapSource) {
	rule := tenureRules[category][tier]
	ageBased := rule.ageBase - effectiveAge
	if ageBased < 1 {
		ageBased = 1
	}
	if ageBased < rule.statutoryYears {
		return ageBased, TenureCapByAge
	}
	cap := rule.statutoryYears
	if cap < 1 {
		cap = 1
	}
	return cap, TenureCapByRegulation
}

// tenurePolicyRef names the instrument behind the tenure cap for a category.
func tenurePolicyRef(category PropertyCategory) string {
	switch category {
	case PropertyHDB, PropertyEC:
		return PolicyTenureHDB
	case PropertyCommercial:
		return PolicyTenureCommercial
	default:
		return PolicyTenurePrivate
	}
}

// =============================================================================
// INCOME RECOGNITION
// =============================================================================

// recognitionRates maps employment type to the fraction of gross income the
// regulations allow the engine to count.
var recognitionRates = map[EmploymentType]decimal.Decimal{
	EmploymentSalaried:       decimal.NewFromInt(1),
	EmploymentSelfEmployed:   decimal.NewFromFloat(0.7),
	EmploymentVariableIncome: decimal.NewFromFloat(0.7),
	EmploymentNotWorking:     decimal.Zero,
}

// =============================================================================
// RETIREMENT SAVINGS (CPF)
// =============================================================================

// cpfLimitMultiples is the withdrawal cap as a multiple of property price.
// Zero for commercial: retirement savings cannot touch commercial property.
var cpfLimitMultiples = map[PropertyCategory]decimal.Decimal{
	PropertyHDB:        decimal.NewFromFloat(1.2),
	PropertyEC:         decimal.NewFromFloat(1.2),
	PropertyPrivate:    decimal.NewFromFloat(1.2),
	PropertyCommercial: decimal.Zero,
}

// cpfAccrualAnnualRate is the notional interest accrued on retirement
// savings drawn against a property, compounded monthly.
var cpfAccrualAnnualRate = decimal.NewFromFloat(0.025)

// CPFUsable reports whether retirement savings may fund the down payment.
// Commercial property and foreign buyers are excluded.
func CPFUsable(category PropertyCategory, residency Residency) bool {
	return category != PropertyCommercial && residency != ResidencyForeigner
}

// CPFWithdrawalLimit returns the usable-savings cap for a property price.
func CPFWithdrawalLimit(category PropertyCategory, price decimal.Decimal) decimal.Decimal {
	return price.Mul(cpfLimitMultiples[category]).Round(0)
}

// =============================================================================
// REFINANCE REFERENCE FIGURES
// =============================================================================

// refinanceLTVCapPercent is the LTV ceiling for cash-out purposes during a
// refinance. Investment (non-owner-occupied) private property is tighter.
func refinanceLTVCapPercent(category PropertyCategory, ownerOccupied bool) decimal.Decimal {
	switch category {
	case PropertyPrivate:
		if ownerOccupied {
			return decimal.NewFromInt(75)
		}
		return decimal.NewFromInt(70)
	case PropertyEC:
		return decimal.NewFromInt(75)
	case PropertyCommercial:
		return decimal.NewFromInt(60)
	default:
		// HDB equity cannot be cashed out.
		return decimal.Zero
	}
}

// bestAvailableRatePercent is the reference rate a refinance is compared
// against when the caller does not override it.
func bestAvailableRatePercent(category PropertyCategory) decimal.Decimal {
	if category == PropertyCommercial {
		return decimal.NewFromFloat(3.3)
	}
	return decimal.NewFromFloat(2.8)
}

// estimatedCurrentRatePercent is the conservative stand-in used when the
// borrower does not know their current rate.
func estimatedCurrentRatePercent(category PropertyCategory) decimal.Decimal {
	if category == PropertyCommercial {
		return decimal.NewFromFloat(4.0)
	}
	return decimal.NewFromFloat(3.5)
}
