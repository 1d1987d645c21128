package lenders

import "github.com/r3troseer/SME-loan-transact/internal/models"

// Reference archetype names.
const (
	AlphaBank               = "Alpha Bank"
	GrowthCapitalPartners   = "Growth Capital Partners"
	RegionalDevelopmentFund = "Regional Development Fund"
	SectorSpecialistCredit  = "Sector Specialist Credit"
)

// DefaultLenders returns the four reference archetypes in registry order.
func DefaultLenders() []models.Lender {
	return []models.Lender{
		{
			Name:             AlphaBank,
			RiskTolerance:    models.RiskToleranceLow,
			RiskScoreMin:     models.Int(70),
			PreferredSectors: models.RestrictedTo("Financial", "Professional_Business"),
			PreferredRegions: models.RestrictedTo("London", "South East"),
			MinTurnover:      20_000_000,
			Description:      "Conservative traditional bank focused on established businesses in financial and professional services sectors.",
		},
		{
			Name:             GrowthCapitalPartners,
			RiskTolerance:    models.RiskToleranceHigh,
			RiskScoreMin:     models.Int(40),
			PreferredSectors: models.RestrictedTo("Digital&Technologies", "Clean_Energy", "Life_Science"),
			PreferredRegions: models.AnyValue(),
			MinTurnover:      5_000_000,
			MaxTurnover:      models.Float(50_000_000),
			Description:      "Growth-focused investor comfortable with volatility, specializing in tech, clean energy, and life sciences.",
		},
		{
			Name:             RegionalDevelopmentFund,
			RiskTolerance:    models.RiskToleranceMedium,
			RiskScoreMin:     models.Int(55),
			PreferredSectors: models.AnyValue(),
			PreferredRegions: models.RestrictedTo("North West", "Scotland", "Wales", "North East", "Yorkshire And The Humber", "Northern Ireland"),
			MinTurnover:      5_000_000,
			MaxTurnover:      models.Float(30_000_000),
			InclusionMandate: true,
			Description:      "Development fund with explicit inclusion mandate for underserved regions. Prioritizes regional economic impact.",
		},
		{
			Name:             SectorSpecialistCredit,
			RiskTolerance:    models.RiskToleranceMedium,
			RiskScoreMin:     models.Int(50),
			PreferredSectors: models.RestrictedTo("Advanced_Manufacturing", "Defence"),
			PreferredRegions: models.AnyValue(),
			MinTurnover:      10_000_000,
			MaxTurnover:      models.Float(100_000_000),
			Description:      "Specialist lender with deep sector knowledge in advanced manufacturing and defence industries.",
		},
	}
}

// Default returns a registry of the reference archetypes.
func Default() *Registry {
	r, err := NewRegistry(DefaultLenders()...)
	if err != nil {
		panic("invalid default lender registry: " + err.Error())
	}
	return r
}
