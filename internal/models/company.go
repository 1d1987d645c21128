// Package models defines the data structures for the SME loan exchange.
package models

// Financials holds the raw accounting fields of a company. A nil field is missing.
type Financials struct {
	Turnover                *float64 `json:"turnover"`
	GrossProfit             *float64 `json:"gross_profit,omitempty"`
	OperatingProfit         *float64 `json:"operating_profit"`
	EBITDA                  *float64 `json:"ebitda,omitempty"`
	ProfitAfterTax          *float64 `json:"profit_after_tax,omitempty"`
	TotalAssets             *float64 `json:"total_assets"`
	TotalLiabilities        *float64 `json:"total_liabilities"`
	NetAssets               *float64 `json:"net_assets,omitempty"`
	Cash                    *float64 `json:"cash"`
	WorkingCapital          *float64 `json:"working_capital"`
	Stock                   *float64 `json:"stock,omitempty"`
	TotalCurrentAssets      *float64 `json:"total_current_assets"`
	TotalCurrentLiabilities *float64 `json:"total_current_liabilities"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Company is a single SME in the dataset.
type Company struct {
	ID         string     `json:"sme_id"`
	Sector     string     `json:"sector"`
	Region     string     `json:"region"`
	Employees  *int       `json:"employees,omitempty"`
	Financials Financials `json:"financials"`

	Risk      *RiskProfile      `json:"risk,omitempty"`
	Inclusion *InclusionProfile `json:"inclusion,omitempty"`
}

// Turnover returns the company turnover and whether it is known.
func (c *Company) Turnover() (float64, bool) {
	if c.Financials.Turnover == nil {
		return 0, false
	}
	return *c.Financials.Turnover, true
}

// RiskScore returns the populated risk score, or 0 if the company has not been scored.
func (c *Company) RiskScore() float64 {
	if c.Risk == nil {
		return 0
	}
	return c.Risk.Score
}

// InclusionScore returns the populated inclusion score, or 0 if the company has not been scored.
func (c *Company) InclusionScore() float64 {
	if c.Inclusion == nil {
		return 0
	}
	return c.Inclusion.Score
}

// RiskCategory is the banded label of a risk score.
type RiskCategory string

const (
	RiskCategoryLow          RiskCategory = "Low Risk"
	RiskCategoryModerateLow  RiskCategory = "Moderate-Low Risk"
	RiskCategoryModerate     RiskCategory = "Moderate Risk"
	RiskCategoryModerateHigh RiskCategory = "Moderate-High Risk"
	RiskCategoryHigh         RiskCategory = "High Risk"
)

// Ratios are the six balance-sheet ratios feeding the risk score. A nil ratio is missing.
type Ratios struct {
	CurrentRatio        *float64 `json:"current_ratio"`
	OperatingMargin     *float64 `json:"operating_margin"`
	DebtRatio           *float64 `json:"debt_ratio"`
	CashRatio           *float64 `json:"cash_ratio"`
	AssetTurnover       *float64 `json:"asset_turnover"`
	WorkingCapitalRatio *float64 `json:"working_capital_ratio"`
}

// RiskComponents are the normalized 0-100 component scores.
type RiskComponents struct {
	Liquidity     float64 `json:"liquidity"`
	Profitability float64 `json:"profitability"`
	Leverage      float64 `json:"leverage"`
	Cash          float64 `json:"cash"`
	Efficiency    float64 `json:"efficiency"`
	Stability     float64 `json:"stability"`
}

// RiskProfile is the financial-health assessment attached to a company.
type RiskProfile struct {
	Ratios     Ratios         `json:"ratios"`
	Components RiskComponents `json:"components"`
	Score      float64        `json:"risk_score"`
	Category   RiskCategory   `json:"risk_category"`
}

// InclusionCategory is the banded label of an inclusion score.
type InclusionCategory string

const (
	InclusionCategoryHigh       InclusionCategory = "High Inclusion Priority"
	InclusionCategoryModerate   InclusionCategory = "Moderate Inclusion Priority"
	InclusionCategoryStandard   InclusionCategory = "Standard"
	InclusionCategoryWellServed InclusionCategory = "Well-Served"
)

// Inclusion flags.
const (
	FlagUnderservedRegion   = "Underserved Region"
	FlagUnderservedSector   = "Underserved Sector"
	FlagSmallerCompany      = "Smaller Company"
	FlagStrongButOverlooked = "Strong but Overlooked"
	FlagHighPotential       = "High Potential - Inclusion Candidate"
)

// InclusionComponents are the 0-100 inclusion component scores.
type InclusionComponents struct {
	Regional   float64 `json:"regional"`
	Sector     float64 `json:"sector"`
	Size       float64 `json:"size"`
	Overlooked float64 `json:"overlooked"`
}

// InclusionProfile is the underserved assessment attached to a company.
type InclusionProfile struct {
	Components InclusionComponents `json:"components"`
	Score      float64             `json:"inclusion_score"`
	Category   InclusionCategory   `json:"inclusion_category"`
	Flags      []string            `json:"inclusion_flags"`
}

// HasFlag reports whether the profile carries the given flag.
func (p *InclusionProfile) HasFlag(flag string) bool {
	if p == nil {
		return false
	}
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
