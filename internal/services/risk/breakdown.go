package risk

import "github.com/r3troseer/SME-loan-transact/internal/models"

const insufficientData = "Insufficient data"

// Component is one line of a risk breakdown.
type Component struct {
	Score          float64  `json:"score"`
	Weight         float64  `json:"weight"`
	Ratio          *float64 `json:"ratio"`
	Interpretation string   `json:"interpretation,omitempty"`
}

// Breakdown explains how a company's risk score was assembled.
type Breakdown struct {
	CompanyID     string              `json:"company_id"`
	OverallScore  float64             `json:"overall_score"`
	Category      models.RiskCategory `json:"category"`
	Liquidity     Component           `json:"liquidity"`
	Profitability Component           `json:"profitability"`
	Leverage      Component           `json:"leverage"`
	Cash          Component           `json:"cash_position"`
	Efficiency    Component           `json:"efficiency"`
	Stability     Component           `json:"stability"`
}

// Breakdown returns the component view of a company's risk profile,
// scoring the company first if it has no profile yet.
func (s *Scorer) Breakdown(c *models.Company) Breakdown {
	profile := c.Risk
	if profile == nil {
		scored := s.Score(c)
		profile = &scored
	}

	r := profile.Ratios
	comp := profile.Components
	w := s.weights

	return Breakdown{
		CompanyID:     c.ID,
		OverallScore:  profile.Score,
		Category:      profile.Category,
		Liquidity:     Component{comp.Liquidity, w.Liquidity, r.CurrentRatio, interpret(r.CurrentRatio, InterpretLiquidity)},
		Profitability: Component{comp.Profitability, w.Profitability, r.OperatingMargin, interpret(r.OperatingMargin, InterpretProfitability)},
		Leverage:      Component{comp.Leverage, w.Leverage, r.DebtRatio, interpret(r.DebtRatio, InterpretLeverage)},
		Cash:          Component{comp.Cash, w.Cash, r.CashRatio, interpret(r.CashRatio, InterpretCash)},
		Efficiency:    Component{comp.Efficiency, w.Efficiency, r.AssetTurnover, interpret(r.AssetTurnover, InterpretEfficiency)},
		Stability:     Component{Score: comp.Stability, Weight: w.Stability, Ratio: r.WorkingCapitalRatio},
	}
}

func interpret(value *float64, fn func(float64) string) string {
	if value == nil {
		return insufficientData
	}
	return fn(*value)
}

// InterpretLiquidity describes a current ratio.
func InterpretLiquidity(ratio float64) string {
	switch {
	case ratio >= 2.0:
		return "Strong liquidity - can easily meet short-term obligations"
	case ratio >= 1.5:
		return "Adequate liquidity"
	case ratio >= 1.0:
		return "Tight liquidity - monitor closely"
	default:
		return "Weak liquidity - potential cash flow issues"
	}
}

// InterpretProfitability describes an operating margin.
func InterpretProfitability(margin float64) string {
	switch {
	case margin >= 0.15:
		return "Strong profitability"
	case margin >= 0.08:
		return "Healthy profitability"
	case margin >= 0.03:
		return "Modest profitability"
	case margin >= 0:
		return "Thin margins"
	default:
		return "Operating at a loss"
	}
}

// InterpretLeverage describes a debt ratio.
func InterpretLeverage(ratio float64) string {
	switch {
	case ratio <= 0.3:
		return "Conservative leverage - strong balance sheet"
	case ratio <= 0.5:
		return "Moderate leverage"
	case ratio <= 0.7:
		return "Elevated leverage - some risk"
	default:
		return "High leverage - significant debt burden"
	}
}

// InterpretCash describes a cash ratio.
func InterpretCash(ratio float64) string {
	switch {
	case ratio >= 0.5:
		return "Strong cash reserves"
	case ratio >= 0.2:
		return "Adequate cash position"
	case ratio >= 0.1:
		return "Limited cash buffer"
	default:
		return "Very low cash - liquidity risk"
	}
}

// InterpretEfficiency describes an asset turnover.
func InterpretEfficiency(turnover float64) string {
	switch {
	case turnover >= 2.0:
		return "Highly efficient asset utilization"
	case turnover >= 1.0:
		return "Good asset efficiency"
	case turnover >= 0.5:
		return "Moderate asset efficiency"
	default:
		return "Low asset turnover - may have idle assets"
	}
}
