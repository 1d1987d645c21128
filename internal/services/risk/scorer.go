// Package risk scores company financial health from balance-sheet ratios.
package risk

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// NeutralScore is returned for missing inputs and degenerate bounds.
const NeutralScore = 50.0

// Bounds map a ratio onto 0-100. Values outside [Min, Max] are clamped.
type Bounds struct {
	Min     float64
	Max     float64
	Inverse bool
}

// Normalization bounds per component.
var (
	LiquidityBounds     = Bounds{Min: 0.5, Max: 3.0}
	ProfitabilityBounds = Bounds{Min: -0.1, Max: 0.25}
	LeverageBounds      = Bounds{Min: 0.2, Max: 0.8, Inverse: true}
	CashBounds          = Bounds{Min: 0, Max: 1.0}
	EfficiencyBounds    = Bounds{Min: 0.3, Max: 2.5}
	StabilityBounds     = Bounds{Min: -0.5, Max: 2.0}
)

// Weights combine the six components into the risk score. They must sum to 1.
type Weights struct {
	Liquidity     float64
	Profitability float64
	Leverage      float64
	Cash          float64
	Efficiency    float64
	Stability     float64
}

// DefaultWeights returns the reference weight table.
func DefaultWeights() Weights {
	return Weights{
		Liquidity:     0.20,
		Profitability: 0.25,
		Leverage:      0.20,
		Cash:          0.15,
		Efficiency:    0.10,
		Stability:     0.10,
	}
}

func (w Weights) vector() []float64 {
	return []float64{w.Liquidity, w.Profitability, w.Leverage, w.Cash, w.Efficiency, w.Stability}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return floats.Sum(w.vector())
}

// Scorer computes risk profiles. It is stateless and safe to reuse.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the reference weights.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Weights returns the weight table in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Analyze attaches a fresh risk profile to every company.
func (s *Scorer) Analyze(companies []*models.Company) {
	for _, c := range companies {
		profile := s.Score(c)
		c.Risk = &profile
	}
}

// Score computes the risk profile of one company without modifying it.
func (s *Scorer) Score(c *models.Company) models.RiskProfile {
	ratios := ComputeRatios(c.Financials)

	components := models.RiskComponents{
		Liquidity:     Normalize(ratios.CurrentRatio, LiquidityBounds),
		Profitability: Normalize(ratios.OperatingMargin, ProfitabilityBounds),
		Leverage:      Normalize(ratios.DebtRatio, LeverageBounds),
		Cash:          Normalize(ratios.CashRatio, CashBounds),
		Efficiency:    Normalize(ratios.AssetTurnover, EfficiencyBounds),
		Stability:     Normalize(ratios.WorkingCapitalRatio, StabilityBounds),
	}

	values := []float64{
		components.Liquidity,
		components.Profitability,
		components.Leverage,
		components.Cash,
		components.Efficiency,
		components.Stability,
	}
	score := utils.Round(floats.Dot(values, s.weights.vector()), 1)

	return models.RiskProfile{
		Ratios:     ratios,
		Components: components,
		Score:      score,
		Category:   Categorize(score),
	}
}

// ComputeRatios derives the six ratios. A zero, negative or missing denominator
// substitutes the ratio's fallback; a missing numerator leaves the ratio missing.
func ComputeRatios(f models.Financials) models.Ratios {
	cash := f.Cash
	if cash == nil {
		cash = models.Float(0)
	}

	return models.Ratios{
		CurrentRatio:        ratio(f.TotalCurrentAssets, f.TotalCurrentLiabilities, 0),
		OperatingMargin:     ratio(f.OperatingProfit, f.Turnover, 0),
		DebtRatio:           ratio(f.TotalLiabilities, f.TotalAssets, 1),
		CashRatio:           ratio(cash, f.TotalCurrentLiabilities, 0),
		AssetTurnover:       ratio(f.Turnover, f.TotalAssets, 0),
		WorkingCapitalRatio: ratio(f.WorkingCapital, f.TotalCurrentLiabilities, 0),
	}
}

func ratio(numerator, denominator *float64, fallback float64) *float64 {
	if denominator == nil || *denominator <= 0 {
		return models.Float(fallback)
	}
	if numerator == nil {
		return nil
	}
	return models.Float(*numerator / *denominator)
}

// Normalize clamps value into b and scales it to 0-100. Missing and non-finite
// values are neutral.
func Normalize(value *float64, b Bounds) float64 {
	if value == nil || b.Max == b.Min {
		return NeutralScore
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return NeutralScore
	}

	clamped := *value
	if clamped < b.Min {
		clamped = b.Min
	}
	if clamped > b.Max {
		clamped = b.Max
	}

	normalized := (clamped - b.Min) / (b.Max - b.Min)
	if b.Inverse {
		normalized = 1 - normalized
	}

	return normalized * 100
}

// Categorize bands a risk score.
func Categorize(score float64) models.RiskCategory {
	switch {
	case score >= 75:
		return models.RiskCategoryLow
	case score >= 60:
		return models.RiskCategoryModerateLow
	case score >= 45:
		return models.RiskCategoryModerate
	case score >= 30:
		return models.RiskCategoryModerateHigh
	default:
		return models.RiskCategoryHigh
	}
}
