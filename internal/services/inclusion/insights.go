package inclusion

import (
	"fmt"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// ComponentDetail is one line of an inclusion breakdown.
type ComponentDetail struct {
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	Label         string  `json:"label,omitempty"`
	IsUnderserved bool    `json:"is_underserved,omitempty"`
}

// Breakdown explains a company's inclusion score.
type Breakdown struct {
	CompanyID      string                   `json:"company_id"`
	OverallScore   float64                  `json:"overall_score"`
	Category       models.InclusionCategory `json:"category"`
	Flags          []string                 `json:"flags"`
	Regional       ComponentDetail          `json:"regional"`
	Sector         ComponentDetail          `json:"sector"`
	Size           ComponentDetail          `json:"size"`
	Overlooked     ComponentDetail          `json:"overlooked"`
	Interpretation string                   `json:"interpretation"`
}

// Breakdown returns the component view of an already scored company.
func (s *Scorer) Breakdown(c *models.Company) (Breakdown, error) {
	if c.Risk == nil {
		return Breakdown{}, fmt.Errorf("company %s: %w", c.ID, models.ErrRiskNotScored)
	}
	if c.Inclusion == nil {
		return Breakdown{}, fmt.Errorf("company %s: %w", c.ID, models.ErrInclusionNotScored)
	}

	p := c.Inclusion
	w := s.weights
	return Breakdown{
		CompanyID:      c.ID,
		OverallScore:   p.Score,
		Category:       p.Category,
		Flags:          p.Flags,
		Regional:       ComponentDetail{Score: p.Components.Regional, Weight: w.Regional, Label: c.Region, IsUnderserved: contains(UnderservedRegions, c.Region)},
		Sector:         ComponentDetail{Score: p.Components.Sector, Weight: w.Sector, Label: c.Sector, IsUnderserved: contains(UnderservedSectors, c.Sector)},
		Size:           ComponentDetail{Score: p.Components.Size, Weight: w.Size},
		Overlooked:     ComponentDetail{Score: p.Components.Overlooked, Weight: w.Overlooked},
		Interpretation: InterpretOverlooked(c.Risk.Score, p.Components.Overlooked),
	}, nil
}

// InterpretOverlooked describes the strong-but-overlooked position of a company.
func InterpretOverlooked(riskScore, overlooked float64) string {
	switch {
	case riskScore >= 70 && overlooked >= 80:
		return "Strong financials in underserved position - high potential"
	case riskScore >= 60 && overlooked >= 60:
		return "Good fundamentals, may be overlooked"
	case riskScore >= 50:
		return "Moderate profile"
	default:
		return "Financial improvement needed before inclusion focus"
	}
}

// Share is a count with its percentage of the total.
type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MarketInsights summarises inclusion signals across a dataset.
type MarketInsights struct {
	TotalCompanies       int                              `json:"total_companies"`
	UnderservedRegions   Share                            `json:"underserved_regions"`
	HighPotential        Share                            `json:"high_potential_underserved"`
	SectorDistribution   map[string]int                   `json:"sector_distribution"`
	PriorityDistribution map[models.InclusionCategory]int `json:"priority_distribution"`
	KeyInsight           string                           `json:"key_insight"`
}

// Insights aggregates the inclusion profiles of scored companies.
// Companies without both profiles are skipped.
func Insights(companies []*models.Company) MarketInsights {
	insights := MarketInsights{
		SectorDistribution:   map[string]int{},
		PriorityDistribution: map[models.InclusionCategory]int{},
	}

	var highPriority, overlooked int
	for _, c := range companies {
		if c.Risk == nil || c.Inclusion == nil {
			continue
		}
		insights.TotalCompanies++

		if contains(UnderservedRegions, c.Region) {
			insights.UnderservedRegions.Count++
		}
		if c.Risk.Score >= 65 && c.Inclusion.Score >= 60 {
			insights.HighPotential.Count++
		}
		insights.SectorDistribution[c.Sector]++
		insights.PriorityDistribution[c.Inclusion.Category]++

		if c.Inclusion.Category == models.InclusionCategoryHigh {
			highPriority++
		}
		if c.Inclusion.HasFlag(models.FlagStrongButOverlooked) {
			overlooked++
		}
	}

	total := insights.TotalCompanies
	insights.UnderservedRegions.Percentage = percentage(insights.UnderservedRegions.Count, total, 1)
	insights.HighPotential.Percentage = percentage(insights.HighPotential.Count, total, 1)
	insights.KeyInsight = fmt.Sprintf(
		"%d companies (%.0f%%) are high inclusion priority. %d have strong financials but may be overlooked due to region or sector.",
		highPriority, percentage(highPriority, total, 0), overlooked,
	)

	return insights
}

func percentage(count, total int, places int32) float64 {
	if total == 0 {
		return 0
	}
	return utils.Round(float64(count)/float64(total)*100, places)
}
