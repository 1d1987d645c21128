// Package inclusion scores how underserved a company is by current lending patterns.
package inclusion

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// Region and sector lists driving the categorical scores.
var (
	UnderservedRegions = []string{
		"North East",
		"North West",
		"Scotland",
		"Wales",
		"Northern Ireland",
		"Yorkshire And The Humber",
		"East Midlands",
		"West Midlands",
	}
	MostUnderservedRegions = []string{"North East", "Northern Ireland", "Wales"}
	SecondTierRegions      = []string{"Scotland", "North West"}
	WellServedRegions      = []string{"London", "South East"}

	UnderservedSectors    = []string{"Creative_Industries", "Clean_Energy", "Life_Science"}
	WellUnderstoodSectors = []string{"Financial", "Professional_Business"}
)

// Weights combine the four components into the inclusion score.
type Weights struct {
	Regional   float64
	Sector     float64
	Size       float64
	Overlooked float64
}

// DefaultWeights returns the reference weight table.
func DefaultWeights() Weights {
	return Weights{Regional: 0.35, Sector: 0.25, Size: 0.20, Overlooked: 0.20}
}

func (w Weights) vector() []float64 {
	return []float64{w.Regional, w.Sector, w.Size, w.Overlooked}
}

// Scorer computes inclusion profiles relative to the dataset being scored.
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

// Analyze attaches an inclusion profile to every company. Every company must
// already carry a risk profile; otherwise nothing is modified and
// models.ErrRiskNotScored is returned.
func (s *Scorer) Analyze(companies []*models.Company) error {
	for _, c := range companies {
		if c.Risk == nil {
			return fmt.Errorf("company %s: %w", c.ID, models.ErrRiskNotScored)
		}
	}

	quartiles := TurnoverQuartiles(companies)
	for _, c := range companies {
		profile := s.score(c, quartiles)
		c.Inclusion = &profile
	}

	return nil
}

func (s *Scorer) score(c *models.Company, q Quartiles) models.InclusionProfile {
	riskScore := c.Risk.Score
	turnover, known := c.Turnover()

	components := models.InclusionComponents{
		Regional: RegionalScore(c.Region),
		Sector:   SectorScore(c.Sector),
		Size:     q.SizeScore(turnover, known),
	}
	components.Overlooked = OverlookedScore(riskScore, components.Regional, components.Sector)

	values := []float64{components.Regional, components.Sector, components.Size, components.Overlooked}
	score := utils.Round(floats.Dot(values, s.weights.vector()), 1)

	return models.InclusionProfile{
		Components: components,
		Score:      score,
		Category:   Categorize(score),
		Flags:      Flags(components, riskScore, score),
	}
}

// RegionalScore scores a region; higher means more likely to be underserved.
func RegionalScore(region string) float64 {
	switch {
	case region == "" || region == models.UnknownRegion:
		return 50
	case contains(MostUnderservedRegions, region):
		return 85
	case contains(SecondTierRegions, region):
		return 75
	case contains(UnderservedRegions, region):
		return 65
	case contains(WellServedRegions, region):
		return 25
	default:
		return 45
	}
}

// SectorScore scores a sector; higher means more exposed to lending bias.
func SectorScore(sector string) float64 {
	switch {
	case contains(UnderservedSectors, sector):
		return 75
	case contains(WellUnderstoodSectors, sector):
		return 30
	default:
		return 50
	}
}

// OverlookedScore rewards strong companies sitting in underserved positions.
func OverlookedScore(riskScore, regional, sector float64) float64 {
	if riskScore >= 65 {
		avg := (regional + sector) / 2
		switch {
		case avg >= 60:
			return 90
		case avg >= 50:
			return 70
		default:
			return 40
		}
	}
	if riskScore >= 50 {
		return 55
	}
	return 35
}

// Categorize bands an inclusion score.
func Categorize(score float64) models.InclusionCategory {
	switch {
	case score >= 75:
		return models.InclusionCategoryHigh
	case score >= 60:
		return models.InclusionCategoryModerate
	case score >= 45:
		return models.InclusionCategoryStandard
	default:
		return models.InclusionCategoryWellServed
	}
}

// Flags derives the display labels from the component scores.
func Flags(c models.InclusionComponents, riskScore, inclusionScore float64) []string {
	flags := []string{}
	if c.Regional >= 70 {
		flags = append(flags, models.FlagUnderservedRegion)
	}
	if c.Sector >= 70 {
		flags = append(flags, models.FlagUnderservedSector)
	}
	if c.Size >= 70 {
		flags = append(flags, models.FlagSmallerCompany)
	}
	if c.Overlooked >= 80 {
		flags = append(flags, models.FlagStrongButOverlooked)
	}
	if riskScore >= 70 && inclusionScore >= 60 {
		flags = append(flags, models.FlagHighPotential)
	}
	return flags
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
