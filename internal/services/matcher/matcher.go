// Package matcher scores company-lender fit and flags reallocation candidates.
package matcher

import (
	"fmt"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// Component caps.
const (
	RiskPoints           = 30
	SectorMatchPoints    = 25
	SectorAgnosticPoints = 20
	RegionMatchPoints    = 20
	RegionNationalPoints = 15
	SizePoints           = 15
	InclusionPoints      = 10
	InclusionHalfPoints  = 5
)

// UnknownLenderReason is the only reason given for a lender missing from the registry.
const UnknownLenderReason = "Unknown lender"

// Registry is the lender lookup the matcher scores against.
type Registry interface {
	Lookup(name string) (*models.Lender, bool)
	All() []*models.Lender
}

// Config holds the fit-gap thresholds.
type Config struct {
	StrongThreshold   int
	ModerateThreshold int
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{StrongThreshold: 30, ModerateThreshold: 15}
}

// FitResult is the scored fit of one company against one lender.
type FitResult struct {
	Lender     string               `json:"lender"`
	Score      int                  `json:"score"`
	Components models.FitComponents `json:"components"`
	Reasons    models.FitReasons    `json:"reasons"`
}

// Matcher scores fit against an ordered lender registry.
type Matcher struct {
	registry Registry
	cfg      Config
}

// New creates a matcher that uses cfg as given.
func New(registry Registry, cfg Config) *Matcher {
	return &Matcher{registry: registry, cfg: cfg}
}

// Config returns the thresholds in use.
func (m *Matcher) Config() Config {
	return m.cfg
}

// FitByName scores a company against a lender looked up by name.
// An unknown lender scores 0.
func (m *Matcher) FitByName(c *models.Company, name string) FitResult {
	lender, ok := m.registry.Lookup(name)
	if !ok {
		return FitResult{
			Lender: name,
			Reasons: models.FitReasons{
				Positive: []string{},
				Negative: []string{UnknownLenderReason},
			},
		}
	}
	return m.Fit(c, lender)
}

// Fit scores a company against a lender from five capped components.
func (m *Matcher) Fit(c *models.Company, lender *models.Lender) FitResult {
	res := FitResult{
		Lender:  lender.Name,
		Reasons: models.FitReasons{Positive: []string{}, Negative: []string{}},
	}
	r := &res.Reasons

	res.Components.Risk = riskPoints(c.RiskScore(), lender, r)
	res.Components.Sector = sectorPoints(c.Sector, lender, r)
	res.Components.Region = regionPoints(c.Region, lender, r)
	res.Components.Size = sizePoints(c, lender, r)
	res.Components.Inclusion = inclusionPoints(c.InclusionScore(), lender, r)
	res.Score = res.Components.Total()

	return res
}

func riskPoints(score float64, lender *models.Lender, r *models.FitReasons) int {
	if lender.RiskScoreMin == nil {
		r.Positive = append(r.Positive, "Lender is risk-agnostic")
		return RiskPoints
	}

	threshold := *lender.RiskScoreMin
	if score >= float64(threshold) {
		r.Positive = append(r.Positive, fmt.Sprintf("Risk score %.0f meets threshold %d", score, threshold))
		return RiskPoints
	}

	gap := float64(threshold) - score
	switch {
	case gap <= 10:
		r.Negative = append(r.Negative, fmt.Sprintf("Risk score %.0f slightly below %d", score, threshold))
		return 20
	case gap <= 20:
		r.Negative = append(r.Negative, fmt.Sprintf("Risk score %.0f below threshold %d", score, threshold))
		return 10
	default:
		r.Negative = append(r.Negative, fmt.Sprintf("Risk score %.0f significantly below %d", score, threshold))
		return 0
	}
}

func sectorPoints(sector string, lender *models.Lender, r *models.FitReasons) int {
	switch {
	case lender.PreferredSectors.IsAny():
		r.Positive = append(r.Positive, "Lender is sector-agnostic")
		return SectorAgnosticPoints
	case lender.PreferredSectors.Contains(sector):
		r.Positive = append(r.Positive, fmt.Sprintf("Sector '%s' matches lender preference", sector))
		return SectorMatchPoints
	default:
		r.Negative = append(r.Negative, fmt.Sprintf("Sector '%s' not in lender's focus: %s", sector, lender.PreferredSectors))
		return 0
	}
}

func regionPoints(region string, lender *models.Lender, r *models.FitReasons) int {
	switch {
	case lender.PreferredRegions.IsAny():
		r.Positive = append(r.Positive, "Lender has national coverage")
		return RegionNationalPoints
	case lender.PreferredRegions.Contains(region):
		r.Positive = append(r.Positive, fmt.Sprintf("Region '%s' matches lender focus", region))
		return RegionMatchPoints
	default:
		r.Negative = append(r.Negative, fmt.Sprintf("Region '%s' outside lender's focus", region))
		return 0
	}
}

func sizePoints(c *models.Company, lender *models.Lender, r *models.FitReasons) int {
	turnover, known := c.Turnover()
	if !known {
		r.Negative = append(r.Negative, "Company turnover unknown")
		return 0
	}

	millions := turnover / 1e6
	switch {
	case lender.AcceptsTurnover(turnover):
		r.Positive = append(r.Positive, fmt.Sprintf("Company size £%.1fm in lender's range", millions))
		return SizePoints
	case turnover < lender.MinTurnover:
		r.Negative = append(r.Negative, fmt.Sprintf("Company too small (£%.1fm < £%.1fm min)", millions, lender.MinTurnover/1e6))
	default:
		r.Negative = append(r.Negative, fmt.Sprintf("Company too large (£%.1fm > £%.1fm max)", millions, *lender.MaxTurnover/1e6))
	}
	return 0
}

func inclusionPoints(score float64, lender *models.Lender, r *models.FitReasons) int {
	if lender.InclusionMandate {
		switch {
		case score >= 60:
			r.Positive = append(r.Positive, "Strong inclusion alignment with lender's mandate")
			return InclusionPoints
		case score >= 45:
			r.Positive = append(r.Positive, "Moderate inclusion alignment")
			return InclusionHalfPoints
		}
		return 0
	}
	if score < 45 {
		return InclusionHalfPoints
	}
	return 0
}

// Annotate attaches a fit annotation to every loan. Every company must carry
// risk and inclusion profiles; otherwise nothing is modified.
func (m *Matcher) Annotate(loans []*models.Loan) error {
	for _, loan := range loans {
		if loan.Company == nil {
			return fmt.Errorf("loan %s: %w", loan.ID, models.ErrMissingCompany)
		}
		if loan.Company.Risk == nil {
			return fmt.Errorf("company %s: %w", loan.Company.ID, models.ErrRiskNotScored)
		}
		if loan.Company.Inclusion == nil {
			return fmt.Errorf("company %s: %w", loan.Company.ID, models.ErrInclusionNotScored)
		}
	}

	for _, loan := range loans {
		annotation := m.annotate(loan)
		loan.Fit = &annotation
	}
	return nil
}

func (m *Matcher) annotate(loan *models.Loan) models.FitAnnotation {
	current := m.FitByName(loan.Company, loan.CurrentLender)

	lenders := m.registry.All()
	fits := make([]models.LenderFit, 0, len(lenders))
	var best FitResult
	for i, lender := range lenders {
		res := m.Fit(loan.Company, lender)
		fits = append(fits, models.LenderFit{Lender: lender.Name, Fit: res.Score})
		if i == 0 || res.Score > best.Score {
			best = res
		}
	}

	gap := best.Score - current.Score
	return models.FitAnnotation{
		CurrentLenderFit:   current.Score,
		CurrentReasons:     current.Reasons,
		BestMatchLender:    best.Lender,
		BestMatchFit:       best.Score,
		BestReasons:        best.Reasons,
		AllFits:            fits,
		FitGap:             gap,
		ReallocationStatus: m.Status(gap),
		IsMismatch:         gap > m.cfg.ModerateThreshold,
	}
}

// Status maps a fit gap onto a reallocation status.
func (m *Matcher) Status(gap int) models.ReallocationStatus {
	switch {
	case gap >= m.cfg.StrongThreshold:
		return models.ReallocationStrong
	case gap >= m.cfg.ModerateThreshold:
		return models.ReallocationModerate
	case gap > 0:
		return models.ReallocationMinor
	default:
		return models.ReallocationAdequate
	}
}
