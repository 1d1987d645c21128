package lenders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// registryFile is the on-disk registry layout. A null or absent preference list
// means the lender accepts any value.
type registryFile struct {
	Lenders []lenderEntry `yaml:"lenders"`
}

type lenderEntry struct {
	Name             string    `yaml:"name"`
	RiskTolerance    string    `yaml:"risk_tolerance"`
	RiskScoreMin     *int      `yaml:"risk_score_min"`
	PreferredSectors *[]string `yaml:"preferred_sectors"`
	PreferredRegions *[]string `yaml:"preferred_regions"`
	MinTurnover      float64   `yaml:"min_turnover"`
	MaxTurnover      *float64  `yaml:"max_turnover"`
	InclusionMandate bool      `yaml:"inclusion_mandate"`
	Description      string    `yaml:"description"`
	ContactEmail     string    `yaml:"contact_email"`
}

// LoadFile reads a YAML (or JSON) registry file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry document and validates it.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	lenders := make([]models.Lender, 0, len(file.Lenders))
	for _, entry := range file.Lenders {
		lenders = append(lenders, entry.toLender())
	}

	return NewRegistry(lenders...)
}

func (e lenderEntry) toLender() models.Lender {
	return models.Lender{
		Name:             e.Name,
		RiskTolerance:    models.RiskTolerance(e.RiskTolerance),
		RiskScoreMin:     e.RiskScoreMin,
		PreferredSectors: preference(e.PreferredSectors, models.NormalizeSector),
		PreferredRegions: preference(e.PreferredRegions, models.NormalizeRegion),
		MinTurnover:      e.MinTurnover,
		MaxTurnover:      e.MaxTurnover,
		InclusionMandate: e.InclusionMandate,
		Description:      e.Description,
		ContactEmail:     e.ContactEmail,
	}
}

func preference(values *[]string, normalize func(string) string) models.Preference {
	if values == nil {
		return models.AnyValue()
	}
	normalized := make([]string, len(*values))
	for i, v := range *values {
		normalized[i] = normalize(v)
	}
	return models.RestrictedTo(normalized...)
}

// Marshal encodes a registry in the file layout read by Parse.
func Marshal(r *Registry) ([]byte, error) {
	file := registryFile{Lenders: make([]lenderEntry, 0, r.Len())}
	for _, l := range r.All() {
		file.Lenders = append(file.Lenders, lenderEntry{
			Name:             l.Name,
			RiskTolerance:    string(l.RiskTolerance),
			RiskScoreMin:     l.RiskScoreMin,
			PreferredSectors: preferenceValues(l.PreferredSectors),
			PreferredRegions: preferenceValues(l.PreferredRegions),
			MinTurnover:      l.MinTurnover,
			MaxTurnover:      l.MaxTurnover,
			InclusionMandate: l.InclusionMandate,
			Description:      l.Description,
			ContactEmail:     l.ContactEmail,
		})
	}
	return yaml.Marshal(file)
}

func preferenceValues(p models.Preference) *[]string {
	if p.IsAny() {
		return nil
	}
	values := p.Values()
	if values == nil {
		values = []string{}
	}
	return &values
}
