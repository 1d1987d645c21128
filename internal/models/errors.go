// Package models defines the data structures for the SME loan exchange.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrRiskNotScored        = errors.New("risk score not populated")
	ErrInclusionNotScored   = errors.New("inclusion score not populated")
	ErrFitNotScored         = errors.New("fit annotation not populated")
	ErrMissingCompany       = errors.New("loan has no company")
	ErrEmptyLoanID          = errors.New("loan_id cannot be empty")
	ErrEmptyCompanyID       = errors.New("sme_id cannot be empty")
	ErrEmptyRegistry        = errors.New("lender registry is empty")
	ErrEmptyLenderName      = errors.New("lender name cannot be empty")
	ErrDuplicateLender      = errors.New("duplicate lender name")
	ErrUnknownLender        = errors.New("unknown lender")
	ErrInvalidRiskScoreMin  = errors.New("risk_score_min must be between 0 and 100")
	ErrInvalidTurnoverRange = errors.New("invalid turnover range")
	ErrInvalidRiskTolerance = errors.New("invalid risk tolerance")
)

// UnknownRegion is the label used when a company has no region.
const UnknownRegion = "Unknown"

// regionAliases maps common spellings to the canonical region labels.
var regionAliases = map[string]string{
	"london":                   "London",
	"greater london":           "London",
	"south east":               "South East",
	"south-east":               "South East",
	"south west":               "South West",
	"south-west":               "South West",
	"east of england":          "East of England",
	"eastern":                  "East of England",
	"east midlands":            "East Midlands",
	"west midlands":            "West Midlands",
	"yorkshire and the humber": "Yorkshire And The Humber",
	"yorkshire & the humber":   "Yorkshire And The Humber",
	"yorkshire and humber":     "Yorkshire And The Humber",
	"yorkshire":                "Yorkshire And The Humber",
	"north east":               "North East",
	"north-east":               "North East",
	"north west":               "North West",
	"north-west":               "North West",
	"scotland":                 "Scotland",
	"wales":                    "Wales",
	"northern ireland":         "Northern Ireland",
	"unknown":                  UnknownRegion,
}

// NormalizeRegion converts common region spellings to canonical labels.
func NormalizeRegion(region string) string {
	normalized := strings.ToLower(strings.TrimSpace(region))
	normalized = strings.Join(strings.Fields(normalized), " ")
	if normalized == "" {
		return UnknownRegion
	}
	if mapped, ok := regionAliases[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found
	return strings.TrimSpace(region)
}

// NormalizeSector trims a sector label and joins spaced words with underscores.
// "Digital&Technologies" style labels are kept as they are.
func NormalizeSector(sector string) string {
	return strings.Join(strings.Fields(sector), "_")
}

// ValidRiskTolerances returns all valid risk tolerance values.
func ValidRiskTolerances() []RiskTolerance {
	return []RiskTolerance{RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh}
}

// IsValid checks if the risk tolerance is valid. Empty is allowed.
func (r RiskTolerance) IsValid() bool {
	if r == "" {
		return true
	}
	for _, valid := range ValidRiskTolerances() {
		if r == valid {
			return true
		}
	}
	return false
}

// ValidateLender validates a lender archetype.
func ValidateLender(l *Lender) error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyLenderName
	}

	if l.RiskScoreMin != nil && (*l.RiskScoreMin < 0 || *l.RiskScoreMin > 100) {
		return ErrInvalidRiskScoreMin
	}

	if l.MinTurnover < 0 {
		return ErrInvalidTurnoverRange
	}

	if l.MaxTurnover != nil && *l.MaxTurnover < l.MinTurnover {
		return ErrInvalidTurnoverRange
	}

	if !l.RiskTolerance.IsValid() {
		return ErrInvalidRiskTolerance
	}

	return nil
}

// ValidateLoan validates the identifiers of a loan row.
func ValidateLoan(l *Loan) error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrEmptyLoanID
	}

	if l.Company == nil {
		return ErrMissingCompany
	}

	if strings.TrimSpace(l.Company.ID) == "" {
		return ErrEmptyCompanyID
	}

	return nil
}
