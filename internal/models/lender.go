// Package models defines the data structures for the SME loan exchange.
package models

import (
	"encoding/json"
	"strings"
)

// Preference is an optional set constraint. The zero value accepts any value.
type Preference struct {
	restricted bool
	values     []string
}

// AnyValue returns a preference that accepts every value.
func AnyValue() Preference {
	return Preference{}
}

// RestrictedTo returns a preference limited to the given values.
func RestrictedTo(values ...string) Preference {
	return Preference{restricted: true, values: append([]string(nil), values...)}
}

// IsAny reports whether the preference is unconstrained.
func (p Preference) IsAny() bool {
	return !p.restricted
}

// Contains reports whether v is one of the restricted values.
// An unconstrained preference contains nothing explicitly.
func (p Preference) Contains(v string) bool {
	for _, value := range p.values {
		if value == v {
			return true
		}
	}
	return false
}

// Values returns a copy of the restricted values.
func (p Preference) Values() []string {
	return append([]string(nil), p.values...)
}

// String renders the preference for reasons and display.
func (p Preference) String() string {
	if !p.restricted {
		return "Any"
	}
	return strings.Join(p.values, ", ")
}

// MarshalJSON encodes Any as null and a restriction as a list.
func (p Preference) MarshalJSON() ([]byte, error) {
	if !p.restricted {
		return []byte("null"), nil
	}
	values := p.values
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

// UnmarshalJSON decodes null as Any and a list as a restriction.
func (p *Preference) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = AnyValue()
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*p = RestrictedTo(values...)
	return nil
}

// RiskTolerance describes a lender's appetite for risk.
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// Lender is a static lender archetype.
type Lender struct {
	Name             string        `json:"name"`
	RiskTolerance    RiskTolerance `json:"risk_tolerance,omitempty"`
	RiskScoreMin     *int          `json:"risk_score_min"`
	PreferredSectors Preference    `json:"preferred_sectors"`
	PreferredRegions Preference    `json:"preferred_regions"`
	MinTurnover      float64       `json:"min_turnover"`
	MaxTurnover      *float64      `json:"max_turnover"`
	InclusionMandate bool          `json:"inclusion_mandate"`
	Description      string        `json:"description,omitempty"`
	ContactEmail     string        `json:"contact_email,omitempty"`
}

// AcceptsTurnover reports whether turnover falls inside the lender's size range.
func (l *Lender) AcceptsTurnover(turnover float64) bool {
	if turnover < l.MinTurnover {
		return false
	}
	if l.MaxTurnover != nil && turnover > *l.MaxTurnover {
		return false
	}
	return true
}
