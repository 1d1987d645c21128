package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/matcher"
)

// mockCompany creates a risk- and inclusion-scored company with default values.
func mockCompany(overrides map[string]interface{}) *models.Company {
	c := &models.Company{
		ID:     "SME_0001",
		Sector: "Construction",
		Region: "London",
		Financials: models.Financials{
			Turnover: models.Float(15_000_000),
		},
		Risk:      &models.RiskProfile{Score: 72},
		Inclusion: &models.InclusionProfile{Score: 50},
	}

	if v, ok := overrides["id"]; ok {
		c.ID = v.(string)
	}
	if v, ok := overrides["sector"]; ok {
		c.Sector = v.(string)
	}
	if v, ok := overrides["region"]; ok {
		c.Region = v.(string)
	}
	if v, ok := overrides["turnover"]; ok {
		if v == nil {
			c.Financials.Turnover = nil
		} else {
			c.Financials.Turnover = models.Float(v.(float64))
		}
	}
	if v, ok := overrides["risk_score"]; ok {
		c.Risk.Score = v.(float64)
	}
	if v, ok := overrides["inclusion_score"]; ok {
		c.Inclusion.Score = v.(float64)
	}

	return c
}

// mockLender creates a lender with default values.
func mockLender(overrides map[string]interface{}) models.Lender {
	l := models.Lender{
		Name:             "Growth Lender",
		RiskScoreMin:     models.Int(40),
		PreferredSectors: models.AnyValue(),
		PreferredRegions: models.AnyValue(),
		MinTurnover:      5_000_000,
		MaxTurnover:      models.Float(50_000_000),
	}

	if v, ok := overrides["name"]; ok {
		l.Name = v.(string)
	}
	if v, ok := overrides["risk_score_min"]; ok {
		if v == nil {
			l.RiskScoreMin = nil
		} else {
			l.RiskScoreMin = models.Int(v.(int))
		}
	}
	if v, ok := overrides["preferred_sectors"]; ok {
		l.PreferredSectors = models.RestrictedTo(v.([]string)...)
	}
	if v, ok := overrides["preferred_regions"]; ok {
		l.PreferredRegions = models.RestrictedTo(v.([]string)...)
	}
	if v, ok := overrides["inclusion_mandate"]; ok {
		l.InclusionMandate = v.(bool)
	}

	return l
}

func newMatcher(t *testing.T, lenderList ...models.Lender) *matcher.Matcher {
	t.Helper()
	registry, err := lenders.NewRegistry(lenderList...)
	require.NoError(t, err)
	return matcher.New(registry, matcher.DefaultConfig())
}

func TestFit_WorkedExample(t *testing.T) {
	lender := mockLender(nil)
	m := newMatcher(t, lender)

	res := m.FitByName(mockCompany(nil), lender.Name)

	assert.Equal(t, 80, res.Score)
	assert.Equal(t, models.FitComponents{Risk: 30, Sector: 20, Region: 15, Size: 15, Inclusion: 0}, res.Components)
	assert.Equal(t, []string{
		"Risk score 72 meets threshold 40",
		"Lender is sector-agnostic",
		"Lender has national coverage",
		"Company size £15.0m in lender's range",
	}, res.Reasons.Positive)
	assert.Empty(t, res.Reasons.Negative)
}

func TestFit_RiskSteps(t *testing.T) {
	lender := mockLender(map[string]interface{}{"risk_score_min": 70})
	m := newMatcher(t, lender)

	tests := []struct {
		risk     float64
		expected int
	}{
		{70, 30},
		{60, 20},
		{50, 10},
		{49.9, 0},
	}
	for _, tt := range tests {
		res := m.Fit(mockCompany(map[string]interface{}{"risk_score": tt.risk}), &lender)
		assert.Equal(t, tt.expected, res.Components.Risk, "risk score %v", tt.risk)
	}
}

func TestFit_RiskAgnosticLender(t *testing.T) {
	lender := mockLender(map[string]interface{}{"risk_score_min": nil})
	m := newMatcher(t, lender)

	res := m.Fit(mockCompany(map[string]interface{}{"risk_score": 5.0}), &lender)

	assert.Equal(t, matcher.RiskPoints, res.Components.Risk)
	assert.Contains(t, res.Reasons.Positive, "Lender is risk-agnostic")
}

func TestFit_PreferenceMatches(t *testing.T) {
	lender := mockLender(map[string]interface{}{
		"preferred_sectors": []string{"Construction"},
		"preferred_regions": []string{"Wales"},
	})
	m := newMatcher(t, lender)

	res := m.Fit(mockCompany(nil), &lender)

	assert.Equal(t, matcher.SectorMatchPoints, res.Components.Sector)
	assert.Equal(t, 0, res.Components.Region)
	assert.Contains(t, res.Reasons.Negative, "Region 'London' outside lender's focus")
}

func TestFit_SizeEdgeCases(t *testing.T) {
	lender := mockLender(nil)
	m := newMatcher(t, lender)

	unknown := m.Fit(mockCompany(map[string]interface{}{"turnover": nil}), &lender)
	assert.Equal(t, 0, unknown.Components.Size)
	assert.Contains(t, unknown.Reasons.Negative, "Company turnover unknown")

	small := m.Fit(mockCompany(map[string]interface{}{"turnover": 1_000_000.0}), &lender)
	assert.Contains(t, small.Reasons.Negative, "Company too small (£1.0m < £5.0m min)")

	large := m.Fit(mockCompany(map[string]interface{}{"turnover": 80_000_000.0}), &lender)
	assert.Contains(t, large.Reasons.Negative, "Company too large (£80.0m > £50.0m max)")
}

func TestFit_InclusionPoints(t *testing.T) {
	mandate := mockLender(map[string]interface{}{"inclusion_mandate": true})
	plain := mockLender(map[string]interface{}{"name": "Plain"})
	m := newMatcher(t, mandate, plain)

	tests := []struct {
		lender    *models.Lender
		inclusion float64
		expected  int
	}{
		{&mandate, 60, 10},
		{&mandate, 45, 5},
		{&mandate, 44, 0},
		{&plain, 44, 5},
		{&plain, 45, 0},
	}
	for _, tt := range tests {
		res := m.Fit(mockCompany(map[string]interface{}{"inclusion_score": tt.inclusion}), tt.lender)
		assert.Equal(t, tt.expected, res.Components.Inclusion, "%s at inclusion %v", tt.lender.Name, tt.inclusion)
	}
}

func TestFit_NeverExceedsCaps(t *testing.T) {
	lender := mockLender(map[string]interface{}{
		"preferred_sectors": []string{"Construction"},
		"preferred_regions": []string{"London"},
		"inclusion_mandate": true,
	})
	m := newMatcher(t, lender)

	res := m.Fit(mockCompany(map[string]interface{}{"inclusion_score": 99.0}), &lender)

	assert.Equal(t, 100, res.Score)
	assert.LessOrEqual(t, res.Components.Risk, matcher.RiskPoints)
	assert.LessOrEqual(t, res.Components.Sector, matcher.SectorMatchPoints)
	assert.LessOrEqual(t, res.Components.Region, matcher.RegionMatchPoints)
}

func TestFitByName_UnknownLender(t *testing.T) {
	m := newMatcher(t, mockLender(nil))

	res := m.FitByName(mockCompany(nil), "Shadow Bank")

	assert.Zero(t, res.Score)
	assert.Equal(t, []string{matcher.UnknownLenderReason}, res.Reasons.Negative)
	assert.Empty(t, res.Reasons.Positive)
}

func TestStatus(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())

	tests := []struct {
		gap      int
		expected models.ReallocationStatus
	}{
		{45, models.ReallocationStrong},
		{30, models.ReallocationStrong},
		{29, models.ReallocationModerate},
		{15, models.ReallocationModerate},
		{14, models.ReallocationMinor},
		{5, models.ReallocationMinor},
		{0, models.ReallocationAdequate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, m.Status(tt.gap), "gap %d", tt.gap)
	}
}

func TestNew_UsesConfigAsGiven(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())
	assert.Equal(t, matcher.DefaultConfig(), m.Config())

	zero := matcher.New(lenders.Default(), matcher.Config{})
	assert.Equal(t, matcher.Config{}, zero.Config())
	assert.Equal(t, models.ReallocationStrong, zero.Status(0))

	custom := matcher.New(lenders.Default(), matcher.Config{StrongThreshold: 40, ModerateThreshold: 20})
	assert.Equal(t, models.ReallocationModerate, custom.Status(30))
}

// underservedLoan is a clean-energy company in the North East held by Alpha Bank.
// Against the default registry it fits 20 / 85 / 95 / 60.
func underservedLoan() *models.Loan {
	return &models.Loan{
		ID:                 "LN_0001",
		CurrentLender:      lenders.AlphaBank,
		OutstandingBalance: 1_200_000,
		Company: mockCompany(map[string]interface{}{
			"sector":          "Clean_Energy",
			"region":          "North East",
			"risk_score":      60.0,
			"inclusion_score": 70.0,
		}),
	}
}

// wellPlacedLoan is a London financial company already with its best lender.
func wellPlacedLoan() *models.Loan {
	return &models.Loan{
		ID:                 "LN_0002",
		CurrentLender:      lenders.AlphaBank,
		OutstandingBalance: 800_000,
		Company: mockCompany(map[string]interface{}{
			"id":              "SME_0002",
			"sector":          "Financial",
			"turnover":        25_000_000.0,
			"risk_score":      80.0,
			"inclusion_score": 30.0,
		}),
	}
}

func TestAnnotate_DefaultRegistry(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())
	loan := underservedLoan()

	require.NoError(t, m.Annotate([]*models.Loan{loan}))

	fit := loan.Fit
	require.NotNil(t, fit)
	assert.Equal(t, 20, fit.CurrentLenderFit)
	assert.Equal(t, lenders.RegionalDevelopmentFund, fit.BestMatchLender)
	assert.Equal(t, 95, fit.BestMatchFit)
	assert.Equal(t, 75, fit.FitGap)
	assert.Equal(t, models.ReallocationStrong, fit.ReallocationStatus)
	assert.True(t, fit.IsMismatch)
	assert.Equal(t, []models.LenderFit{
		{Lender: lenders.AlphaBank, Fit: 20},
		{Lender: lenders.GrowthCapitalPartners, Fit: 85},
		{Lender: lenders.RegionalDevelopmentFund, Fit: 95},
		{Lender: lenders.SectorSpecialistCredit, Fit: 60},
	}, fit.AllFits)
	assert.Contains(t, fit.BestReasons.Positive, "Strong inclusion alignment with lender's mandate")
}

func TestAnnotate_BestIsNeverBelowCurrent(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())
	loans := []*models.Loan{underservedLoan(), wellPlacedLoan()}
	loans[1].CurrentLender = "Shadow Bank"

	require.NoError(t, m.Annotate(loans))

	for _, loan := range loans {
		assert.GreaterOrEqual(t, loan.Fit.BestMatchFit, loan.Fit.CurrentLenderFit)
		assert.GreaterOrEqual(t, loan.Fit.FitGap, 0)
		assert.Equal(t, loan.Fit.BestMatchFit-loan.Fit.CurrentLenderFit, loan.Fit.FitGap)
	}
	assert.Zero(t, loans[1].Fit.CurrentLenderFit)
	assert.Equal(t, []string{matcher.UnknownLenderReason}, loans[1].Fit.CurrentReasons.Negative)
}

func TestAnnotate_TiesGoToFirstLender(t *testing.T) {
	first := mockLender(map[string]interface{}{"name": "First"})
	second := mockLender(map[string]interface{}{"name": "Second"})
	m := newMatcher(t, first, second)
	loan := &models.Loan{ID: "LN_1", CurrentLender: "Second", Company: mockCompany(nil)}

	require.NoError(t, m.Annotate([]*models.Loan{loan}))

	assert.Equal(t, "First", loan.Fit.BestMatchLender)
	assert.Zero(t, loan.Fit.FitGap)
	assert.Equal(t, models.ReallocationAdequate, loan.Fit.ReallocationStatus)
}

func TestAnnotate_AllZeroPicksFirstLender(t *testing.T) {
	strict := func(name string) models.Lender {
		return mockLender(map[string]interface{}{
			"name":              name,
			"risk_score_min":    100,
			"preferred_sectors": []string{"Defence"},
			"preferred_regions": []string{"Wales"},
		})
	}
	m := newMatcher(t, strict("First"), strict("Second"))
	loan := &models.Loan{
		ID:            "LN_1",
		CurrentLender: "Second",
		Company:       mockCompany(map[string]interface{}{"risk_score": 0.0, "turnover": nil}),
	}

	require.NoError(t, m.Annotate([]*models.Loan{loan}))

	assert.Equal(t, "First", loan.Fit.BestMatchLender)
	assert.Zero(t, loan.Fit.BestMatchFit)
	assert.False(t, loan.Fit.IsMismatch)
}

func TestAnnotate_MismatchIsStrictlyAboveModerate(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())
	loan := underservedLoan()
	require.NoError(t, m.Annotate([]*models.Loan{loan}))

	assert.Equal(t, loan.Fit.FitGap > m.Config().ModerateThreshold, loan.Fit.IsMismatch)
}

func TestAnnotate_Preconditions(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())

	scored := underservedLoan()
	noInclusion := wellPlacedLoan()
	noInclusion.Company.Inclusion = nil

	err := m.Annotate([]*models.Loan{scored, noInclusion})
	assert.ErrorIs(t, err, models.ErrInclusionNotScored)
	assert.Nil(t, scored.Fit, "nothing is annotated on a precondition failure")

	noRisk := wellPlacedLoan()
	noRisk.Company.Risk = nil
	assert.ErrorIs(t, m.Annotate([]*models.Loan{noRisk}), models.ErrRiskNotScored)

	assert.ErrorIs(t, m.Annotate([]*models.Loan{{ID: "LN_X"}}), models.ErrMissingCompany)
}

func TestAnnotate_IsIdempotent(t *testing.T) {
	m := matcher.New(lenders.Default(), matcher.DefaultConfig())
	loan := underservedLoan()

	require.NoError(t, m.Annotate([]*models.Loan{loan}))
	first := *loan.Fit
	require.NoError(t, m.Annotate([]*models.Loan{loan}))

	assert.Equal(t, first, *loan.Fit)
}
