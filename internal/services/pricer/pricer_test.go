package pricer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
)

// mockLoan creates a scored, fit-annotated loan with default values.
func mockLoan(overrides map[string]interface{}) *models.Loan {
	loan := &models.Loan{
		ID:                 "LN_0001",
		CurrentLender:      "Alpha Bank",
		OutstandingBalance: 100_000,
		MonthlyPayment:     2_000,
		YearsRemaining:     5,
		Company: &models.Company{
			ID:   "SME_0001",
			Risk: &models.RiskProfile{Score: 75},
		},
		Fit: &models.FitAnnotation{
			CurrentLenderFit: 38,
			BestMatchLender:  "Regional Development Fund",
			BestMatchFit:     85,
			FitGap:           47,
			IsMismatch:       true,
		},
	}

	if v, ok := overrides["balance"]; ok {
		loan.OutstandingBalance = v.(float64)
	}
	if v, ok := overrides["monthly"]; ok {
		loan.MonthlyPayment = v.(float64)
	}
	if v, ok := overrides["years"]; ok {
		loan.YearsRemaining = v.(float64)
	}
	if v, ok := overrides["currentFit"]; ok {
		loan.Fit.CurrentLenderFit = v.(int)
	}
	if v, ok := overrides["mismatch"]; ok {
		loan.Fit.IsMismatch = v.(bool)
	}

	return loan
}

func TestDefaultProbability(t *testing.T) {
	tests := []struct {
		score    float64
		expected float64
	}{
		{100, 0.01},
		{80, 0.01},
		{79.9, 0.02},
		{70, 0.02},
		{65, 0.03},
		{50, 0.05},
		{45, 0.08},
		{30, 0.12},
		{29.9, 0.18},
		{0, 0.18},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, pricer.DefaultProbability(tt.score), "risk score %v", tt.score)
	}
}

func TestMisfitDiscount(t *testing.T) {
	tests := []struct {
		fit      int
		expected float64
	}{
		{100, 0},
		{70, 0},
		{69, 0.03},
		{50, 0.07},
		{40, 0.12},
		{38, 0.18},
		{30, 0.18},
		{29, 0.25},
		{0, 0.25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, pricer.MisfitDiscount(tt.fit), "current fit %d", tt.fit)
	}
}

func TestPrice_WorkedExample(t *testing.T) {
	v, err := pricer.New().Price(mockLoan(nil))
	require.NoError(t, err)

	assert.Equal(t, 0.02, v.DefaultProbability)
	assert.Equal(t, 0.18, v.MisfitDiscount)
	assert.InDelta(t, 120_000, v.RemainingPayments, 1e-6)
	assert.InDelta(t, 120_000, v.GrossLoanValue, 1e-6)
	assert.InDelta(t, 1_200, v.ExpectedLoss, 1e-6)
	assert.InDelta(t, 118_800, v.RiskAdjustedValue, 1e-6)
	assert.InDelta(t, 97_416, v.SuggestedPrice, 1e-6)
	assert.Equal(t, 2.58, v.DiscountPercent)
	assert.Equal(t, 23.18, v.GrossROI)
	assert.Equal(t, 21.95, v.RiskAdjustedROI)
	assert.Equal(t, 4.39, v.AnnualizedROI)
}

func TestPrice_ZeroBalanceAndTerm(t *testing.T) {
	v, err := pricer.New().Price(mockLoan(map[string]interface{}{
		"balance": 0.0,
		"years":   0.0,
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, v.RemainingPayments)
	assert.Equal(t, 0.0, v.SuggestedPrice)
	assert.Equal(t, 0.0, v.DiscountPercent, "no discount without a balance")
	assert.Equal(t, 0.0, v.AnnualizedROI, "no ROI without a positive price")
}

func TestPrice_Preconditions(t *testing.T) {
	p := pricer.New()

	noCompany := mockLoan(nil)
	noCompany.Company = nil
	_, err := p.Price(noCompany)
	assert.ErrorIs(t, err, models.ErrMissingCompany)

	noRisk := mockLoan(nil)
	noRisk.Company.Risk = nil
	_, err = p.Price(noRisk)
	assert.ErrorIs(t, err, models.ErrRiskNotScored)

	noFit := mockLoan(nil)
	noFit.Fit = nil
	_, err = p.Price(noFit)
	assert.ErrorIs(t, err, models.ErrFitNotScored)
}

func TestAnalyze_AllOrNothing(t *testing.T) {
	good := mockLoan(nil)
	bad := mockLoan(nil)
	bad.Fit = nil

	err := pricer.New().Analyze([]*models.Loan{good, bad})
	assert.ErrorIs(t, err, models.ErrFitNotScored)
	assert.Nil(t, good.Valuation, "no loan is annotated when any loan fails")

	require.NoError(t, pricer.New().Analyze([]*models.Loan{good}))
	require.NotNil(t, good.Valuation)
	assert.Equal(t, 4.39, good.Valuation.AnnualizedROI)
}
