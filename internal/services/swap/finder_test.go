package swap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
)

const (
	alpha  = "Alpha Bank"
	growth = "Growth Capital Partners"
	rdf    = "Regional Development Fund"
)

// mockLoan creates a fit-annotated loan with default values.
func mockLoan(overrides map[string]interface{}) *models.Loan {
	loan := &models.Loan{
		ID:                 "SME_0001",
		CurrentLender:      alpha,
		OutstandingBalance: 1_000_000,
		YearsRemaining:     4,
		Company: &models.Company{
			ID:        "SME_0001",
			Sector:    "Construction",
			Region:    "London",
			Inclusion: &models.InclusionProfile{Score: 40, Flags: []string{}},
		},
		Fit: &models.FitAnnotation{
			CurrentLenderFit: 40,
			BestMatchLender:  growth,
			BestMatchFit:     80,
			FitGap:           40,
		},
	}

	if v, ok := overrides["id"]; ok {
		loan.ID = v.(string)
		loan.Company.ID = v.(string)
	}
	if v, ok := overrides["lender"]; ok {
		loan.CurrentLender = v.(string)
	}
	if v, ok := overrides["best"]; ok {
		loan.Fit.BestMatchLender = v.(string)
	}
	if v, ok := overrides["gap"]; ok {
		loan.Fit.FitGap = v.(int)
		loan.Fit.BestMatchFit = loan.Fit.CurrentLenderFit + v.(int)
	}
	if v, ok := overrides["balance"]; ok {
		loan.OutstandingBalance = v.(float64)
	}
	if v, ok := overrides["inclusion"]; ok {
		loan.Company.Inclusion.Score = v.(float64)
	}
	if v, ok := overrides["flags"]; ok {
		loan.Company.Inclusion.Flags = v.([]string)
	}

	return loan
}

// sampleLoans: 0001 and 0002 are complementary; 0003 has too small a gap;
// 0004 is complementary to 0001 but 25% larger.
func sampleLoans() []*models.Loan {
	return []*models.Loan{
		mockLoan(map[string]interface{}{
			"id": "SME_0001", "lender": alpha, "best": growth, "gap": 40,
			"balance": 1_500_000.0, "inclusion": 65.0,
		}),
		mockLoan(map[string]interface{}{
			"id": "SME_0002", "lender": growth, "best": alpha, "gap": 32,
			"balance": 1_400_000.0, "flags": []string{models.FlagStrongButOverlooked},
		}),
		mockLoan(map[string]interface{}{
			"id": "SME_0003", "lender": alpha, "best": growth, "gap": 10,
			"balance": 1_450_000.0,
		}),
		mockLoan(map[string]interface{}{
			"id": "SME_0004", "lender": growth, "best": alpha, "gap": 20,
			"balance": 1_875_000.0,
		}),
	}
}

func TestFind_SampleDataset(t *testing.T) {
	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(sampleLoans())
	require.NoError(t, err)
	require.Len(t, swaps, 1)

	s := swaps[0]
	assert.Equal(t, models.NewPairKey("SME_0001", "SME_0002"), s.PairKey)
	assert.Equal(t, alpha, s.LenderA)
	assert.Equal(t, growth, s.LenderB)
	assert.Equal(t, "SME_0001", s.LoanA.LoanID)
	assert.Equal(t, "SME_0002", s.LoanB.LoanID)
	assert.Equal(t, 72, s.TotalFitImprovement)
	assert.Equal(t, 15, s.InclusionBonus)
	assert.Equal(t, 87, s.SwapScore)
	assert.True(t, s.IsInclusionSwap)
	assert.InDelta(t, 100_000, s.ValueDifference, 1e-6)
	assert.InDelta(t, 6.667, s.ValueDifferencePct, 0.001)
	assert.True(t, s.NeedsCashAdjustment)

	assert.Equal(t, 40, s.LoanA.CurrentFit)
	assert.Equal(t, 80, s.LoanA.NewFit)
	assert.Equal(t, 65.0, s.LoanA.InclusionScore)
}

func TestFind_EachPairOnce(t *testing.T) {
	loans := sampleLoans()
	loans[3].OutstandingBalance = 1_450_000

	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(loans)
	require.NoError(t, err)

	seen := map[models.PairKey]bool{}
	for _, s := range swaps {
		assert.False(t, seen[s.PairKey], "pair %s reported twice", s.PairKey)
		seen[s.PairKey] = true
	}
	assert.Len(t, swaps, 2)
	assert.Equal(t, 87, swaps[0].SwapScore, "ranked by score descending")
	assert.Equal(t, 70, swaps[1].SwapScore, "40+20 fit plus 10 for SME_0001")
}

func TestFind_RankingIsStable(t *testing.T) {
	loans := []*models.Loan{
		mockLoan(map[string]interface{}{"id": "A1", "lender": alpha, "best": growth, "gap": 20}),
		mockLoan(map[string]interface{}{"id": "A2", "lender": alpha, "best": growth, "gap": 20}),
		mockLoan(map[string]interface{}{"id": "G1", "lender": growth, "best": alpha, "gap": 20}),
	}

	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(loans)
	require.NoError(t, err)
	require.Len(t, swaps, 2)

	assert.Equal(t, "A1", swaps[0].LoanA.LoanID)
	assert.Equal(t, "A2", swaps[1].LoanA.LoanID)
}

func TestFind_RequiresMutualBestMatch(t *testing.T) {
	loans := []*models.Loan{
		mockLoan(map[string]interface{}{"id": "A1", "lender": alpha, "best": growth}),
		mockLoan(map[string]interface{}{"id": "G1", "lender": growth, "best": rdf}),
	}

	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(loans)
	require.NoError(t, err)
	assert.Empty(t, swaps)
}

func TestFind_NonPositiveBalancesNeverSwap(t *testing.T) {
	loans := []*models.Loan{
		mockLoan(map[string]interface{}{"id": "A1", "lender": alpha, "best": growth, "balance": 0.0}),
		mockLoan(map[string]interface{}{"id": "G1", "lender": growth, "best": alpha, "balance": 0.0}),
	}

	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(loans)
	require.NoError(t, err)
	assert.Empty(t, swaps)
}

func TestFind_Preconditions(t *testing.T) {
	finder := swap.NewFinder(swap.DefaultConfig())

	unscored := mockLoan(nil)
	unscored.Fit = nil
	_, err := finder.Find([]*models.Loan{unscored})
	assert.ErrorIs(t, err, models.ErrFitNotScored)

	orphan := mockLoan(nil)
	orphan.Company = nil
	_, err = finder.Find([]*models.Loan{orphan})
	assert.ErrorIs(t, err, models.ErrMissingCompany)

	swaps, err := finder.Find(nil)
	require.NoError(t, err)
	assert.NotNil(t, swaps)
	assert.Empty(t, swaps)
}

func TestCompatible(t *testing.T) {
	finder := swap.NewFinder(swap.DefaultConfig())

	assert.True(t, finder.Compatible(100, 100))
	assert.True(t, finder.Compatible(100, 119))
	assert.True(t, finder.Compatible(119, 100))
	assert.True(t, finder.Compatible(120, 100), "upper edge is inclusive")
	assert.True(t, finder.Compatible(100, 120), "lower edge is inclusive")
	assert.False(t, finder.Compatible(120.01, 100))
	assert.False(t, finder.Compatible(100, 120.01))
	assert.False(t, finder.Compatible(100, 125))
	assert.False(t, finder.Compatible(125, 100))
	assert.False(t, finder.Compatible(0, 100))
	assert.False(t, finder.Compatible(100, -5))

	loose := swap.NewFinder(swap.Config{MinFitImprovement: 15, ValueTolerance: 0.5})
	assert.True(t, loose.Compatible(100, 150))
	assert.True(t, loose.Compatible(150, 100))

	exact := swap.NewFinder(swap.Config{})
	assert.Equal(t, swap.Config{}, exact.Config())
	assert.True(t, exact.Compatible(100, 100))
	assert.False(t, exact.Compatible(100, 101))
}

func TestInclusionBonus(t *testing.T) {
	high := &models.Company{Inclusion: &models.InclusionProfile{Score: 70, Flags: []string{models.FlagStrongButOverlooked}}}
	plain := &models.Company{Inclusion: &models.InclusionProfile{Score: 40}}

	assert.Equal(t, 0, swap.InclusionBonus(plain, plain))
	assert.Equal(t, 15, swap.InclusionBonus(high, plain))
	assert.Equal(t, 30, swap.InclusionBonus(high, high))
	assert.Equal(t, swap.MaxInclusionBonus, swap.InclusionBonus(high, high, high))
	assert.Equal(t, 0, swap.InclusionBonus(&models.Company{}), "unscored companies earn nothing")
}

func TestForLender(t *testing.T) {
	loans := sampleLoans()
	loans[3].OutstandingBalance = 1_450_000
	swaps, err := swap.NewFinder(swap.DefaultConfig()).Find(loans)
	require.NoError(t, err)

	assert.Len(t, swap.ForLender(swaps, alpha), 2)
	assert.Len(t, swap.ForLender(swaps, growth), 2)
	assert.Empty(t, swap.ForLender(swaps, rdf))
}
