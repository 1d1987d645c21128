package lenders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/models"
)

func TestDefault_RegistryOrder(t *testing.T) {
	r := lenders.Default()

	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []string{
		lenders.AlphaBank,
		lenders.GrowthCapitalPartners,
		lenders.RegionalDevelopmentFund,
		lenders.SectorSpecialistCredit,
	}, r.Names())

	rdf, ok := r.Lookup(lenders.RegionalDevelopmentFund)
	require.True(t, ok)
	assert.True(t, rdf.InclusionMandate)
	assert.True(t, rdf.PreferredSectors.IsAny())
	assert.True(t, rdf.PreferredRegions.Contains("North East"))

	_, ok = r.Lookup("Nobody")
	assert.False(t, ok)
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r := lenders.Default()
	all := r.All()
	all[0] = nil

	assert.NotNil(t, r.All()[0], "mutating the returned slice must not change the registry")
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := lenders.NewRegistry()
	assert.ErrorIs(t, err, models.ErrEmptyRegistry)

	_, err = lenders.NewRegistry(models.Lender{Name: "A"}, models.Lender{Name: "A"})
	assert.ErrorIs(t, err, models.ErrDuplicateLender)

	_, err = lenders.NewRegistry(models.Lender{Name: "A", RiskScoreMin: models.Int(150)})
	assert.ErrorIs(t, err, models.ErrInvalidRiskScoreMin)
}

func TestParse_NullPreferenceMeansAny(t *testing.T) {
	doc := []byte(`
lenders:
  - name: Northern Growth
    risk_score_min: 45
    preferred_sectors: null
    preferred_regions: [north-east, "Yorkshire and the Humber"]
    min_turnover: 1000000
    max_turnover: 9000000
    inclusion_mandate: true
  - name: Anything Goes
    preferred_sectors: [Clean Energy]
`)

	r, err := lenders.Parse(doc)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	northern, _ := r.Lookup("Northern Growth")
	assert.True(t, northern.PreferredSectors.IsAny())
	assert.Equal(t, []string{"North East", "Yorkshire And The Humber"}, northern.PreferredRegions.Values())
	require.NotNil(t, northern.MaxTurnover)
	assert.Equal(t, 9_000_000.0, *northern.MaxTurnover)

	anything, _ := r.Lookup("Anything Goes")
	assert.Nil(t, anything.RiskScoreMin, "absent risk minimum means risk agnostic")
	assert.True(t, anything.PreferredRegions.IsAny())
	assert.True(t, anything.PreferredSectors.Contains("Clean_Energy"))
}

func TestParse_InvalidDocument(t *testing.T) {
	_, err := lenders.Parse([]byte("lenders: [not: valid: yaml"))
	assert.Error(t, err)

	_, err = lenders.Parse([]byte("lenders: []"))
	assert.ErrorIs(t, err, models.ErrEmptyRegistry)
}

func TestMarshal_RoundTripKeepsOrderAndPreferences(t *testing.T) {
	data, err := lenders.Marshal(lenders.Default())
	require.NoError(t, err)

	r, err := lenders.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, lenders.Default().Names(), r.Names())

	growth, _ := r.Lookup(lenders.GrowthCapitalPartners)
	assert.True(t, growth.PreferredRegions.IsAny())
	assert.Equal(t, []string{"Digital&Technologies", "Clean_Energy", "Life_Science"}, growth.PreferredSectors.Values())
}

func TestLoadFile_BundledRegistryMatchesDefaults(t *testing.T) {
	r, err := lenders.LoadFile("../../data/lenders.yaml")
	require.NoError(t, err)

	assert.Equal(t, lenders.Default().Names(), r.Names())

	alpha, _ := r.Lookup(lenders.AlphaBank)
	assert.Equal(t, "portfolio@alphabank.example", alpha.ContactEmail)
}
