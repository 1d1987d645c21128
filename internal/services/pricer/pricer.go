// Package pricer values loans for transfer from their fit and risk signals.
package pricer

import (
	"fmt"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// RecoveryRate is the assumed recovery on a defaulted SME loan.
const RecoveryRate = 0.40

type band struct {
	min   float64
	value float64
}

// Default probability by minimum risk score, highest band first.
var defaultProbabilityBands = []band{
	{80, 0.01},
	{70, 0.02},
	{60, 0.03},
	{50, 0.05},
	{40, 0.08},
	{30, 0.12},
}

// Misfit discount by minimum current-lender fit, highest band first.
var misfitDiscountBands = []band{
	{70, 0},
	{60, 0.03},
	{50, 0.07},
	{40, 0.12},
	{30, 0.18},
}

// Pricer computes valuations. It is stateless.
type Pricer struct{}

// New creates a pricer.
func New() *Pricer {
	return &Pricer{}
}

// DefaultProbability maps a risk score onto an estimated default probability.
func DefaultProbability(riskScore float64) float64 {
	return lookup(defaultProbabilityBands, riskScore, 0.18)
}

// MisfitDiscount maps the current-lender fit onto the seller's exit discount.
func MisfitDiscount(currentFit int) float64 {
	return lookup(misfitDiscountBands, float64(currentFit), 0.25)
}

func lookup(bands []band, v, floor float64) float64 {
	for _, b := range bands {
		if v >= b.min {
			return b.value
		}
	}
	return floor
}

// Price values one loan. The company must be risk scored and the loan fit annotated.
func (p *Pricer) Price(loan *models.Loan) (models.Valuation, error) {
	if loan.Company == nil {
		return models.Valuation{}, fmt.Errorf("loan %s: %w", loan.ID, models.ErrMissingCompany)
	}
	if loan.Company.Risk == nil {
		return models.Valuation{}, fmt.Errorf("company %s: %w", loan.Company.ID, models.ErrRiskNotScored)
	}
	if loan.Fit == nil {
		return models.Valuation{}, fmt.Errorf("loan %s: %w", loan.ID, models.ErrFitNotScored)
	}

	balance := loan.OutstandingBalance
	years := loan.YearsRemaining

	v := models.Valuation{
		DefaultProbability: DefaultProbability(loan.Company.Risk.Score),
		RemainingPayments:  loan.MonthlyPayment * years * 12,
		MisfitDiscount:     MisfitDiscount(loan.Fit.CurrentLenderFit),
	}
	v.GrossLoanValue = v.RemainingPayments
	v.ExpectedLoss = v.DefaultProbability * (1 - RecoveryRate) * balance
	v.RiskAdjustedValue = v.GrossLoanValue - v.ExpectedLoss
	v.SuggestedPrice = v.RiskAdjustedValue * (1 - v.MisfitDiscount)

	if balance > 0 {
		v.DiscountPercent = utils.Round((1-v.SuggestedPrice/balance)*100, 2)
	}

	if price := v.SuggestedPrice; price > 0 {
		gross := (v.RemainingPayments - price) / price
		riskAdjusted := (v.RemainingPayments - price - v.ExpectedLoss) / price
		annualized := riskAdjusted
		if years > 0 {
			annualized = riskAdjusted / years
		}
		v.GrossROI = utils.Round(gross*100, 2)
		v.RiskAdjustedROI = utils.Round(riskAdjusted*100, 2)
		v.AnnualizedROI = utils.Round(annualized*100, 2)
	}

	return v, nil
}

// Analyze attaches a valuation to every loan. Nothing is modified on error.
func (p *Pricer) Analyze(loans []*models.Loan) error {
	valuations := make([]models.Valuation, len(loans))
	for i, loan := range loans {
		v, err := p.Price(loan)
		if err != nil {
			return err
		}
		valuations[i] = v
	}
	for i, loan := range loans {
		v := valuations[i]
		loan.Valuation = &v
	}
	return nil
}
