// Package swap discovers complementary bilateral loan swaps between lenders.
package swap

import (
	"fmt"
	"math"
	"sort"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// Inclusion bonus points.
const (
	HighInclusionBonus   = 10
	OverlookedBonus      = 5
	MaxInclusionBonus    = 30
	HighInclusionScore   = 60
	CashAdjustmentPctMin = 5
)

// Config controls which loans qualify and which pairs are value compatible.
type Config struct {
	MinFitImprovement int
	ValueTolerance    float64
}

// DefaultConfig returns the reference settings.
func DefaultConfig() Config {
	return Config{MinFitImprovement: 15, ValueTolerance: 0.20}
}

// Finder scans annotated loans for complementary mismatches.
type Finder struct {
	cfg Config
}

// NewFinder creates a finder that uses cfg as given. A zero ValueTolerance
// only pairs equal balances.
func NewFinder(cfg Config) *Finder {
	return &Finder{cfg: cfg}
}

// Config returns the settings in use.
func (f *Finder) Config() Config {
	return f.cfg
}

// Find returns every complementary swap ranked by swap score. Equal scores keep
// discovery order. Every loan must carry a company and a fit annotation.
func (f *Finder) Find(loans []*models.Loan) ([]models.SwapCandidate, error) {
	for _, loan := range loans {
		if loan.Company == nil {
			return nil, fmt.Errorf("loan %s: %w", loan.ID, models.ErrMissingCompany)
		}
		if loan.Fit == nil {
			return nil, fmt.Errorf("loan %s: %w", loan.ID, models.ErrFitNotScored)
		}
	}

	byLender := map[string][]*models.Loan{}
	var order []string
	for _, loan := range loans {
		if _, ok := byLender[loan.CurrentLender]; !ok {
			order = append(order, loan.CurrentLender)
		}
		byLender[loan.CurrentLender] = append(byLender[loan.CurrentLender], loan)
	}

	swaps := make([]models.SwapCandidate, 0)
	seen := map[models.PairKey]struct{}{}

	for _, lenderA := range order {
		for _, x := range byLender[lenderA] {
			if !f.qualifies(x) {
				continue
			}
			lenderB := x.Fit.BestMatchLender
			if lenderB == "" || lenderB == lenderA {
				continue
			}

			for _, y := range byLender[lenderB] {
				if !f.qualifies(y) || y.Fit.BestMatchLender != lenderA {
					continue
				}

				key := models.NewPairKey(x.ID, y.ID)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				if !f.Compatible(x.OutstandingBalance, y.OutstandingBalance) {
					continue
				}
				swaps = append(swaps, newCandidate(key, x, y, lenderA, lenderB))
			}
		}
	}

	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].SwapScore > swaps[j].SwapScore
	})
	return swaps, nil
}

func (f *Finder) qualifies(loan *models.Loan) bool {
	return loan.Fit.FitGap >= f.cfg.MinFitImprovement
}

// ratioEpsilon absorbs float error at the tolerance edges.
const ratioEpsilon = 1e-9

// Compatible reports whether two balances are within the value tolerance of
// each other. Both edges are inclusive.
func (f *Finder) Compatible(a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	ratio := a / b
	hi := 1 + f.cfg.ValueTolerance
	return ratio >= 1/hi-ratioEpsilon && ratio <= hi+ratioEpsilon
}

// ForLender keeps the swaps touching lender, preserving rank order.
func ForLender(swaps []models.SwapCandidate, lender string) []models.SwapCandidate {
	out := make([]models.SwapCandidate, 0)
	for i := range swaps {
		if swaps[i].Involves(lender) {
			out = append(out, swaps[i])
		}
	}
	return out
}

func newCandidate(key models.PairKey, x, y *models.Loan, lenderA, lenderB string) models.SwapCandidate {
	total := x.Fit.FitGap + y.Fit.FitGap
	bonus := InclusionBonus(x.Company, y.Company)

	a, b := x.OutstandingBalance, y.OutstandingBalance
	diff := math.Abs(a - b)
	var pct float64
	if larger := math.Max(a, b); larger > 0 {
		pct = diff / larger * 100
	}

	return models.SwapCandidate{
		PairKey:             key,
		LenderA:             lenderA,
		LenderB:             lenderB,
		LoanA:               leg(x, lenderB),
		LoanB:               leg(y, lenderA),
		TotalFitImprovement: total,
		InclusionBonus:      bonus,
		SwapScore:           total + bonus,
		IsInclusionSwap:     bonus > 0,
		ValueDifference:     diff,
		ValueDifferencePct:  pct,
		NeedsCashAdjustment: pct > CashAdjustmentPctMin,
	}
}

// InclusionBonus awards points for each underserved company in the pair.
func InclusionBonus(companies ...*models.Company) int {
	bonus := 0
	for _, c := range companies {
		if c.InclusionScore() >= HighInclusionScore {
			bonus += HighInclusionBonus
		}
		if c.Inclusion.HasFlag(models.FlagStrongButOverlooked) {
			bonus += OverlookedBonus
		}
	}
	if bonus > MaxInclusionBonus {
		bonus = MaxInclusionBonus
	}
	return bonus
}

// leg describes loan moving to receiver. NewFit is the receiver's recorded fit,
// or the best-match fit when the annotation has no per-lender entry.
func leg(loan *models.Loan, receiver string) models.SwapLeg {
	newFit, ok := loan.Fit.FitFor(receiver)
	if !ok {
		newFit = loan.Fit.BestMatchFit
	}
	return models.SwapLeg{
		LoanID:         loan.ID,
		CompanyID:      loan.Company.ID,
		Sector:         loan.Company.Sector,
		Region:         loan.Company.Region,
		Outstanding:    loan.OutstandingBalance,
		CurrentFit:     loan.Fit.CurrentLenderFit,
		NewFit:         newFit,
		FitGap:         loan.Fit.FitGap,
		InclusionScore: loan.Company.InclusionScore(),
		YearsRemaining: loan.YearsRemaining,
	}
}
