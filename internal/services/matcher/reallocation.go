package matcher

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// CandidateFilter narrows the reallocation candidate list.
type CandidateFilter int

const (
	// AllMismatches keeps every mismatched loan.
	AllMismatches CandidateFilter = iota
	// StrongOnly keeps strong reallocation candidates.
	StrongOnly
	// CandidatesOnly keeps strong and moderate candidates.
	CandidatesOnly
)

// ReallocationCandidates returns the mismatched loans matching filter, ordered
// by fit gap descending. Equal gaps keep dataset order.
func ReallocationCandidates(loans []*models.Loan, filter CandidateFilter) []*models.Loan {
	out := make([]*models.Loan, 0)
	for _, loan := range loans {
		if !loan.IsMismatch() {
			continue
		}
		switch filter {
		case StrongOnly:
			if loan.Fit.ReallocationStatus != models.ReallocationStrong {
				continue
			}
		case CandidatesOnly:
			if !loan.Fit.ReallocationStatus.IsCandidate() {
				continue
			}
		}
		out = append(out, loan)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fit.FitGap > out[j].Fit.FitGap
	})
	return out
}

// Situation is one side of a reallocation recommendation.
type Situation struct {
	Lender   string            `json:"lender"`
	FitScore int               `json:"fit_score"`
	Reasons  models.FitReasons `json:"reasons"`
}

// Recommendation compares a loan's current lender with its best match.
type Recommendation struct {
	CompanyID      string                    `json:"company_id"`
	Sector         string                    `json:"sector"`
	Region         string                    `json:"region"`
	Turnover       *float64                  `json:"turnover"`
	RiskScore      float64                   `json:"risk_score"`
	InclusionScore float64                   `json:"inclusion_score"`
	Current        Situation                 `json:"current_situation"`
	Recommended    Situation                 `json:"recommendation"`
	FitImprovement int                       `json:"fit_improvement"`
	Status         models.ReallocationStatus `json:"status"`
	IsMismatch     bool                      `json:"is_mismatch"`
	AllFits        []models.LenderFit        `json:"all_lender_fits"`
}

// Recommend builds the recommendation for an annotated loan.
func Recommend(loan *models.Loan) (Recommendation, error) {
	if loan.Company == nil {
		return Recommendation{}, models.ErrMissingCompany
	}
	if loan.Fit == nil {
		return Recommendation{}, models.ErrFitNotScored
	}

	c := loan.Company
	fit := loan.Fit
	return Recommendation{
		CompanyID:      c.ID,
		Sector:         c.Sector,
		Region:         c.Region,
		Turnover:       c.Financials.Turnover,
		RiskScore:      c.RiskScore(),
		InclusionScore: c.InclusionScore(),
		Current:        Situation{Lender: loan.CurrentLender, FitScore: fit.CurrentLenderFit, Reasons: fit.CurrentReasons},
		Recommended:    Situation{Lender: fit.BestMatchLender, FitScore: fit.BestMatchFit, Reasons: fit.BestReasons},
		FitImprovement: fit.FitGap,
		Status:         fit.ReallocationStatus,
		IsMismatch:     fit.IsMismatch,
		AllFits:        fit.AllFits,
	}, nil
}

// LenderFlow compares a lender's current book with its optimal book.
type LenderFlow struct {
	Lender           string `json:"lender"`
	CurrentPortfolio int    `json:"current_portfolio"`
	OptimalPortfolio int    `json:"optimal_portfolio"`
	NetFlow          int    `json:"net_flow"`
}

// MarketSummary aggregates fit annotations across the market.
type MarketSummary struct {
	TotalCompanies          int          `json:"total_companies"`
	MismatchedCompanies     int          `json:"mismatched_companies"`
	MismatchPercentage      float64      `json:"mismatch_percentage"`
	StrongCandidates        int          `json:"strong_candidates"`
	ModerateCandidates      int          `json:"moderate_candidates"`
	TotalCandidates         int          `json:"total_candidates"`
	AverageCurrentFit       float64      `json:"average_current_fit"`
	AverageOptimalFit       float64      `json:"average_optimal_fit"`
	AverageImprovement      float64      `json:"average_improvement"`
	LenderFlows             []LenderFlow `json:"lender_flows"`
	ReallocationOutstanding float64      `json:"reallocation_outstanding"`
}

// MarketSummary aggregates the annotated loans. Lender flows follow registry order.
// Loans without a fit annotation are ignored.
func (m *Matcher) MarketSummary(loans []*models.Loan) MarketSummary {
	var summary MarketSummary
	current := make([]float64, 0, len(loans))
	optimal := make([]float64, 0, len(loans))
	currentCount := map[string]int{}
	optimalCount := map[string]int{}

	for _, loan := range loans {
		if loan.Fit == nil {
			continue
		}
		summary.TotalCompanies++
		current = append(current, float64(loan.Fit.CurrentLenderFit))
		optimal = append(optimal, float64(loan.Fit.BestMatchFit))
		currentCount[loan.CurrentLender]++
		optimalCount[loan.Fit.BestMatchLender]++

		switch loan.Fit.ReallocationStatus {
		case models.ReallocationStrong:
			summary.StrongCandidates++
		case models.ReallocationModerate:
			summary.ModerateCandidates++
		}
		if loan.Fit.IsMismatch {
			summary.MismatchedCompanies++
			summary.ReallocationOutstanding += loan.OutstandingBalance
		}
	}
	summary.TotalCandidates = summary.StrongCandidates + summary.ModerateCandidates

	if summary.TotalCompanies > 0 {
		avgCurrent := stat.Mean(current, nil)
		avgOptimal := stat.Mean(optimal, nil)
		summary.MismatchPercentage = utils.Round(float64(summary.MismatchedCompanies)/float64(summary.TotalCompanies)*100, 1)
		summary.AverageCurrentFit = utils.Round(avgCurrent, 1)
		summary.AverageOptimalFit = utils.Round(avgOptimal, 1)
		summary.AverageImprovement = utils.Round(avgOptimal-avgCurrent, 1)
	}
	summary.ReallocationOutstanding = utils.Round(summary.ReallocationOutstanding, 2)

	for _, name := range lenderNames(m.registry) {
		summary.LenderFlows = append(summary.LenderFlows, LenderFlow{
			Lender:           name,
			CurrentPortfolio: currentCount[name],
			OptimalPortfolio: optimalCount[name],
			NetFlow:          optimalCount[name] - currentCount[name],
		})
	}

	return summary
}

func lenderNames(r Registry) []string {
	all := r.All()
	names := make([]string, len(all))
	for i, lender := range all {
		names[i] = lender.Name
	}
	return names
}
