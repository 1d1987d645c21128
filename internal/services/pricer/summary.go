package pricer

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// Bucket is one labelled range of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MarketStats summarises the pricing of mismatched loans.
type MarketStats struct {
	CandidatesCount      int      `json:"candidates_count"`
	TotalOutstanding     float64  `json:"total_outstanding"`
	TotalSuggested       float64  `json:"total_suggested_prices"`
	AverageDiscount      float64  `json:"average_discount"`
	AverageBuyerROI      float64  `json:"average_buyer_roi"`
	DiscountDistribution []Bucket `json:"discount_distribution"`
	ROIDistribution      []Bucket `json:"roi_distribution"`
}

// ComputeMarketStats aggregates the valuations of mismatched loans. Loans without a
// valuation are skipped.
func ComputeMarketStats(loans []*models.Loan) MarketStats {
	discount := []Bucket{{Label: "<5%"}, {Label: "5-10%"}, {Label: "10-15%"}, {Label: "15-20%"}, {Label: ">20%"}}
	roi := []Bucket{{Label: "<5%"}, {Label: "5-10%"}, {Label: "10-15%"}, {Label: ">15%"}}

	var stats MarketStats
	var discounts, rois []float64
	for _, loan := range loans {
		if !loan.IsMismatch() || loan.Valuation == nil {
			continue
		}
		v := loan.Valuation
		stats.CandidatesCount++
		stats.TotalOutstanding += loan.OutstandingBalance
		stats.TotalSuggested += v.SuggestedPrice
		discounts = append(discounts, v.DiscountPercent)
		rois = append(rois, v.AnnualizedROI)

		discount[bucketIndex(v.DiscountPercent, 5, 10, 15, 20)].Count++
		roi[bucketIndex(v.AnnualizedROI, 5, 10, 15)].Count++
	}

	if stats.CandidatesCount > 0 {
		stats.AverageDiscount = utils.Round(stat.Mean(discounts, nil), 1)
		stats.AverageBuyerROI = utils.Round(stat.Mean(rois, nil), 1)
	}
	stats.TotalOutstanding = utils.Round(stats.TotalOutstanding, 2)
	stats.TotalSuggested = utils.Round(stats.TotalSuggested, 2)
	stats.DiscountDistribution = discount
	stats.ROIDistribution = roi
	return stats
}

// bucketIndex returns the index of the first edge v falls below.
func bucketIndex(v float64, edges ...float64) int {
	for i, edge := range edges {
		if v < edge {
			return i
		}
	}
	return len(edges)
}

// TransactionKind is the type of a proposed transfer.
type TransactionKind string

const (
	TransactionSale     TransactionKind = "sale"
	TransactionSwap     TransactionKind = "swap"
	TransactionSwapCash TransactionKind = "swap_cash"
)

// TransactionSummary is the display-ready summary of a proposed transfer.
type TransactionSummary struct {
	Kind            TransactionKind `json:"transaction_type"`
	Seller          string          `json:"seller"`
	Buyer           string          `json:"buyer"`
	LoanOutstanding string          `json:"loan_outstanding"`
	SuggestedPrice  string          `json:"suggested_price"`
	Discount        string          `json:"discount"`
	BuyerROI        string          `json:"buyer_roi"`
	RiskProfile     string          `json:"risk_profile"`
	FitImprovement  string          `json:"fit_improvement"`
	Note            string          `json:"note,omitempty"`
}

// Summarize renders a priced loan as a transaction summary.
func Summarize(loan *models.Loan, kind TransactionKind) (TransactionSummary, error) {
	if loan.Fit == nil {
		return TransactionSummary{}, fmt.Errorf("loan %s: %w", loan.ID, models.ErrFitNotScored)
	}
	var v models.Valuation
	if loan.Valuation != nil {
		v = *loan.Valuation
	}

	summary := TransactionSummary{
		Kind:            kind,
		Seller:          loan.CurrentLender,
		Buyer:           loan.Fit.BestMatchLender,
		LoanOutstanding: FormatPrice(loan.OutstandingBalance),
		SuggestedPrice:  FormatPrice(v.SuggestedPrice),
		Discount:        fmt.Sprintf("%.1f%%", v.DiscountPercent),
		BuyerROI:        fmt.Sprintf("%.1f%%", v.AnnualizedROI),
		FitImprovement:  fmt.Sprintf("+%d points", loan.Fit.BestMatchFit-loan.Fit.CurrentLenderFit),
	}
	if loan.Company != nil {
		summary.RiskProfile = fmt.Sprintf("Risk Score %.0f/100", loan.Company.RiskScore())
	}

	switch kind {
	case TransactionSwap:
		summary.Note = "Swap transaction - look for matching loan from buyer's portfolio"
	case TransactionSwapCash:
		summary.Note = "Swap with cash adjustment for value difference"
	}
	return summary, nil
}

// FormatPrice renders a currency amount in pounds.
func FormatPrice(value float64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("£%.2fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("£%.1fK", value/1_000)
	default:
		return fmt.Sprintf("£%.2f", value)
	}
}
