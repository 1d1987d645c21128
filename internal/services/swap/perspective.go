package swap

import (
	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// Perspective renders a swap from one participant's side. A lender that is
// not LenderA is treated as LenderB.
func Perspective(s models.SwapCandidate, lender string) models.SwapView {
	give, receive, counterparty := s.LoanB, s.LoanA, s.LenderA
	if lender == s.LenderA {
		give, receive, counterparty = s.LoanA, s.LoanB, s.LenderB
	}

	return models.SwapView{
		Lender:       lender,
		Counterparty: counterparty,
		YouGive: models.SwapSide{
			LoanID:      give.LoanID,
			Sector:      give.Sector,
			Outstanding: give.Outstanding,
			YourFit:     give.CurrentFit,
			TheirFit:    give.NewFit,
		},
		YouReceive: models.SwapSide{
			LoanID:      receive.LoanID,
			Sector:      receive.Sector,
			Outstanding: receive.Outstanding,
			YourFit:     receive.NewFit,
			TheirFit:    receive.CurrentFit,
		},
		TotalFitImprovement: s.TotalFitImprovement,
		IsInclusionSwap:     s.IsInclusionSwap,
		NeedsCashAdjustment: s.NeedsCashAdjustment,
	}
}

// Statistics summarises a swap list.
func Statistics(swaps []models.SwapCandidate) models.SwapStatistics {
	var stats models.SwapStatistics
	if len(swaps) == 0 {
		return stats
	}

	total := 0
	for _, s := range swaps {
		total += s.TotalFitImprovement
		if s.IsInclusionSwap {
			stats.InclusionSwaps++
		}
		if s.NeedsCashAdjustment {
			stats.SwapsNeedingCash++
		}
	}
	stats.TotalSwaps = len(swaps)
	stats.AvgFitImprovement = utils.Round(float64(total)/float64(len(swaps)), 1)
	return stats
}
