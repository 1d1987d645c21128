// Package models defines the data structures for the SME loan exchange.
package models

// PairKey identifies a swap independently of discovery direction.
type PairKey struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// NewPairKey orders the two loan identifiers canonically.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{First: a, Second: b}
}

// String renders the key as "first|second".
func (k PairKey) String() string {
	return k.First + "|" + k.Second
}

// SwapLeg describes one loan of a swap from its current holder's side.
type SwapLeg struct {
	LoanID         string  `json:"loan_id"`
	CompanyID      string  `json:"company_id"`
	Sector         string  `json:"sector"`
	Region         string  `json:"region"`
	Outstanding    float64 `json:"outstanding"`
	CurrentFit     int     `json:"current_fit"`
	NewFit         int     `json:"new_fit"`
	FitGap         int     `json:"fit_gap"`
	InclusionScore float64 `json:"inclusion_score"`
	YearsRemaining float64 `json:"years_remaining"`
}

// SwapCandidate is a proposed bilateral exchange: LenderA gives LoanA to LenderB
// and receives LoanB in return.
type SwapCandidate struct {
	PairKey             PairKey `json:"pair_key"`
	LenderA             string  `json:"lender_a"`
	LenderB             string  `json:"lender_b"`
	LoanA               SwapLeg `json:"loan_a"`
	LoanB               SwapLeg `json:"loan_b"`
	TotalFitImprovement int     `json:"total_fit_improvement"`
	InclusionBonus      int     `json:"inclusion_bonus"`
	SwapScore           int     `json:"swap_score"`
	IsInclusionSwap     bool    `json:"is_inclusion_swap"`
	ValueDifference     float64 `json:"value_difference"`
	ValueDifferencePct  float64 `json:"value_difference_pct"`
	NeedsCashAdjustment bool    `json:"needs_cash_adjustment"`
}

// Involves reports whether the lender is one side of the swap.
func (s *SwapCandidate) Involves(lender string) bool {
	return s.LenderA == lender || s.LenderB == lender
}

// SwapSide is one loan of a swap as seen by a participating lender.
type SwapSide struct {
	LoanID      string  `json:"loan_id"`
	Sector      string  `json:"sector"`
	Outstanding float64 `json:"outstanding"`
	YourFit     int     `json:"your_fit"`
	TheirFit    int     `json:"their_fit"`
}

// SwapView is a swap from one lender's perspective.
type SwapView struct {
	Lender              string   `json:"lender"`
	Counterparty        string   `json:"counterparty"`
	YouGive             SwapSide `json:"you_give"`
	YouReceive          SwapSide `json:"you_receive"`
	TotalFitImprovement int      `json:"total_fit_improvement"`
	IsInclusionSwap     bool     `json:"is_inclusion_swap"`
	NeedsCashAdjustment bool     `json:"needs_cash_adjustment"`
}

// SwapStatistics summarises a candidate list.
type SwapStatistics struct {
	TotalSwaps        int     `json:"total_swaps"`
	InclusionSwaps    int     `json:"inclusion_swaps"`
	AvgFitImprovement float64 `json:"avg_fit_improvement"`
	SwapsNeedingCash  int     `json:"swaps_needing_cash"`
}
