// Package models defines the data structures for the SME loan exchange.
package models

// Valuation is the Pricer output attached to a loan. Percentages are already scaled by 100.
type Valuation struct {
	DefaultProbability float64 `json:"default_probability"`
	RemainingPayments  float64 `json:"remaining_payments"`
	GrossLoanValue     float64 `json:"gross_loan_value"`
	ExpectedLoss       float64 `json:"expected_loss"`
	RiskAdjustedValue  float64 `json:"risk_adjusted_value"`
	MisfitDiscount     float64 `json:"misfit_discount"`
	SuggestedPrice     float64 `json:"suggested_price"`
	DiscountPercent    float64 `json:"discount_percent"`
	GrossROI           float64 `json:"gross_roi"`
	RiskAdjustedROI    float64 `json:"risk_adjusted_roi"`
	AnnualizedROI      float64 `json:"annualized_roi"`
}
