// Package models defines the data structures for the SME loan exchange.
package models

// ReallocationStatus is derived from the fit gap of a loan.
type ReallocationStatus string

const (
	ReallocationStrong   ReallocationStatus = "STRONG REALLOCATION CANDIDATE"
	ReallocationModerate ReallocationStatus = "MODERATE REALLOCATION CANDIDATE"
	ReallocationMinor    ReallocationStatus = "MINOR IMPROVEMENT POSSIBLE"
	ReallocationAdequate ReallocationStatus = "ADEQUATE FIT - NO ACTION"
)

// IsCandidate reports whether the status marks a strong or moderate reallocation candidate.
func (s ReallocationStatus) IsCandidate() bool {
	return s == ReallocationStrong || s == ReallocationModerate
}

// FitReasons holds the ordered reason strings behind a fit score.
type FitReasons struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// FitComponents are the capped points of each fit dimension.
type FitComponents struct {
	Risk      int `json:"risk"`
	Sector    int `json:"sector"`
	Region    int `json:"region"`
	Size      int `json:"size"`
	Inclusion int `json:"inclusion"`
}

// Total sums the components.
func (c FitComponents) Total() int {
	return c.Risk + c.Sector + c.Region + c.Size + c.Inclusion
}

// LenderFit is one entry of a loan's lender-to-fit map.
type LenderFit struct {
	Lender string `json:"lender"`
	Fit    int    `json:"fit"`
}

// FitAnnotation is the Fit Matcher output attached to a loan.
type FitAnnotation struct {
	CurrentLenderFit   int                `json:"current_lender_fit"`
	CurrentReasons     FitReasons         `json:"current_fit_reasons"`
	BestMatchLender    string             `json:"best_match_lender"`
	BestMatchFit       int                `json:"best_match_fit"`
	BestReasons        FitReasons         `json:"best_match_reasons"`
	AllFits            []LenderFit        `json:"all_lender_fits"`
	FitGap             int                `json:"fit_gap"`
	ReallocationStatus ReallocationStatus `json:"reallocation_status"`
	IsMismatch         bool               `json:"is_mismatch"`
}

// FitFor returns the fit recorded against the named lender.
func (a *FitAnnotation) FitFor(lender string) (int, bool) {
	for _, f := range a.AllFits {
		if f.Lender == lender {
			return f.Fit, true
		}
	}
	return 0, false
}

// Loan is the single loan held by a company.
type Loan struct {
	ID                 string   `json:"loan_id"`
	Company            *Company `json:"company"`
	CurrentLender      string   `json:"current_lender"`
	LoanAmount         float64  `json:"loan_amount"`
	TermYears          int      `json:"loan_term_years"`
	InterestRate       float64  `json:"interest_rate"`
	YearsRemaining     float64  `json:"years_remaining"`
	OutstandingBalance float64  `json:"outstanding_balance"`
	MonthlyPayment     float64  `json:"monthly_payment"`

	Fit       *FitAnnotation `json:"fit,omitempty"`
	Valuation *Valuation     `json:"valuation,omitempty"`
}

// IsMismatch reports whether the loan has been annotated as a mismatch.
func (l *Loan) IsMismatch() bool {
	return l.Fit != nil && l.Fit.IsMismatch
}

// Companies returns the companies behind the loans, in order.
func Companies(loans []*Loan) []*Company {
	companies := make([]*Company, 0, len(loans))
	for _, loan := range loans {
		if loan.Company != nil {
			companies = append(companies, loan.Company)
		}
	}
	return companies
}
