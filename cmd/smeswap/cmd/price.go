package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/matcher"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price one loan for transfer to its best-fit lender",
	Long: `Show the valuation of a single loan and a transaction summary for
moving it from its current lender to the best-fit lender.

--kind selects the summary: sale, swap or swap_cash.

Example:
  smeswap price --data data/sample_dataset.csv --loan LN_0001 --kind swap`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var (
	priceLoanID string
	priceKind   string
	priceJSON   bool
)

func init() {
	rootCmd.AddCommand(priceCmd)
	addDataFlag(priceCmd)

	priceCmd.Flags().StringVar(&priceLoanID, "loan", "", "loan ID to price (required)")
	priceCmd.Flags().StringVar(&priceKind, "kind", string(pricer.TransactionSale), "transaction kind: sale, swap or swap_cash")
	priceCmd.Flags().BoolVar(&priceJSON, "json", false, "write valuation and summary as JSON")
	priceCmd.MarkFlagRequired("loan")
}

func runPrice(cmd *cobra.Command, args []string) error {
	kind := pricer.TransactionKind(priceKind)
	switch kind {
	case pricer.TransactionSale, pricer.TransactionSwap, pricer.TransactionSwapCash:
	default:
		return fmt.Errorf("unknown transaction kind %q", priceKind)
	}

	result, _, err := runPipeline(cmd)
	if err != nil {
		return err
	}

	loan, ok := result.Loan(priceLoanID)
	if !ok {
		return fmt.Errorf("loan %s not found in %s", priceLoanID, dataPath)
	}

	summary, err := pricer.Summarize(loan, kind)
	if err != nil {
		return err
	}
	rec, err := matcher.Recommend(loan)
	if err != nil {
		return err
	}

	if priceJSON {
		return writeJSON(cmd, struct {
			Recommendation matcher.Recommendation    `json:"recommendation"`
			Valuation      *models.Valuation         `json:"valuation"`
			Summary        pricer.TransactionSummary `json:"summary"`
		}{rec, loan.Valuation, summary})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loan %s (%s, %s)\n", loan.ID, rec.Sector, rec.Region)
	fmt.Fprintf(out, "Status:           %s\n", rec.Status)
	fmt.Fprintf(out, "Seller -> buyer:  %s (%d) -> %s (%d)\n",
		summary.Seller, rec.Current.FitScore, summary.Buyer, rec.Recommended.FitScore)
	fmt.Fprintf(out, "Outstanding:      %s\n", summary.LoanOutstanding)
	fmt.Fprintf(out, "Suggested price:  %s\n", summary.SuggestedPrice)
	fmt.Fprintf(out, "Discount:         %s\n", summary.Discount)
	fmt.Fprintf(out, "Buyer ROI:        %s a year\n", summary.BuyerROI)
	fmt.Fprintf(out, "Risk profile:     %s\n", summary.RiskProfile)
	fmt.Fprintf(out, "Fit improvement:  %s\n", summary.FitImprovement)
	if loan.Valuation != nil {
		v := loan.Valuation
		fmt.Fprintf(out, "Default prob.:    %.0f%%, expected loss %s, misfit discount %.0f%%\n",
			v.DefaultProbability*100, pricer.FormatPrice(v.ExpectedLoss), v.MisfitDiscount*100)
	}
	if summary.Note != "" {
		fmt.Fprintf(out, "\n%s\n", summary.Note)
	}
	return nil
}
