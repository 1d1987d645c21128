package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/r3troseer/SME-loan-transact/internal/services/database"
	"github.com/r3troseer/SME-loan-transact/internal/services/matcher"
	"github.com/r3troseer/SME-loan-transact/internal/services/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline over a dataset",
	Long: `Run risk, inclusion, fit, pricing and swap stages over a CSV dataset and
print the market summary.

With --json the full deterministic report is written to stdout. With --persist
the run snapshot is stored in PostgreSQL using DATABASE_URL or the DB_* settings.

Example:
  smeswap run --data data/sample_dataset.csv --json > report.json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runJSON    bool
	runPersist bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	addDataFlag(runCmd)

	runCmd.Flags().BoolVar(&runJSON, "json", false, "write the full report as JSON")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "store the run in PostgreSQL")
}

func runRun(cmd *cobra.Command, args []string) error {
	result, cfg, err := runPipeline(cmd)
	if err != nil {
		return err
	}

	if runPersist {
		db, err := connectDB(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		err = database.NewRunRepository(db).SaveRun(cmd.Context(), &database.Run{
			ID:             result.RunID,
			Source:         dataPath,
			Loans:          result.Loans,
			Swaps:          result.Swaps,
			ProcessingTime: result.ProcessingTime,
		})
		if err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stored run %s\n", result.RunID)
	}

	out := cmd.OutOrStdout()
	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report())
	}

	printSummary(out, result)
	return nil
}

func printSummary(out io.Writer, result *pipeline.Result) {
	s := result.MarketSummary
	fmt.Fprintf(out, "Run %s (%s)\n\n", result.RunID, result.ProcessingTime.Round(time.Microsecond))
	fmt.Fprintf(out, "Companies:        %d\n", s.TotalCompanies)
	fmt.Fprintf(out, "Mismatched:       %d (%.1f%%)\n", s.MismatchedCompanies, s.MismatchPercentage)
	fmt.Fprintf(out, "Strong/moderate:  %d / %d\n", s.StrongCandidates, s.ModerateCandidates)
	fmt.Fprintf(out, "Avg fit:          %.1f -> %.1f (+%.1f)\n", s.AverageCurrentFit, s.AverageOptimalFit, s.AverageImprovement)
	fmt.Fprintf(out, "Swaps:            %d (%d inclusion, %d need cash)\n",
		result.SwapStatistics.TotalSwaps, result.SwapStatistics.InclusionSwaps, result.SwapStatistics.SwapsNeedingCash)
	fmt.Fprintf(out, "Avg discount:     %.1f%%, avg buyer ROI %.1f%%\n\n",
		result.PricingStats.AverageDiscount, result.PricingStats.AverageBuyerROI)
	fmt.Fprintln(out, result.InclusionInsights.KeyInsight)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LENDER\tCURRENT\tOPTIMAL\tNET FLOW")
	for _, flow := range s.LenderFlows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n", flow.Lender, flow.CurrentPortfolio, flow.OptimalPortfolio, flow.NetFlow)
	}
	w.Flush()

	candidates := matcher.ReallocationCandidates(result.Loans, matcher.CandidatesOnly)
	if len(candidates) == 0 {
		return
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOAN\tCURRENT\tBEST\tGAP\tSTATUS")
	for _, loan := range candidates {
		fmt.Fprintf(w, "%s\t%s (%d)\t%s (%d)\t%d\t%s\n",
			loan.ID,
			loan.CurrentLender, loan.Fit.CurrentLenderFit,
			loan.Fit.BestMatchLender, loan.Fit.BestMatchFit,
			loan.Fit.FitGap,
			loan.Fit.ReallocationStatus)
	}
	w.Flush()
}
