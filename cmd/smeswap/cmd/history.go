package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/r3troseer/SME-loan-transact/internal/services/database"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a stored run and its swaps",
	Long: `Read a run stored with "smeswap run --persist" or by the dataset processor
Lambda. Without --run the most recent run is shown. With --lender only the
swaps touching that lender are listed, from its side.

Example:
  smeswap history --lender "Alpha Bank"`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyRunID  string
	historyLender string
	historyJSON   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyRunID, "run", "", "run ID (default: latest)")
	historyCmd.Flags().StringVarP(&historyLender, "lender", "l", "", "only swaps touching this lender")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "write JSON instead of a table")
}

type historyOutput struct {
	Run   *database.RunSummary  `json:"run"`
	Swaps []database.StoredSwap `json:"swaps,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := connectDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repo := database.NewRunRepository(db)

	runID := historyRunID
	if runID == "" {
		if runID, err = repo.LatestRunID(ctx); err != nil {
			return err
		}
	}

	out := historyOutput{}
	if out.Run, err = repo.GetRun(ctx, runID); err != nil {
		return err
	}
	if historyLender != "" {
		if out.Swaps, err = repo.ListSwapsForLender(ctx, runID, historyLender); err != nil {
			return err
		}
	}

	if historyJSON {
		return writeJSON(cmd, out)
	}

	w := cmd.OutOrStdout()
	r := out.Run
	fmt.Fprintf(w, "Run %s from %s at %s\n", r.ID, r.Source, r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%d loans, %d mismatched, %d swaps (%dms)\n", r.LoanCount, r.MismatchCount, r.SwapCount, r.ProcessingMS)

	if historyLender == "" {
		return nil
	}
	fmt.Fprintln(w)
	if len(out.Swaps) == 0 {
		fmt.Fprintf(w, "No stored swaps for %s\n", historyLender)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOUNTERPARTY\tGIVE\tRECEIVE\tFIT GAIN\tCASH")
	for _, stored := range out.Swaps {
		view := swap.Perspective(stored.Candidate, historyLender)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t+%d\t%v\n",
			stored.Rank, view.Counterparty, view.YouGive.LoanID, view.YouReceive.LoanID,
			view.TotalFitImprovement, view.NeedsCashAdjustment)
	}
	return tw.Flush()
}
