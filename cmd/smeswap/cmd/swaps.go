package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
)

var swapsCmd = &cobra.Command{
	Use:   "swaps",
	Short: "List swap candidates, optionally from one lender's side",
	Long: `List the complementary loan swaps found in a dataset, best first.

With --lender only swaps involving that lender are shown, each from its
perspective (what it gives, what it receives).

Example:
  smeswap swaps --data data/sample_dataset.csv --lender "Growth Capital Partners"`,
	Args: cobra.NoArgs,
	RunE: runSwaps,
}

var (
	swapsLender string
	swapsJSON   bool
)

func init() {
	rootCmd.AddCommand(swapsCmd)
	addDataFlag(swapsCmd)

	swapsCmd.Flags().StringVarP(&swapsLender, "lender", "l", "", "show swaps from this lender's perspective")
	swapsCmd.Flags().BoolVar(&swapsJSON, "json", false, "write swaps as JSON")
}

func runSwaps(cmd *cobra.Command, args []string) error {
	result, _, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if swapsLender == "" {
		if swapsJSON {
			return writeJSON(cmd, result.Swaps)
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tLENDER A\tGIVES\tLENDER B\tGIVES\tFIT +\tINCLUSION\tCASH")
		for _, s := range result.Swaps {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%t\t%t\n",
				s.SwapScore, s.LenderA, s.LoanA.LoanID, s.LenderB, s.LoanB.LoanID,
				s.TotalFitImprovement, s.IsInclusionSwap, s.NeedsCashAdjustment)
		}
		w.Flush()
		fmt.Fprintf(out, "\n%d swaps\n", len(result.Swaps))
		return nil
	}

	if _, ok := result.Registry.Lookup(swapsLender); !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownLender, swapsLender)
	}

	mine := swap.ForLender(result.Swaps, swapsLender)
	views := make([]models.SwapView, 0, len(mine))
	for _, s := range mine {
		views = append(views, swap.Perspective(s, swapsLender))
	}
	if swapsJSON {
		return writeJSON(cmd, views)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNTERPARTY\tYOU GIVE\tYOU RECEIVE\tFIT +\tINCLUSION\tCASH")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s %s (%s)\t%s %s (%s)\t%d\t%t\t%t\n",
			v.Counterparty,
			v.YouGive.LoanID, v.YouGive.Sector, pricer.FormatPrice(v.YouGive.Outstanding),
			v.YouReceive.LoanID, v.YouReceive.Sector, pricer.FormatPrice(v.YouReceive.Outstanding),
			v.TotalFitImprovement, v.IsInclusionSwap, v.NeedsCashAdjustment)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d swaps for %s\n", len(views), swapsLender)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
