package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
)

var lendersCmd = &cobra.Command{
	Use:   "lenders",
	Short: "Show the lender registry",
	Long: `Print the lender archetypes in registry order. Order matters: it breaks
best-match ties.

With --yaml the registry is written in the file format accepted by --registry,
which is a convenient starting point for a custom registry.

Example:
  smeswap lenders --yaml > data/lenders.yaml`,
	Args: cobra.NoArgs,
	RunE: runLenders,
}

var lendersYAML bool

func init() {
	rootCmd.AddCommand(lendersCmd)

	lendersCmd.Flags().BoolVar(&lendersYAML, "yaml", false, "write the registry as YAML")
}

func runLenders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lendersYAML {
		data, err := lenders.Marshal(registry)
		if err != nil {
			return fmt.Errorf("encode registry: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRISK MIN\tSECTORS\tREGIONS\tTURNOVER\tMANDATE")
	for _, l := range registry.All() {
		riskMin := "any"
		if l.RiskScoreMin != nil {
			riskMin = fmt.Sprintf("%d", *l.RiskScoreMin)
		}
		turnover := pricer.FormatPrice(l.MinTurnover) + "+"
		if l.MaxTurnover != nil {
			turnover = pricer.FormatPrice(l.MinTurnover) + " - " + pricer.FormatPrice(*l.MaxTurnover)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
			l.Name, riskMin, l.PreferredSectors, l.PreferredRegions, turnover, l.InclusionMandate)
	}
	return w.Flush()
}
