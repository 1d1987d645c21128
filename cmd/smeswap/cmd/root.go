package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appConfig "github.com/r3troseer/SME-loan-transact/internal/config"
	"github.com/r3troseer/SME-loan-transact/internal/handlers"
	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/database"
	"github.com/r3troseer/SME-loan-transact/internal/services/pipeline"
	s3service "github.com/r3troseer/SME-loan-transact/internal/services/s3"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "smeswap",
	Short: "Score SME loans, find better-fit lenders and propose loan swaps",
	Long: `smeswap runs the SME loan exchange pipeline over a CSV dataset.

It scores every company for risk and financial inclusion, measures how well
each loan fits its current lender and every other lender, prices mismatched
loans for transfer and pairs complementary mismatches into swaps.

Examples:
  smeswap run --data data/sample_dataset.csv
  smeswap swaps --data data/sample_dataset.csv --lender "Alpha Bank"
  smeswap price --data data/sample_dataset.csv --loan LN_0001
  smeswap lenders --registry data/lenders.yaml
  smeswap history --lender "Regional Development Fund"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return utils.InitLogger(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Sync()
	},
}

var (
	dataPath     string
	registryPath string
	logLevel     string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "lender registry YAML, local path or s3:<key> (default: LENDER_REGISTRY_PATH or built-in lenders)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

// addDataFlag registers the required --data flag on a dataset command.
func addDataFlag(c *cobra.Command) {
	c.Flags().StringVarP(&dataPath, "data", "d", "", "path to the loan dataset CSV (required)")
	c.MarkFlagRequired("data")
}

// loadConfig reads environment configuration, letting --registry win.
func loadConfig() (*appConfig.Config, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if registryPath != "" {
		cfg.LenderRegistryPath = registryPath
	}
	return cfg, nil
}

// loadRegistry resolves the configured registry, fetching from S3 when asked.
func loadRegistry(ctx context.Context, cfg *appConfig.Config) (*lenders.Registry, error) {
	var store handlers.ObjectStore
	if strings.HasPrefix(cfg.LenderRegistryPath, handlers.S3RegistryPrefix) {
		s3, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("create S3 service: %w", err)
		}
		store = s3
	}
	return handlers.LoadRegistry(ctx, cfg.LenderRegistryPath, store)
}

// connectDB opens PostgreSQL from DATABASE_URL, or from the DB_* settings.
func connectDB(ctx context.Context, cfg *appConfig.Config) (*database.DB, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return database.NewFromURL(ctx, url)
	}
	return database.New(ctx, cfg)
}

// loadDataset parses the --data CSV. Row errors are reported on stderr.
func loadDataset(cmd *cobra.Command) ([]*models.Loan, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	loans, parseErrors := utils.NewCSVParser().Parse(f)
	for _, e := range parseErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
	}
	if len(loans) == 0 {
		return nil, fmt.Errorf("no valid loans in %s", dataPath)
	}
	return loans, nil
}

// runPipeline loads config, registry and dataset and runs every stage.
func runPipeline(cmd *cobra.Command) (*pipeline.Result, *appConfig.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	registry, err := loadRegistry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	loans, err := loadDataset(cmd)
	if err != nil {
		return nil, nil, err
	}

	result, err := pipeline.NewService(registry, handlers.PipelineOptions(cfg)).Run(ctx, loans)
	if err != nil {
		return nil, nil, fmt.Errorf("run pipeline: %w", err)
	}
	return result, cfg, nil
}
