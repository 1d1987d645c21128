// Package pipeline runs the scoring, matching, pricing and swap stages over a dataset.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/inclusion"
	"github.com/r3troseer/SME-loan-transact/internal/services/matcher"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
	"github.com/r3troseer/SME-loan-transact/internal/services/risk"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// Options configures the pipeline stages.
type Options struct {
	Matcher matcher.Config
	Swap    swap.Config
}

// DefaultOptions returns the reference stage settings.
func DefaultOptions() Options {
	return Options{Matcher: matcher.DefaultConfig(), Swap: swap.DefaultConfig()}
}

// Service wires the stages together over one lender registry.
type Service struct {
	registry  *lenders.Registry
	risk      *risk.Scorer
	inclusion *inclusion.Scorer
	matcher   *matcher.Matcher
	pricer    *pricer.Pricer
	finder    *swap.Finder
}

// NewService creates a pipeline over registry.
func NewService(registry *lenders.Registry, opts Options) *Service {
	return &Service{
		registry:  registry,
		risk:      risk.NewScorer(),
		inclusion: inclusion.NewScorer(),
		matcher:   matcher.New(registry, opts.Matcher),
		pricer:    pricer.New(),
		finder:    swap.NewFinder(opts.Swap),
	}
}

// Registry returns the lender registry in use.
func (s *Service) Registry() *lenders.Registry {
	return s.registry
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID             string
	Registry          *lenders.Registry
	Loans             []*models.Loan
	Swaps             []models.SwapCandidate
	MarketSummary     matcher.MarketSummary
	InclusionInsights inclusion.MarketInsights
	SwapStatistics    models.SwapStatistics
	PricingStats      pricer.MarketStats
	ProcessingTime    time.Duration
}

// Report is the deterministic projection of a result.
type Report struct {
	Loans             []*models.Loan           `json:"loans"`
	Swaps             []models.SwapCandidate   `json:"swaps"`
	MarketSummary     matcher.MarketSummary    `json:"market_summary"`
	InclusionInsights inclusion.MarketInsights `json:"inclusion_insights"`
	SwapStatistics    models.SwapStatistics    `json:"swap_statistics"`
	PricingStats      pricer.MarketStats       `json:"pricing_stats"`
}

// Report drops the run ID and timing so identical input gives identical output.
func (r *Result) Report() Report {
	return Report{
		Loans:             r.Loans,
		Swaps:             r.Swaps,
		MarketSummary:     r.MarketSummary,
		InclusionInsights: r.InclusionInsights,
		SwapStatistics:    r.SwapStatistics,
		PricingStats:      r.PricingStats,
	}
}

// Loan returns the loan with the given ID.
func (r *Result) Loan(id string) (*models.Loan, bool) {
	for _, loan := range r.Loans {
		if loan.ID == id {
			return loan, true
		}
	}
	return nil, false
}

// Run executes risk, inclusion, fit, pricing and swap stages in order.
// Loans are annotated in place.
func (s *Service) Run(ctx context.Context, loans []*models.Loan) (*Result, error) {
	startTime := time.Now()
	result := &Result{RunID: uuid.New().String(), Registry: s.registry, Loans: loans}
	log := utils.GetLogger().With(zap.String("run_id", result.RunID))

	log.Info("Starting pipeline",
		zap.Int("loans", len(loans)),
		zap.Int("lenders", s.registry.Len()),
	)

	companies := models.Companies(loans)

	stages := []struct {
		name string
		run  func() error
	}{
		{"risk", func() error {
			s.risk.Analyze(companies)
			return nil
		}},
		{"inclusion", func() error {
			if err := s.inclusion.Analyze(companies); err != nil {
				return err
			}
			result.InclusionInsights = inclusion.Insights(companies)
			return nil
		}},
		{"fit", func() error {
			if err := s.matcher.Annotate(loans); err != nil {
				return err
			}
			result.MarketSummary = s.matcher.MarketSummary(loans)
			return nil
		}},
		{"pricing", func() error {
			if err := s.pricer.Analyze(loans); err != nil {
				return err
			}
			result.PricingStats = pricer.ComputeMarketStats(loans)
			return nil
		}},
		{"swaps", func() error {
			swaps, err := s.finder.Find(loans)
			if err != nil {
				return err
			}
			result.Swaps = swaps
			result.SwapStatistics = swap.Statistics(swaps)
			return nil
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline cancelled before %s stage: %w", stage.name, err)
		}
		stageStart := time.Now()
		if err := stage.run(); err != nil {
			log.Error("Pipeline stage failed", zap.String("stage", stage.name), zap.Error(err))
			return nil, fmt.Errorf("failed %s stage: %w", stage.name, err)
		}
		log.Info("Stage complete",
			zap.String("stage", stage.name),
			zap.Duration("duration", time.Since(stageStart)),
		)
	}

	result.ProcessingTime = time.Since(startTime)

	log.Info("Pipeline complete",
		zap.Int("mismatches", result.MarketSummary.MismatchedCompanies),
		zap.Int("swaps", len(result.Swaps)),
		zap.Duration("processing_time", result.ProcessingTime),
	)

	return result, nil
}
