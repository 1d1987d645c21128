package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// Run is the snapshot of one pipeline run.
type Run struct {
	ID             string
	Source         string
	Loans          []*models.Loan
	Swaps          []models.SwapCandidate
	ProcessingTime time.Duration
	CreatedAt      time.Time
}

// RunSummary is a stored run without its rows.
type RunSummary struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	LoanCount     int       `json:"loan_count"`
	MismatchCount int       `json:"mismatch_count"`
	SwapCount     int       `json:"swap_count"`
	ProcessingMS  int64     `json:"processing_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// StoredSwap is a swap candidate read back with its rank in the run.
type StoredSwap struct {
	RunID     string               `json:"run_id"`
	Rank      int                  `json:"rank"`
	Candidate models.SwapCandidate `json:"candidate"`
}

// RunRepository handles run snapshot database operations.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores the run, its loan annotations and its swap candidates in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	mismatches := 0
	for _, loan := range run.Loans {
		if loan.IsMismatch() {
			mismatches++
		}
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO runs (id, source, loan_count, mismatch_count, swap_count, processing_ms, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID,
			run.Source,
			len(run.Loans),
			mismatches,
			len(run.Swaps),
			run.ProcessingTime.Milliseconds(),
			run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, loan := range run.Loans {
			if err := insertLoan(ctx, tx, run.ID, loan); err != nil {
				return fmt.Errorf("failed to insert loan %s: %w", loan.ID, err)
			}
		}

		for i := range run.Swaps {
			if err := insertSwap(ctx, tx, run.ID, i+1, &run.Swaps[i]); err != nil {
				return fmt.Errorf("failed to insert swap %s: %w", run.Swaps[i].PairKey, err)
			}
		}
		return nil
	})
}

func insertLoan(ctx context.Context, tx pgx.Tx, runID string, loan *models.Loan) error {
	if loan.Fit == nil || loan.Company == nil {
		return models.ErrFitNotScored
	}
	fit, err := json.Marshal(loan.Fit)
	if err != nil {
		return err
	}
	var suggested, roi *float64
	if loan.Valuation != nil {
		suggested = &loan.Valuation.SuggestedPrice
		roi = &loan.Valuation.AnnualizedROI
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO loan_annotations (
			run_id, loan_id, sme_id, current_lender, best_match_lender,
			current_fit, best_fit, fit_gap, reallocation_status, is_mismatch,
			risk_score, inclusion_score, outstanding_balance, suggested_price, annualized_roi, fit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		runID,
		loan.ID,
		loan.Company.ID,
		loan.CurrentLender,
		loan.Fit.BestMatchLender,
		loan.Fit.CurrentLenderFit,
		loan.Fit.BestMatchFit,
		loan.Fit.FitGap,
		string(loan.Fit.ReallocationStatus),
		loan.Fit.IsMismatch,
		loan.Company.RiskScore(),
		loan.Company.InclusionScore(),
		loan.OutstandingBalance,
		suggested,
		roi,
		fit,
	)
	return err
}

func insertSwap(ctx context.Context, tx pgx.Tx, runID string, rank int, s *models.SwapCandidate) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO swap_candidates (
			run_id, pair_key, rank, lender_a, lender_b, loan_a_id, loan_b_id,
			swap_score, total_fit_improvement, inclusion_bonus, needs_cash_adjustment, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		runID,
		s.PairKey.String(),
		rank,
		s.LenderA,
		s.LenderB,
		s.LoanA.LoanID,
		s.LoanB.LoanID,
		s.SwapScore,
		s.TotalFitImprovement,
		s.InclusionBonus,
		s.NeedsCashAdjustment,
		payload,
	)
	return err
}

// GetRun returns the summary of a stored run.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	var s RunSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source, loan_count, mismatch_count, swap_count, processing_ms, created_at
		FROM runs WHERE id = $1`, runID,
	).Scan(&s.ID, &s.Source, &s.LoanCount, &s.MismatchCount, &s.SwapCount, &s.ProcessingMS, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return &s, nil
}

// LatestRunID returns the most recently stored run.
func (r *RunRepository) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// ListSwapsForLender returns the swaps of a run touching lender, in rank order.
func (r *RunRepository) ListSwapsForLender(ctx context.Context, runID, lender string) ([]StoredSwap, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rank, payload
		FROM swap_candidates
		WHERE run_id = $1 AND (lender_a = $2 OR lender_b = $2)
		ORDER BY rank`, runID, lender)
	if err != nil {
		return nil, fmt.Errorf("failed to query swaps: %w", err)
	}
	defer rows.Close()

	swaps := make([]StoredSwap, 0)
	for rows.Next() {
		var rank int
		var payload []byte
		if err := rows.Scan(&rank, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan swap: %w", err)
		}
		stored := StoredSwap{RunID: runID, Rank: rank}
		if err := json.Unmarshal(payload, &stored.Candidate); err != nil {
			return nil, fmt.Errorf("failed to decode swap payload: %w", err)
		}
		swaps = append(swaps, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swaps: %w", err)
	}

	return swaps, nil
}
