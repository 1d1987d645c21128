// Package handlers provides the Lambda handlers for the SME loan exchange.
package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	appConfig "github.com/r3troseer/SME-loan-transact/internal/config"
	"github.com/r3troseer/SME-loan-transact/internal/lenders"
	"github.com/r3troseer/SME-loan-transact/internal/services/database"
	"github.com/r3troseer/SME-loan-transact/internal/services/matcher"
	"github.com/r3troseer/SME-loan-transact/internal/services/pipeline"
	s3service "github.com/r3troseer/SME-loan-transact/internal/services/s3"
	sesservice "github.com/r3troseer/SME-loan-transact/internal/services/ses"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// S3RegistryPrefix marks a registry path that lives in the dataset bucket.
const S3RegistryPrefix = "s3:"

// maxReportedErrors caps the parse errors echoed back in a result.
const maxReportedErrors = 10

// ObjectStore reads datasets and writes reports.
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadJSON(ctx context.Context, key string, v any) error
	Archive(ctx context.Context, key string) (string, error)
}

// RunSaver persists run snapshots.
type RunSaver interface {
	SaveRun(ctx context.Context, run *database.Run) error
}

// DigestSender emails lenders their swaps.
type DigestSender interface {
	SendSwapDigest(ctx context.Context, params sesservice.SwapDigestParams) (*sesservice.SendEmailResult, error)
}

// DatasetProcessorHandler handles S3 events for uploaded loan datasets.
type DatasetProcessorHandler struct {
	store      ObjectStore
	pipeline   *pipeline.Service
	runs       RunSaver
	mailer     DigestSender
	digestSize int
}

// DatasetProcessorDeps are the collaborators of a dataset processor. Runs and
// Mailer are optional.
type DatasetProcessorDeps struct {
	Store      ObjectStore
	Pipeline   *pipeline.Service
	Runs       RunSaver
	Mailer     DigestSender
	DigestSize int
}

// NewDatasetProcessor creates a handler over explicit collaborators.
func NewDatasetProcessor(deps DatasetProcessorDeps) *DatasetProcessorHandler {
	return &DatasetProcessorHandler{
		store:      deps.Store,
		pipeline:   deps.Pipeline,
		runs:       deps.Runs,
		mailer:     deps.Mailer,
		digestSize: deps.DigestSize,
	}
}

// NewDatasetProcessorHandler builds the handler from environment configuration.
// It returns a cleanup func that closes the database pool.
func NewDatasetProcessorHandler(ctx context.Context) (*DatasetProcessorHandler, func(), error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load app config: %w", err)
	}

	store, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	registry, err := LoadRegistry(ctx, cfg.LenderRegistryPath, store)
	if err != nil {
		return nil, nil, err
	}

	deps := DatasetProcessorDeps{
		Store:      store,
		Pipeline:   pipeline.NewService(registry, PipelineOptions(cfg)),
		DigestSize: cfg.SwapDigestSize,
	}

	cleanup := func() {}
	if cfg.DatabaseConfigured() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.Runs = database.NewRunRepository(db)
		cleanup = db.Close
	}

	if cfg.SESSenderEmail != "" {
		mailer, err := sesservice.NewService(ctx, cfg.AWSRegion, cfg.SESSenderEmail)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create SES service: %w", err)
		}
		deps.Mailer = mailer
	}

	return NewDatasetProcessor(deps), cleanup, nil
}

// PipelineOptions maps configuration onto pipeline stage settings.
func PipelineOptions(cfg *appConfig.Config) pipeline.Options {
	return pipeline.Options{
		Matcher: matcher.Config{
			StrongThreshold:   cfg.StrongThreshold,
			ModerateThreshold: cfg.ModerateThreshold,
		},
		Swap: swap.Config{
			MinFitImprovement: cfg.MinFitImprovement,
			ValueTolerance:    cfg.ValueTolerance,
		},
	}
}

// LoadRegistry resolves a registry path. An empty path gives the built-in lenders,
// "s3:<key>" reads YAML from the store and anything else is a local file.
func LoadRegistry(ctx context.Context, path string, store ObjectStore) (*lenders.Registry, error) {
	switch {
	case path == "":
		return lenders.Default(), nil
	case strings.HasPrefix(path, S3RegistryPrefix):
		if store == nil {
			return nil, fmt.Errorf("failed to load lender registry %s: no object store", path)
		}
		data, err := store.DownloadFile(ctx, strings.TrimPrefix(path, S3RegistryPrefix))
		if err != nil {
			return nil, fmt.Errorf("failed to download lender registry: %w", err)
		}
		registry, err := lenders.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lender registry: %w", err)
		}
		return registry, nil
	default:
		registry, err := lenders.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load lender registry: %w", err)
		}
		return registry, nil
	}
}

// FileResult is the outcome of processing one uploaded dataset.
type FileResult struct {
	Key            string   `json:"key"`
	RowCount       int      `json:"row_count"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	RunID          string   `json:"run_id,omitempty"`
	ReportKey      string   `json:"report_key,omitempty"`
	ArchivedKey    string   `json:"archived_key,omitempty"`
	Loans          int      `json:"loans"`
	Mismatches     int      `json:"mismatches"`
	Swaps          int      `json:"swaps"`
	DigestsSent    int      `json:"digests_sent"`
	Persisted      bool     `json:"persisted"`
	ParseErrors    int      `json:"parse_errors"`
	Errors         []string `json:"errors,omitempty"`
	Skipped        bool     `json:"skipped,omitempty"`
	SkipReason     string   `json:"skip_reason,omitempty"`
	ProcessingMS   int64    `json:"processing_ms"`
}

// DatasetProcessResult is the result of one S3 event.
type DatasetProcessResult struct {
	Message string       `json:"message"`
	Files   []FileResult `json:"files"`
}

// Handle processes S3 events for uploaded dataset files.
func (h *DatasetProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (DatasetProcessResult, error) {
	if len(s3Event.Records) == 0 {
		return DatasetProcessResult{Message: "No records to process"}, nil
	}

	result := DatasetProcessResult{Files: make([]FileResult, 0, len(s3Event.Records))}
	for _, record := range s3Event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return result, fmt.Errorf("failed to decode S3 key: %w", err)
		}

		file, err := h.ProcessKey(ctx, key)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, file)
	}

	result.Message = fmt.Sprintf("Processed %d file(s)", len(result.Files))
	return result, nil
}

// ProcessKey runs the pipeline over one uploaded CSV. Persistence, digest and
// archive failures are logged and do not fail the run.
func (h *DatasetProcessorHandler) ProcessKey(ctx context.Context, key string) (FileResult, error) {
	logger := utils.GetLogger()
	file := FileResult{Key: key}

	if !strings.HasPrefix(key, s3service.UploadsPrefix) || !strings.HasSuffix(strings.ToLower(key), ".csv") {
		file.Skipped = true
		file.SkipReason = "not an uploaded CSV dataset"
		logger.Info("Skipping object", utils.String("key", key))
		return file, nil
	}

	logger.Info("Processing dataset", utils.String("key", key))

	content, err := h.store.DownloadFile(ctx, key)
	if err != nil {
		return file, fmt.Errorf("failed to download dataset: %w", err)
	}

	structure, err := utils.ValidateCSVStructure(string(content))
	if err != nil {
		return file, fmt.Errorf("failed to inspect dataset: %w", err)
	}
	file.RowCount = structure.RowCount
	if len(structure.MissingColumns) > 0 {
		file.Skipped = true
		file.SkipReason = "missing required columns"
		file.MissingColumns = structure.MissingColumns
		logger.Warn("Dataset is missing required columns",
			utils.String("key", key),
			utils.Strings("missing", structure.MissingColumns))
		return file, nil
	}
	if structure.RowCount == 0 {
		file.Skipped = true
		file.SkipReason = "no data rows in CSV"
		file.Errors = structure.Errors
		logger.Warn("Dataset has no data rows", utils.String("key", key))
		return file, nil
	}

	parser := utils.NewCSVParser()
	loans, parseErrors := parser.ParseLoans(string(content))
	file.ParseErrors = len(parseErrors)
	file.Errors = errorStrings(parseErrors, maxReportedErrors)

	if len(loans) == 0 {
		file.Skipped = true
		file.SkipReason = "no valid loans found in CSV"
		logger.Warn("No valid loans in dataset",
			utils.String("key", key),
			utils.Int("parseErrors", len(parseErrors)))
		return file, nil
	}

	run, err := h.pipeline.Run(ctx, loans)
	if err != nil {
		return file, fmt.Errorf("failed to run pipeline: %w", err)
	}

	file.RunID = run.RunID
	file.Loans = len(run.Loans)
	file.Mismatches = run.MarketSummary.MismatchedCompanies
	file.Swaps = len(run.Swaps)
	file.ProcessingMS = run.ProcessingTime.Milliseconds()

	reportKey := s3service.ReportKey(run.RunID)
	if err := h.store.UploadJSON(ctx, reportKey, run.Report()); err != nil {
		return file, fmt.Errorf("failed to upload report: %w", err)
	}
	file.ReportKey = reportKey

	if h.runs != nil {
		snapshot := &database.Run{
			ID:             run.RunID,
			Source:         key,
			Loans:          run.Loans,
			Swaps:          run.Swaps,
			ProcessingTime: run.ProcessingTime,
		}
		if err := h.runs.SaveRun(ctx, snapshot); err != nil {
			logger.Warn("Failed to persist run", utils.String("runID", run.RunID), utils.Error(err))
		} else {
			file.Persisted = true
		}
	}

	if h.mailer != nil {
		file.DigestsSent = h.sendDigests(ctx, run)
	}

	archived, err := h.store.Archive(ctx, key)
	if err != nil {
		logger.Warn("Failed to archive dataset", utils.String("key", key), utils.Error(err))
	} else {
		file.ArchivedKey = archived
	}

	logger.Info("Dataset processed",
		utils.String("key", key),
		utils.String("runID", run.RunID),
		utils.Int("loans", file.Loans),
		utils.Int("swaps", file.Swaps),
		utils.Int("digestsSent", file.DigestsSent),
		utils.Bool("persisted", file.Persisted),
		utils.Duration("processingTime", run.ProcessingTime))

	return file, nil
}

// sendDigests emails every lender with a contact address its top swaps.
func (h *DatasetProcessorHandler) sendDigests(ctx context.Context, run *pipeline.Result) int {
	sent := 0
	for _, lender := range h.pipeline.Registry().All() {
		params, ok := sesservice.BuildSwapDigestParams(lender, run.RunID, run.Swaps, h.digestSize)
		if !ok {
			continue
		}
		if _, err := h.mailer.SendSwapDigest(ctx, params); err != nil {
			utils.GetLogger().Warn("Failed to send swap digest",
				utils.String("lender", lender.Name),
				utils.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func errorStrings(errs []error, limit int) []string {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) > limit {
		errs = errs[:limit]
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
