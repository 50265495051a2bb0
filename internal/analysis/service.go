// Package analysis is the entry point for callers: it guards against duplicate
// submissions, runs the pipeline and hands back the report.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/dedup"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/gcs"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/pipeline"
)

var (
	// ErrAlreadyProcessing is returned when the same user submits the same file while
	// an earlier submission is still running. Callers should retry later.
	ErrAlreadyProcessing = errors.New("document is already being processed")
	// ErrNoFetcher is returned by AnalyzeURI when no storage client is configured.
	ErrNoFetcher = errors.New("no document fetcher configured")
)

// Options are the per-request knobs.
type Options struct {
	BankHint domain.BankID
	Validate bool
}

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	orchestrator *pipeline.Orchestrator
	validator    pipeline.Validator
	guard        dedup.Guard
	fetcher      gcs.Fetcher
}

// Option configures a Service.
type Option func(*Service)

// WithValidator enables cross-validation for requests that ask for it.
func WithValidator(v pipeline.Validator) Option {
	return func(s *Service) { s.validator = v }
}

// WithGuard replaces the default in-memory guard.
func WithGuard(g dedup.Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithFetcher enables AnalyzeURI.
func WithFetcher(f gcs.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// NewService creates a Service around orchestrator.
func NewService(orchestrator *pipeline.Orchestrator, opts ...Option) *Service {
	s := &Service{orchestrator: orchestrator}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = dedup.NewMemoryGuard(dedup.DefaultTTL)
	}
	return s
}

// Analyze runs the full pipeline on doc. Recoverable problems are reported inside the
// returned report; an error means the request itself could not run.
func (s *Service) Analyze(ctx context.Context, userID string, doc domain.Document, opts Options) (domain.AnalysisReport, error) {
	log := logger.FromContext(ctx).With().
		Str("user_id", userID).
		Str("file", doc.FileName).
		Logger()
	ctx = logger.WithContext(ctx, log)

	release, ok := s.guard.Acquire(userID, doc.FileName)
	if !ok {
		log.Warn().Msg("Document already being processed")
		return domain.AnalysisReport{}, fmt.Errorf("Analyze: %s: %w", doc.FileName, ErrAlreadyProcessing)
	}
	defer release()

	var validator pipeline.Validator
	if opts.Validate {
		if s.validator == nil {
			log.Warn().Msg("Validation requested but no validator configured")
		} else {
			validator = s.validator
		}
	}

	state := &pipeline.PipelineState{Document: doc, BankHint: opts.BankHint}
	if err := pipeline.NewAnalysisPipeline(s.orchestrator, validator).Execute(ctx, state); err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("Analyze: %w", err)
	}

	log.Info().
		Bool("success", state.Extraction.Success).
		Str("method", string(state.Extraction.Method)).
		Int("transactions", len(state.Extraction.Transactions)).
		Msg("Analysis finished")
	return state.Report(), nil
}

// AnalyzeURI fetches a gs:// document and analyzes it.
func (s *Service) AnalyzeURI(ctx context.Context, userID, uri string, opts Options) (domain.AnalysisReport, error) {
	if s.fetcher == nil {
		return domain.AnalysisReport{}, fmt.Errorf("AnalyzeURI: %w", ErrNoFetcher)
	}
	doc, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("AnalyzeURI: %w", err)
	}
	return s.Analyze(ctx, userID, doc, opts)
}

// HandleJob is a jobs.JobHandler running AnalyzeURI for a queued job.
func (s *Service) HandleJob(ctx context.Context, job *jobs.AnalyzeDocumentJob) (*domain.AnalysisReport, error) {
	report, err := s.AnalyzeURI(ctx, job.UserID, job.GCSURI, Options{
		BankHint: job.BankHint,
		Validate: job.Validate,
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
