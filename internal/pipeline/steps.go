package pipeline

import (
	"context"
	"fmt"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/bank"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/categorizer"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/document"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/metrics"
)

// hintConfidence is used when the caller's bank hint is all we know about the issuer.
const hintConfidence = 0.3

// PipelineStep represents a single step in the analysis pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Document domain.Document
	BankHint domain.BankID

	Text       string
	Bank       domain.DetectedBank
	Extraction domain.ExtractionResult
	Summary    *domain.FinancialSummary
	Validation *domain.ValidationResult
}

// Report bundles the state into the value handed back to callers.
func (s *PipelineState) Report() domain.AnalysisReport {
	return domain.AnalysisReport{
		Extraction: s.Extraction,
		Summary:    s.Summary,
		Validation: s.Validation,
	}
}

// Step 1: LoadTextStep turns the document bytes into plain text. Unreadable documents
// leave the text empty; the extraction step reports the failure.
type LoadTextStep struct{}

func (s *LoadTextStep) Execute(ctx context.Context, state *PipelineState) error {
	text, err := document.Text(state.Document)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Str("file", state.Document.FileName).
			Msg("Could not read document text")
		text = ""
	}
	state.Text = text
	return nil
}

// Step 2: DetectBankStep identifies the issuer, using the caller's hint only when the
// document itself gives no signal.
type DetectBankStep struct{}

func (s *DetectBankStep) Execute(ctx context.Context, state *PipelineState) error {
	detected := bank.Detect(state.Text, state.Document.FileName)
	if !detected.Known() && state.BankHint != "" {
		if hinted, ok := bank.FromName(string(state.BankHint)); ok {
			hinted.Confidence = hintConfidence
			detected = hinted
		}
	}
	state.Bank = detected

	log := logger.FromContext(ctx)
	log.Debug().
		Str("bank", string(detected.ID)).
		Float64("confidence", detected.Confidence).
		Msg("Bank detected")
	return nil
}

// Step 3: ExtractStep runs the hybrid orchestrator.
type ExtractStep struct {
	Orchestrator *Orchestrator
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Extraction = s.Orchestrator.Extract(ctx, state.Text, state.Document.FileName, state.Bank)
	return nil
}

// Step 4: CategorizeStep assigns a category to every transaction. The extraction is
// replaced by a copy; the orchestrator's value is not edited.
type CategorizeStep struct{}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Extraction = state.Extraction.WithTransactions(categorizer.CategorizeAll(state.Extraction.Transactions))
	return nil
}

// Step 5: ScoreStep computes the financial summary of a successful extraction.
type ScoreStep struct{}

func (s *ScoreStep) Execute(ctx context.Context, state *PipelineState) error {
	if !state.Extraction.Success {
		return nil
	}
	summary := metrics.Compute(state.Extraction.Transactions)
	state.Summary = &summary
	return nil
}

// Step 6: CrossValidateStep audits a successful extraction against the source text.
type CrossValidateStep struct {
	Validator Validator
}

func (s *CrossValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Validator == nil || !state.Extraction.Success {
		return nil
	}
	v := s.Validator.Validate(ctx, state.Text, state.Extraction)
	state.Validation = &v
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially. It stops early when ctx is done.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewAnalysisPipeline creates the standard analysis pipeline. validator may be nil to
// skip cross-validation.
func NewAnalysisPipeline(orchestrator *Orchestrator, validator Validator) *Pipeline {
	steps := []PipelineStep{
		&LoadTextStep{},
		&DetectBankStep{},
		&ExtractStep{Orchestrator: orchestrator},
		&CategorizeStep{},
		&ScoreStep{},
	}
	if validator != nil {
		steps = append(steps, &CrossValidateStep{Validator: validator})
	}
	return NewPipeline(steps...)
}
