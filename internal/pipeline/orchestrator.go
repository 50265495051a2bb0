// Package pipeline runs a document through text loading, bank detection, hybrid
// extraction, categorization, scoring and optional cross-validation.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/bank"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/document"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/parser"
)

// Orchestrator tries the reasoning backend first and falls back to the deterministic
// parsers when the backend is missing, fails, or returns a result below the quality gate.
type Orchestrator struct {
	extractor Extractor
	registry  *parser.Registry
	threshold float64
	recorder  RunRecorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExtractor sets the reasoning backend stage. Without one every document goes
// straight to the parsers.
func WithExtractor(e Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithRegistry replaces parser.DefaultRegistry().
func WithRegistry(r *parser.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithGateThreshold overrides DefaultGateThreshold.
func WithGateThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithRecorder reports every run to r.
func WithRecorder(r RunRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:  parser.DefaultRegistry(),
		threshold: DefaultGateThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract produces the ExtractionResult for one document's text. It never returns an
// error: when neither strategy finds transactions the result has Success=false and a
// descriptive Error.
func (o *Orchestrator) Extract(ctx context.Context, text, fileName string, detected domain.DetectedBank) domain.ExtractionResult {
	log := logger.FromContext(ctx).With().Str("file", fileName).Logger()
	ctx = logger.WithContext(ctx, log)

	runID := o.startRun(ctx, fileName, detected.ID)
	result := o.extract(ctx, log, text, fileName, detected)
	o.finishRun(ctx, runID, result)
	return result
}

func (o *Orchestrator) extract(ctx context.Context, log zerolog.Logger, text, fileName string, detected domain.DetectedBank) domain.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		log.Warn().Msg("Document has no extractable text")
		return failure(detected, "no text could be extracted from the document")
	}

	if o.extractor == nil {
		log.Info().Msg("No reasoning backend configured; using parser")
	} else if result, ok := o.tryBackend(ctx, log, text, fileName, detected); ok {
		return result
	}

	return o.fallback(log, text, detected)
}

// tryBackend runs the backend once and applies the quality gate.
func (o *Orchestrator) tryBackend(ctx context.Context, log zerolog.Logger, text, fileName string, detected domain.DetectedBank) (domain.ExtractionResult, bool) {
	ext, err := o.extractor.Extract(ctx, text, fileName, detected)
	if err != nil {
		log.Warn().Err(err).Msg("Backend extraction failed; falling back to parser")
		return domain.ExtractionResult{}, false
	}

	b := gateBank(ext.Bank, detected)
	if reason := o.gate(ext.Transactions, b, ext.Confidence); reason != "" {
		log.Info().
			Str("reason", reason).
			Float64("confidence", ext.Confidence).
			Int("transactions", len(ext.Transactions)).
			Msg("Backend extraction rejected by quality gate; falling back to parser")
		return domain.ExtractionResult{}, false
	}

	log.Info().
		Str("bank", string(b.ID)).
		Float64("confidence", ext.Confidence).
		Int("transactions", len(ext.Transactions)).
		Msg("Backend extraction accepted")

	holder := ext.AccountHolder
	if holder == "" {
		holder = brfmt.NotAvailable
	}
	return domain.ExtractionResult{
		Success:       true,
		Bank:          b,
		AccountHolder: holder,
		Period:        ext.Period,
		Transactions:  ext.Transactions,
		Summary:       ext.Summary,
		Method:        domain.MethodLLM,
		Confidence:    ext.Confidence,
	}, true
}

// gate returns why an extraction is rejected, or "" when it passes.
func (o *Orchestrator) gate(txs []domain.Transaction, b domain.DetectedBank, confidence float64) string {
	switch {
	case len(txs) == 0:
		return "no transactions"
	case !b.Known():
		return "unknown bank"
	case confidence <= o.threshold:
		return "low confidence"
	}
	return ""
}

// gateBank prefers the bank the backend reported and falls back to the detector.
func gateBank(reported string, detected domain.DetectedBank) domain.DetectedBank {
	if b, ok := bank.FromName(reported); ok {
		return b
	}
	return detected
}

func (o *Orchestrator) fallback(log zerolog.Logger, text string, detected domain.DetectedBank) domain.ExtractionResult {
	lines := document.Lines(text)
	txs, p := o.registry.Parse(detected.ID, lines)

	log.Info().
		Str("parser", string(p.Bank())).
		Int("transactions", len(txs)).
		Msg("Parser fallback finished")

	if len(txs) == 0 {
		return failure(detected, "no transactions found by the reasoning backend or the parser")
	}
	return domain.ExtractionResult{
		Success:         true,
		Bank:            detected,
		AccountHolder:   parser.ExtractAccountHolder(lines),
		Period:          parser.ExtractPeriod(lines),
		Transactions:    txs,
		Method:          domain.MethodParser,
		Confidence:      ParserConfidence,
		AccuracyWarning: AccuracyWarning,
	}
}

func failure(detected domain.DetectedBank, msg string) domain.ExtractionResult {
	return domain.ExtractionResult{
		Success:       false,
		Error:         msg,
		Bank:          detected,
		AccountHolder: brfmt.NotAvailable,
		Transactions:  []domain.Transaction{},
		Method:        domain.MethodParser,
	}
}

func (o *Orchestrator) startRun(ctx context.Context, fileName string, id domain.BankID) string {
	if o.recorder == nil {
		return ""
	}
	runID, err := o.recorder.StartRun(ctx, fileName, id)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Could not record run start")
		return ""
	}
	return runID
}

func (o *Orchestrator) finishRun(ctx context.Context, runID string, result domain.ExtractionResult) {
	if o.recorder == nil || runID == "" {
		return
	}
	if !result.Success {
		o.recorder.MarkRunFailed(ctx, runID, errors.New(result.Error))
		return
	}
	if err := o.recorder.MarkRunSucceeded(ctx, runID, result.Method, result.Confidence, len(result.Transactions)); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("run_id", runID).Msg("Could not record run success")
	}
}
