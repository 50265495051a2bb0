package pipeline

import (
	"context"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor"
)

// Extractor is the reasoning-backed extraction stage. *extractor.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, text, fileName string, bankHint domain.DetectedBank) (*extractor.Extraction, error)
}

// Validator audits a finished extraction. *validator.Validator satisfies it.
type Validator interface {
	Validate(ctx context.Context, documentText string, result domain.ExtractionResult) domain.ValidationResult
}

// RunRecorder keeps a log of extraction runs. Recording is best effort: the
// orchestrator logs recorder errors and carries on.
type RunRecorder interface {
	StartRun(ctx context.Context, fileName string, bank domain.BankID) (string, error)
	MarkRunSucceeded(ctx context.Context, runID string, method domain.Method, confidence float64, transactions int) error
	MarkRunFailed(ctx context.Context, runID string, runErr error)
}
