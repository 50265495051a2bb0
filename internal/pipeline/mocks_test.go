package pipeline_test

import (
	"context"
	"sync"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor"
)

// MockExtractor is a mock implementation of pipeline.Extractor for testing.
type MockExtractor struct {
	ExtractFunc func(ctx context.Context, text, fileName string, hint domain.DetectedBank) (*extractor.Extraction, error)
	calls       int
}

func (m *MockExtractor) Extract(ctx context.Context, text, fileName string, hint domain.DetectedBank) (*extractor.Extraction, error) {
	m.calls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, text, fileName, hint)
	}
	return &extractor.Extraction{}, nil
}

// MockValidator is a mock implementation of pipeline.Validator for testing.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, text string, result domain.ExtractionResult) domain.ValidationResult
}

func (m *MockValidator) Validate(ctx context.Context, text string, result domain.ExtractionResult) domain.ValidationResult {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, text, result)
	}
	return domain.ValidationResult{OverallScore: 100}
}

// MockRunRecorder is a mock implementation of pipeline.RunRecorder that remembers
// what it was told.
type MockRunRecorder struct {
	StartRunFunc         func(ctx context.Context, fileName string, bank domain.BankID) (string, error)
	MarkRunSucceededFunc func(ctx context.Context, runID string, method domain.Method, confidence float64, transactions int) error

	mu        sync.Mutex
	succeeded []domain.Method
	failed    []string
}

func (m *MockRunRecorder) StartRun(ctx context.Context, fileName string, bank domain.BankID) (string, error) {
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, fileName, bank)
	}
	return "run-1", nil
}

func (m *MockRunRecorder) MarkRunSucceeded(ctx context.Context, runID string, method domain.Method, confidence float64, transactions int) error {
	m.mu.Lock()
	m.succeeded = append(m.succeeded, method)
	m.mu.Unlock()
	if m.MarkRunSucceededFunc != nil {
		return m.MarkRunSucceededFunc(ctx, runID, method, confidence, transactions)
	}
	return nil
}

func (m *MockRunRecorder) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, runErr.Error())
}
