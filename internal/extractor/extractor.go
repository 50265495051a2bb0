// Package extractor delegates statement extraction to a reasoning backend and
// validates its response against the transaction schema.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/llm"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

var (
	// ErrSchemaViolation marks a backend response that does not match the contract.
	ErrSchemaViolation = errors.New("extraction response violates schema")
	// ErrBackend marks a failure to obtain any response from the backend.
	ErrBackend = errors.New("extraction backend failed")
)

// Extraction is a schema-valid backend result. Bank is the name the backend reported,
// empty when it marked it unavailable.
type Extraction struct {
	Bank          string
	AccountHolder string
	Period        domain.Period
	Transactions  []domain.Transaction
	Summary       map[string]string
	Confidence    float64
}

// Extractor runs one backend call per document. It never retries.
type Extractor struct {
	backend llm.Backend
}

// New creates an Extractor over backend.
func New(backend llm.Backend) *Extractor {
	return &Extractor{backend: backend}
}

// Backend returns the configured backend name.
func (e *Extractor) Backend() string {
	return e.backend.Name()
}

// Extract asks the backend for the document's transactions. Errors wrap ErrBackend
// or ErrSchemaViolation; no partial data is returned alongside an error.
func (e *Extractor) Extract(ctx context.Context, text, fileName string, bankHint domain.DetectedBank) (*Extraction, error) {
	log := logger.FromContext(ctx)

	raw, err := e.backend.Generate(ctx, buildPrompt(text, fileName, bankHint))
	if err != nil {
		return nil, fmt.Errorf("Extract: %s: %w: %w", e.backend.Name(), ErrBackend, err)
	}

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("Extract: %w: %v", ErrSchemaViolation, err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var parsed map[string]interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("Extract: %w: unmarshal JSON: %v", ErrSchemaViolation, err)
	}

	out, err := transformModelOutput(parsed)
	if err != nil {
		return nil, fmt.Errorf("Extract: %w: %v", ErrSchemaViolation, err)
	}

	log.Debug().
		Str("backend", e.backend.Name()).
		Str("bank", out.Bank).
		Int("transactions", len(out.Transactions)).
		Float64("confidence", out.Confidence).
		Msg("Extraction response accepted")

	return out, nil
}
