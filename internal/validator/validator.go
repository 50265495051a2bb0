// Package validator asks an independent backend to audit an extraction against the
// source text. The audit is advisory: its result is reported next to the extraction
// and never fed back into it.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/llm"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

// DefaultTextLimit is how many characters of the document are sent for comparison.
const DefaultTextLimit = 8000

// Validator cross-checks extractions with a second backend.
type Validator struct {
	backend   llm.Backend
	textLimit int
}

// New creates a Validator. A non-positive textLimit selects DefaultTextLimit.
func New(backend llm.Backend, textLimit int) *Validator {
	if textLimit <= 0 {
		textLimit = DefaultTextLimit
	}
	return &Validator{backend: backend, textLimit: textLimit}
}

type modelAccuracy struct {
	BankDetection       float64 `json:"bankDetection"`
	TransactionCount    float64 `json:"transactionCount"`
	DateAccuracy        float64 `json:"dateAccuracy"`
	ValueAccuracy       float64 `json:"valueAccuracy"`
	DescriptionAccuracy float64 `json:"descriptionAccuracy"`
}

type modelReport struct {
	OverallScore    float64       `json:"overallScore"`
	Accuracy        modelAccuracy `json:"accuracy"`
	Discrepancies   []string      `json:"discrepancies"`
	Recommendations []string      `json:"recommendations"`
}

// Validate compares result with documentText. Any failure yields a zeroed report whose
// discrepancies carry the error; Validate itself never fails.
func (v *Validator) Validate(ctx context.Context, documentText string, result domain.ExtractionResult) domain.ValidationResult {
	log := logger.FromContext(ctx)

	report, err := v.validate(ctx, documentText, result)
	if err != nil {
		log.Warn().Err(err).Str("backend", v.backend.Name()).Msg("Cross-validation failed")
		return failed(err)
	}

	log.Info().
		Float64("overall_score", report.OverallScore).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("Cross-validation complete")
	return report
}

func (v *Validator) validate(ctx context.Context, documentText string, result domain.ExtractionResult) (domain.ValidationResult, error) {
	// result is passed by value, so marshalling it cannot reach the caller's copy.
	extraction, err := json.Marshal(result)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate: marshal extraction: %w", err)
	}

	raw, err := v.backend.Generate(ctx, buildPrompt(truncate(documentText, v.textLimit), string(extraction)))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate: backend: %w", err)
	}

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate: %w", err)
	}

	var parsed modelReport
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate: unmarshal report: %w", err)
	}

	return domain.ValidationResult{
		OverallScore: clamp(parsed.OverallScore),
		Accuracy: domain.FieldAccuracy{
			BankDetection:       clamp(parsed.Accuracy.BankDetection),
			TransactionCount:    clamp(parsed.Accuracy.TransactionCount),
			DateAccuracy:        clamp(parsed.Accuracy.DateAccuracy),
			ValueAccuracy:       clamp(parsed.Accuracy.ValueAccuracy),
			DescriptionAccuracy: clamp(parsed.Accuracy.DescriptionAccuracy),
		},
		Discrepancies:   nonNil(parsed.Discrepancies),
		Recommendations: nonNil(parsed.Recommendations),
	}, nil
}

func failed(err error) domain.ValidationResult {
	return domain.ValidationResult{
		Discrepancies:   []string{"Erro na validação: " + err.Error()},
		Recommendations: []string{},
	}
}

func clamp(score float64) float64 {
	return max(0, min(100, score))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// truncate keeps the first limit characters of s without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func buildPrompt(text, extraction string) string {
	var b strings.Builder
	b.WriteString(`Você é um auditor de extração de extratos bancários brasileiros.
Compare o TEXTO ORIGINAL com a EXTRAÇÃO e avalie a fidelidade dos dados extraídos.

Responda APENAS com um objeto JSON neste formato:
{
  "overallScore": 0-100,
  "accuracy": {
    "bankDetection": 0-100,
    "transactionCount": 0-100,
    "dateAccuracy": 0-100,
    "valueAccuracy": 0-100,
    "descriptionAccuracy": 0-100
  },
  "discrepancies": ["descrição de cada divergência encontrada"],
  "recommendations": ["sugestão para melhorar a extração"]
}

TEXTO ORIGINAL:
`)
	b.WriteString(text)
	b.WriteString("\n\nEXTRAÇÃO:\n")
	b.WriteString(extraction)
	b.WriteString("\n")
	return b.String()
}
