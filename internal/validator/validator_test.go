package validator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor/llmfake"
)

func sampleResult() domain.ExtractionResult {
	return domain.ExtractionResult{
		Success:       true,
		Bank:          domain.DetectedBank{ID: domain.BankNubank, DisplayName: "Nubank", Confidence: 0.9},
		AccountHolder: "MARIA SILVA",
		Transactions: []domain.Transaction{
			{
				Date:        civil.Date{Year: 2025, Month: time.May, Day: 2},
				Description: "SALARIO",
				Amount:      decimal.RequireFromString("2500.00"),
				Direction:   domain.DirectionCredit,
			},
		},
		Summary:    map[string]string{"saldo": "2500,00"},
		Method:     domain.MethodLLM,
		Confidence: 0.92,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		check    func(t *testing.T, got domain.ValidationResult)
	}{
		{
			name: "well formed report",
			response: "```json\n" + `{"overallScore": 91, "accuracy": {"bankDetection": 100, "transactionCount": 95,
				"dateAccuracy": 90, "valueAccuracy": 88, "descriptionAccuracy": 80},
				"discrepancies": ["descrição abreviada"], "recommendations": []}` + "\n```",
			check: func(t *testing.T, got domain.ValidationResult) {
				assert.Equal(t, 91.0, got.OverallScore)
				assert.Equal(t, 100.0, got.Accuracy.BankDetection)
				assert.Equal(t, 80.0, got.Accuracy.DescriptionAccuracy)
				assert.Equal(t, []string{"descrição abreviada"}, got.Discrepancies)
				assert.NotNil(t, got.Recommendations)
			},
		},
		{
			name:     "scores are clamped",
			response: `{"overallScore": 140, "accuracy": {"bankDetection": -5, "valueAccuracy": 100.5}}`,
			check: func(t *testing.T, got domain.ValidationResult) {
				assert.Equal(t, 100.0, got.OverallScore)
				assert.Equal(t, 0.0, got.Accuracy.BankDetection)
				assert.Equal(t, 100.0, got.Accuracy.ValueAccuracy)
				assert.Empty(t, got.Discrepancies)
			},
		},
		{
			name:     "prose without JSON",
			response: "Não consegui avaliar.",
			check: func(t *testing.T, got domain.ValidationResult) {
				assert.Zero(t, got.OverallScore)
				require.Len(t, got.Discrepancies, 1)
				assert.Contains(t, got.Discrepancies[0], "no JSON object")
			},
		},
		{
			name:     "wrong types",
			response: `{"overallScore": "alto"}`,
			check: func(t *testing.T, got domain.ValidationResult) {
				assert.Zero(t, got.OverallScore)
				require.Len(t, got.Discrepancies, 1)
				assert.Contains(t, got.Discrepancies[0], "unmarshal report")
			},
		},
		{
			name: "backend failure",
			err:  errors.New("quota exceeded"),
			check: func(t *testing.T, got domain.ValidationResult) {
				assert.Zero(t, got.OverallScore)
				assert.Equal(t, domain.FieldAccuracy{}, got.Accuracy)
				require.Len(t, got.Discrepancies, 1)
				assert.Contains(t, got.Discrepancies[0], "quota exceeded")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &llmfake.Backend{Responses: []string{tt.response}, Errors: []error{tt.err}}
			v := New(backend, 0)

			got := v.Validate(context.Background(), "texto do extrato", sampleResult())

			tt.check(t, got)
			assert.Equal(t, 1, backend.Calls())
		})
	}
}

func TestValidate_DoesNotMutateResult(t *testing.T) {
	result := sampleResult()
	before := result.Transactions[0]

	v := New(llmfake.Scripted(`{"overallScore": 50}`), 0)
	v.Validate(context.Background(), "texto", result)

	assert.Equal(t, before, result.Transactions[0])
	assert.Equal(t, "2500,00", result.Summary["saldo"])
}

func TestValidate_PromptCarriesTruncatedTextAndExtraction(t *testing.T) {
	backend := llmfake.Scripted(`{"overallScore": 70}`)
	v := New(backend, 10)

	v.Validate(context.Background(), "0123456789ABCDEF", sampleResult())

	prompts := backend.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "0123456789\n")
	assert.NotContains(t, prompts[0], "ABCDEF")
	assert.Contains(t, prompts[0], `"accountHolder":"MARIA SILVA"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "saú", truncate("saúde", 3))
	assert.True(t, strings.HasPrefix("ção", truncate("ção", 1)))
}
