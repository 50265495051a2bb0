package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor/llmfake"
)

const validResponse = "Segue o JSON:\n```json\n" + `{
  "bank": "Nubank",
  "accountHolder": "MARIA DA SILVA",
  "period": {"start": "2025-05-01", "end": "2025-05-31"},
  "transactions": [
    {"date": "2025-05-15", "description": "PIX RECEBIDO ACME", "amount": 2500, "direction": "credit", "category": "transferência", "subcategory": "pix"},
    {"date": "16/05/2025", "description": "SUPERMERCADO EXTRA", "amount": "-189,90", "direction": "saída", "category": "N/A", "subcategory": "N/A", "runningBalance": "2310.10"}
  ],
  "summary": {"totalCredits": 2500.00, "notes": "ok"},
  "confidence": 0.92
}` + "\n```"

func TestExtract_Valid(t *testing.T) {
	backend := llmfake.Scripted(validResponse)
	ex := extractor.New(backend)

	out, err := ex.Extract(context.Background(), "texto do extrato", "nubank.pdf", domain.DetectedBank{ID: domain.BankNubank, DisplayName: "Nubank", Confidence: 0.9})
	require.NoError(t, err)

	assert.Equal(t, "Nubank", out.Bank)
	assert.Equal(t, "MARIA DA SILVA", out.AccountHolder)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.May, Day: 1}, out.Period.Start)
	assert.Equal(t, 0.92, out.Confidence)
	assert.Equal(t, "2500.00", out.Summary["totalCredits"])
	require.Len(t, out.Transactions, 2)

	first := out.Transactions[0]
	assert.Equal(t, "2500", first.Amount.String())
	assert.Equal(t, domain.DirectionCredit, first.Direction)
	assert.Equal(t, "transferência", first.Category)
	assert.Equal(t, "pix", first.Subcategory)

	second := out.Transactions[1]
	assert.Equal(t, civil.Date{Year: 2025, Month: time.May, Day: 16}, second.Date)
	assert.Equal(t, "189.9", second.Amount.String())
	assert.Equal(t, domain.DirectionDebit, second.Direction)
	assert.Empty(t, second.Category)
	assert.Empty(t, second.Subcategory)
	require.NotNil(t, second.RunningBalance)
	assert.Equal(t, "2310.1", second.RunningBalance.String())

	assert.Equal(t, 1, backend.Calls())
	prompt := backend.Prompts()[0]
	assert.Contains(t, prompt, "texto do extrato")
	assert.Contains(t, prompt, "Banco provável: Nubank")
	assert.Contains(t, prompt, `"N/A"`)
}

func TestExtract_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing transactions", `{"bank": "Nubank", "confidence": 0.95}`},
		{"transactions not array", `{"transactions": {"date": "2025-05-15"}}`},
		{"not json", `desculpe, não consegui ler o documento`},
		{"broken json", `{"transactions": [ {"date": "2025-05-15", }`},
		{"missing amount", `{"transactions": [{"date": "2025-05-15", "description": "x", "direction": "debit", "category": "outros"}]}`},
		{"zero amount", `{"transactions": [{"date": "2025-05-15", "description": "x", "amount": "0,00", "direction": "debit", "category": "outros"}]}`},
		{"bad direction", `{"transactions": [{"date": "2025-05-15", "description": "x", "amount": 10, "direction": "sideways", "category": "outros"}]}`},
		{"bad date", `{"transactions": [{"date": "ontem", "description": "x", "amount": 10, "direction": "debit", "category": "outros"}]}`},
		{"missing category", `{"transactions": [{"date": "2025-05-15", "description": "x", "amount": 10, "direction": "debit"}]}`},
		{"amount N/A", `{"transactions": [{"date": "2025-05-15", "description": "x", "amount": "N/A", "direction": "debit", "category": "outros"}]}`},
		{"confidence out of range", `{"transactions": [], "confidence": 7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extractor.New(llmfake.Scripted(tt.response))
			out, err := ex.Extract(context.Background(), "x", "x.pdf", domain.UnknownBank())
			require.Error(t, err)
			assert.True(t, errors.Is(err, extractor.ErrSchemaViolation), err.Error())
			assert.Nil(t, out)
		})
	}
}

func TestExtract_BackendError(t *testing.T) {
	cause := errors.New("connection refused")
	ex := extractor.New(llmfake.Failing(cause))

	out, err := ex.Extract(context.Background(), "x", "x.pdf", domain.UnknownBank())
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrBackend)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, out)
}

func TestExtract_Timeout(t *testing.T) {
	ex := extractor.New(llmfake.Slow())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ex.Extract(ctx, "x", "x.pdf", domain.UnknownBank())
	assert.ErrorIs(t, err, extractor.ErrBackend)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtract_EmptyTransactionsIsValid(t *testing.T) {
	ex := extractor.New(llmfake.Scripted(`{"bank": "N/A", "transactions": []}`))
	out, err := ex.Extract(context.Background(), "", "", domain.UnknownBank())
	require.NoError(t, err)
	assert.Empty(t, out.Transactions)
	assert.Empty(t, out.Bank)
	assert.Equal(t, 0.0, out.Confidence)
	assert.Equal(t, "N/A", out.AccountHolder)
}

func TestExtract_SyntheticStatement(t *testing.T) {
	opts := llmfake.StatementOptions{Seed: 42, Bank: "Banco Inter", Transactions: 12, Confidence: 0.9}
	ex := extractor.New(llmfake.Synthetic(opts))

	out, err := ex.Extract(context.Background(), "qualquer", "inter.pdf", domain.UnknownBank())
	require.NoError(t, err)
	require.Len(t, out.Transactions, 12)
	for _, tx := range out.Transactions {
		assert.True(t, tx.Amount.IsPositive())
		assert.True(t, tx.Direction.Valid())
		assert.Equal(t, 5, int(tx.Date.Month))
	}
	assert.Equal(t, llmfake.Statement(opts), llmfake.Statement(opts))
	assert.True(t, strings.Contains(llmfake.Statement(opts), "Banco Inter"))
}
