package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/pipeline"
)

func itauDocument() domain.Document {
	return domain.Document{
		FileBytes: []byte(itauStatement),
		FileName:  "extrato.txt",
		MIMEType:  "text/plain",
	}
}

func TestAnalysisPipeline_ParserPath(t *testing.T) {
	p := pipeline.NewAnalysisPipeline(pipeline.NewOrchestrator(), nil)
	state := &pipeline.PipelineState{Document: itauDocument()}

	require.NoError(t, p.Execute(context.Background(), state))

	assert.Equal(t, domain.BankItau, state.Bank.ID)
	assert.Equal(t, domain.MethodParser, state.Extraction.Method)
	require.Len(t, state.Extraction.Transactions, 2)
	for _, tx := range state.Extraction.Transactions {
		assert.NotEmpty(t, tx.Category, tx.Description)
	}

	require.NotNil(t, state.Summary)
	assert.Equal(t, "2350", state.Summary.FinalBalance.String())
	assert.Equal(t, 2, state.Summary.TransactionCount)
	assert.Nil(t, state.Validation)

	report := state.Report()
	assert.Equal(t, state.Summary, report.Summary)
}

func TestAnalysisPipeline_CrossValidation(t *testing.T) {
	var seen domain.ExtractionResult
	v := &MockValidator{
		ValidateFunc: func(ctx context.Context, text string, result domain.ExtractionResult) domain.ValidationResult {
			seen = result
			return domain.ValidationResult{OverallScore: 88}
		},
	}
	p := pipeline.NewAnalysisPipeline(pipeline.NewOrchestrator(), v)
	state := &pipeline.PipelineState{Document: itauDocument()}

	require.NoError(t, p.Execute(context.Background(), state))

	require.NotNil(t, state.Validation)
	assert.Equal(t, 88.0, state.Validation.OverallScore)
	assert.Len(t, seen.Transactions, 2)
	assert.Equal(t, domain.MethodParser, state.Extraction.Method, "validation never alters the extraction")
}

func TestAnalysisPipeline_FailedExtractionSkipsScoring(t *testing.T) {
	v := &MockValidator{}
	p := pipeline.NewAnalysisPipeline(pipeline.NewOrchestrator(), v)
	state := &pipeline.PipelineState{Document: domain.Document{FileBytes: []byte("nada"), FileName: "nota.txt"}}

	require.NoError(t, p.Execute(context.Background(), state))

	assert.False(t, state.Extraction.Success)
	assert.Nil(t, state.Summary)
	assert.Nil(t, state.Validation)
}

func TestAnalysisPipeline_UnreadableDocument(t *testing.T) {
	p := pipeline.NewAnalysisPipeline(pipeline.NewOrchestrator(), nil)
	state := &pipeline.PipelineState{Document: domain.Document{FileName: "vazio.pdf"}}

	require.NoError(t, p.Execute(context.Background(), state))

	assert.Equal(t, "", state.Text)
	assert.False(t, state.Extraction.Success)
	assert.Equal(t, domain.BankUnknown, state.Extraction.Bank.ID)
}

func TestDetectBankStep_Hint(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hint     domain.BankID
		wantBank domain.BankID
		wantConf float64
	}{
		{"hint used when nothing detected", "15/05 PIX 10,00", domain.BankNubank, domain.BankNubank, 0.3},
		{"detection wins over hint", itauStatement, domain.BankNubank, domain.BankItau, 0.9},
		{"unknown hint ignored", "15/05 PIX 10,00", "banco-x", domain.BankUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &pipeline.PipelineState{
				Document: domain.Document{FileName: "arquivo.txt"},
				Text:     tt.text,
				BankHint: tt.hint,
			}
			require.NoError(t, (&pipeline.DetectBankStep{}).Execute(context.Background(), state))
			assert.Equal(t, tt.wantBank, state.Bank.ID)
			assert.Equal(t, tt.wantConf, state.Bank.Confidence)
		})
	}
}

func TestCategorizeStep_LeavesOriginalUntouched(t *testing.T) {
	original := backendTransactions()
	state := &pipeline.PipelineState{
		Extraction: domain.ExtractionResult{Success: true, Transactions: original},
	}

	require.NoError(t, (&pipeline.CategorizeStep{}).Execute(context.Background(), state))

	assert.Empty(t, original[0].Category)
	assert.NotEmpty(t, state.Extraction.Transactions[0].Category)
}

type failingStep struct{ err error }

func (s *failingStep) Execute(ctx context.Context, state *pipeline.PipelineState) error {
	return s.err
}

func TestPipeline_Execute(t *testing.T) {
	t.Run("wraps step errors", func(t *testing.T) {
		boom := errors.New("boom")
		p := pipeline.NewPipeline(&pipeline.LoadTextStep{}, &failingStep{err: boom})

		err := p.Execute(context.Background(), &pipeline.PipelineState{Document: itauDocument()})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "pipeline step 2 failed")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		state := &pipeline.PipelineState{Document: itauDocument()}
		err := pipeline.NewAnalysisPipeline(pipeline.NewOrchestrator(), nil).Execute(ctx, state)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, state.Text)
	})
}
