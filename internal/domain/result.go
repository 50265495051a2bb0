package domain

import "github.com/shopspring/decimal"

// Method records which extraction strategy produced a result.
type Method string

const (
	MethodLLM    Method = "llm"
	MethodParser Method = "parser"
)

// ExtractionResult is the output of the hybrid orchestrator.
// It is built once and treated as read-only afterwards; later stages derive new values
// from it (see WithTransactions) instead of editing it.
type ExtractionResult struct {
	Success         bool              `json:"success"`
	Error           string            `json:"error,omitempty"`
	Bank            DetectedBank      `json:"bank"`
	AccountHolder   string            `json:"accountHolder"`
	Period          Period            `json:"period"`
	Transactions    []Transaction     `json:"transactions"`
	Summary         map[string]string `json:"summary,omitempty"`
	Method          Method            `json:"method"`
	Confidence      float64           `json:"confidence"`
	AccuracyWarning string            `json:"accuracyWarning,omitempty"`
}

// WithTransactions returns a copy of r holding txs. r itself is left untouched.
func (r ExtractionResult) WithTransactions(txs []Transaction) ExtractionResult {
	out := r
	out.Transactions = txs
	if r.Summary != nil {
		out.Summary = make(map[string]string, len(r.Summary))
		for k, v := range r.Summary {
			out.Summary[k] = v
		}
	}
	return out
}

// RiskLevel is the coarse risk classification of a profile.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CategoryStats aggregates the debits of one spending category.
type CategoryStats struct {
	Total                   decimal.Decimal `json:"total"`
	Count                   int             `json:"count"`
	AverageAmount           decimal.Decimal `json:"averageAmount"`
	PercentageOfTotalDebits float64         `json:"percentageOfTotalDebits"`
	Confidence              float64         `json:"confidence"`
}

// FraudFlag marks a pattern in the ledger that deserves a manual look.
type FraudFlag struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// FinancialSummary is derived from a transaction list and can be recomputed at any time.
type FinancialSummary struct {
	TotalCredits      decimal.Decimal          `json:"totalCredits"`
	TotalDebits       decimal.Decimal          `json:"totalDebits"`
	FinalBalance      decimal.Decimal          `json:"finalBalance"`
	TransactionCount  int                      `json:"transactionCount"`
	CreditScore       int                      `json:"creditScore"`
	RiskScore         float64                  `json:"riskScore"`
	RiskLevel         RiskLevel                `json:"riskLevel"`
	CategoryBreakdown map[string]CategoryStats `json:"categoryBreakdown"`
	Recommendations   []string                 `json:"recommendations"`
	Insights          []string                 `json:"insights"`
	FraudFlags        []FraudFlag              `json:"fraudFlags"`
}

// FieldAccuracy holds per-field fidelity scores, each 0-100.
type FieldAccuracy struct {
	BankDetection       float64 `json:"bankDetection"`
	TransactionCount    float64 `json:"transactionCount"`
	DateAccuracy        float64 `json:"dateAccuracy"`
	ValueAccuracy       float64 `json:"valueAccuracy"`
	DescriptionAccuracy float64 `json:"descriptionAccuracy"`
}

// ValidationResult is the read-only audit of one ExtractionResult.
// Nothing feeds it back into the extraction.
type ValidationResult struct {
	OverallScore    float64       `json:"overallScore"`
	Accuracy        FieldAccuracy `json:"accuracy"`
	Discrepancies   []string      `json:"discrepancies"`
	Recommendations []string      `json:"recommendations"`
}

// AnalysisReport bundles everything the core hands back to its callers.
type AnalysisReport struct {
	Extraction ExtractionResult  `json:"extraction"`
	Summary    *FinancialSummary `json:"summary,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
}
