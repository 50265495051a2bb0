package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Run statuses stored in analysis_runs.status.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// AnalysisRunRow is one row of the analysis_runs table.
type AnalysisRunRow struct {
	RunID    string `bigquery:"run_id"`    // REQUIRED
	FileName string `bigquery:"file_name"` // REQUIRED
	BankID   string `bigquery:"bank_id"`   // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Method           bigquery.NullString  `bigquery:"method"`            // NULLABLE, llm or parser
	Confidence       bigquery.NullFloat64 `bigquery:"confidence"`        // NULLABLE
	TransactionCount bigquery.NullInt64   `bigquery:"transaction_count"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE
}
