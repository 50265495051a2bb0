// Package bigquery records analysis runs in BigQuery.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

const (
	runsTable        = "analysis_runs"
	maxErrorLen      = 2000
	defaultListLimit = 50
)

// RunRepository writes one row per extraction run. It holds a shared BigQuery client.
type RunRepository struct {
	client  *bigquery.Client
	dataset string
}

// NewRunRepository creates the BigQuery client for projectID.
func NewRunRepository(ctx context.Context, projectID, dataset string) (*RunRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRunRepository: creating client: %w", err)
	}
	return &RunRepository{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (r *RunRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartRun inserts a new row with status=RUNNING and returns the generated run_id.
func (r *RunRepository) StartRun(ctx context.Context, fileName string, bank domain.BankID) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			file_name,
			bank_id,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@file_name,
			@bank_id,
			@started_ts,
			@status
		)
	`, r.dataset, runsTable))
	q.Parameters = startRunParams(runID, fileName, bank, time.Now())

	if err := runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}
	return runID, nil
}

// MarkRunSucceeded sets status=SUCCESS with the method, confidence and transaction count.
func (r *RunRepository) MarkRunSucceeded(ctx context.Context, runID string, method domain.Method, confidence float64, transactions int) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    method = @method,
		    confidence = @confidence,
		    transaction_count = @transaction_count,
		    error_message = ""
		WHERE run_id = @run_id
	`, r.dataset, runsTable))
	q.Parameters = succeededParams(runID, method, confidence, transactions, time.Now())

	if err := runQuery(ctx, q); err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

// MarkRunFailed sets status=FAILED, finished_ts and error_message. Errors are logged.
func (r *RunRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.dataset, runsTable))
	q.Parameters = failedParams(runID, runErr, time.Now())

	if err := runQuery(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: update failed")
	}
}

// ListRecentRuns returns the newest runs first. A non-positive limit selects 50.
func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*AnalysisRunRow, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			file_name,
			bank_id,
			started_ts,
			finished_ts,
			method,
			confidence,
			transaction_count,
			status,
			error_message
		FROM %s.%s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.dataset, runsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: reading query: %w", err)
	}

	var runs []*AnalysisRunRow
	for {
		var row AnalysisRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}
	return runs, nil
}

func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

func startRunParams(runID, fileName string, bank domain.BankID, started time.Time) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "file_name", Value: fileName},
		{Name: "bank_id", Value: string(bank)},
		{Name: "started_ts", Value: started},
		{Name: "status", Value: RunStatusRunning},
	}
}

func succeededParams(runID string, method domain.Method, confidence float64, transactions int, finished time.Time) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: finished},
		{Name: "method", Value: string(method)},
		{Name: "confidence", Value: confidence},
		{Name: "transaction_count", Value: transactions},
		{Name: "run_id", Value: runID},
	}
}

func failedParams(runID string, runErr error, finished time.Time) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: finished},
		{Name: "error_message", Value: truncateError(runErr)},
		{Name: "run_id", Value: runID},
	}
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}
