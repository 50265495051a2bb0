package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/analysis"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/gcs"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs/inmemory"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

// pollInterval is how often batch checks the job store.
var pollInterval = 100 * time.Millisecond

func newBatchCommand(newService ServiceFactory) *cobra.Command {
	var userID string
	var bankHint string
	var validate bool
	var workers int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch <file|gs://uri>...",
		Short: "Analyze several statements concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := analysisOptions(bankHint, validate)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, cleanup, err := newService(ctx)
			if err != nil {
				return fmt.Errorf("building analysis service: %w", err)
			}
			defer cleanup()

			results, err := runBatch(ctx, svc, userID, args, opts, workers)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				printBatch(cmd.OutOrStdout(), args, results)
			}

			failed := 0
			for _, job := range results {
				if job.Status == jobs.JobStatusFailed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "cli", "user the analyses run for")
	cmd.Flags().StringVar(&bankHint, "bank-hint", "", "issuer to assume when a document does not name one")
	cmd.Flags().BoolVar(&validate, "validate", false, "cross-validate each extraction")
	cmd.Flags().IntVar(&workers, "workers", inmemory.DefaultWorkers, "documents analyzed in parallel")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full job records as JSON")

	return cmd
}

// runBatch pushes every source through an in-memory job queue and waits until all
// jobs reach a terminal state. Results come back in argument order.
func runBatch(ctx context.Context, svc *analysis.Service, userID string, sources []string, opts analysis.Options, workers int) ([]*jobs.AnalyzeDocumentJob, error) {
	log := logger.FromContext(ctx)

	store := inmemory.NewStore()
	queue := inmemory.NewQueue(len(sources), workers, store)
	defer queue.Close()

	// Local files travel by job ID; the queue itself only carries gs:// URIs.
	localPaths := make(map[string]string)
	handler := func(ctx context.Context, job *jobs.AnalyzeDocumentJob) (*domain.AnalysisReport, error) {
		path, ok := localPaths[job.JobID]
		if !ok {
			return svc.HandleJob(ctx, job)
		}
		doc, err := readLocal(path)
		if err != nil {
			return nil, err
		}
		report, err := svc.Analyze(ctx, job.UserID, doc, analysis.Options{
			BankHint: job.BankHint,
			Validate: job.Validate,
		})
		if err != nil {
			return nil, err
		}
		return &report, nil
	}

	queued := make([]*jobs.AnalyzeDocumentJob, 0, len(sources))
	ids := make([]string, 0, len(sources))
	for _, source := range sources {
		job := &jobs.AnalyzeDocumentJob{
			JobID:    uuid.New().String(),
			UserID:   userID,
			BankHint: opts.BankHint,
			Validate: opts.Validate,
		}
		if gcs.IsURI(source) {
			job.GCSURI = source
		} else {
			localPaths[job.JobID] = source
		}
		queued = append(queued, job)
		ids = append(ids, job.JobID)
	}

	// Workers start after the path map is complete, so it is only read from here on.
	if err := queue.Start(ctx, handler); err != nil {
		return nil, fmt.Errorf("starting workers: %w", err)
	}

	for i, job := range queued {
		if err := queue.PublishAnalyzeDocument(ctx, job); err != nil {
			return nil, fmt.Errorf("queueing %s: %w", sources[i], err)
		}
		log.Debug().Str("job_id", job.JobID).Str("source", sources[i]).Msg("Queued document")
	}

	return waitForJobs(ctx, store, ids)
}

func waitForJobs(ctx context.Context, store jobs.JobStore, ids []string) ([]*jobs.AnalyzeDocumentJob, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		results := make([]*jobs.AnalyzeDocumentJob, 0, len(ids))
		done := true
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("reading job %s: %w", id, err)
			}
			if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
				done = false
			}
			results = append(results, job)
		}
		if done {
			return results, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printBatch(w io.Writer, sources []string, results []*jobs.AnalyzeDocumentJob) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tBANK\tMETHOD\tTRANSACTIONS\tSCORE\tRISK\tERROR")
	for i, job := range results {
		name := filepath.Base(sources[i])
		if job.Result == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t%s\n", name, job.Status, job.Error)
			continue
		}
		ext := job.Result.Extraction
		score, risk := "-", "-"
		if s := job.Result.Summary; s != nil {
			score = fmt.Sprintf("%d", s.CreditScore)
			risk = string(s.RiskLevel)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			name, job.Status, ext.Bank.DisplayName, ext.Method, len(ext.Transactions), score, risk, ext.Error)
	}
	tw.Flush()
}
