package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeDocument represents a document analysis job.
	JobTypeAnalyzeDocument JobType = "analyze_document"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusQueued indicates the job is waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the analysis finished and Result is set.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are not retried.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned by stores for unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// AnalyzeDocumentJob represents a request to analyze one document from GCS.
type AnalyzeDocumentJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UserID owns the document; it scopes the duplicate-processing guard.
	UserID string `json:"user_id"`

	// GCSURI is the GCS URI of the document to analyze.
	GCSURI string `json:"gcs_uri"`

	// BankHint is an optional caller-supplied issuer.
	BankHint domain.BankID `json:"bank_hint,omitempty"`

	// Validate requests cross-validation of the extraction.
	Validate bool `json:"validate"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// Result is set once the job completes.
	Result *domain.AnalysisReport `json:"result,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalyzeDocumentJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalyzeDocumentJob) GetType() JobType {
	return JobTypeAnalyzeDocument
}

// GetStatus implements the Job interface.
func (j *AnalyzeDocumentJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAnalyzeDocument enqueues a job and returns once it is stored as queued.
	PublishAnalyzeDocument(ctx context.Context, job *AnalyzeDocumentJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job and returns its report. An error marks the job failed.
type JobHandler func(ctx context.Context, job *AnalyzeDocumentJob) (*domain.AnalysisReport, error)

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeDocumentJob) error

	// GetJob retrieves a job by ID. Unknown IDs return an error wrapping ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*AnalyzeDocumentJob, error)

	// ListJobs retrieves jobs, newest first, with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeDocumentJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
