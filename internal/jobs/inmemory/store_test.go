package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	job := &jobs.AnalyzeDocumentJob{JobID: "j1", UserID: "u1", Status: jobs.JobStatusQueued}
	require.NoError(t, s.SaveJob(ctx, job))

	job.Status = jobs.JobStatusFailed
	got, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusQueued, got.Status, "store keeps its own copy")

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	assert.Error(t, s.SaveJob(ctx, &jobs.AnalyzeDocumentJob{}))
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, j := range []jobs.AnalyzeDocumentJob{
		{JobID: "a", UserID: "u1", Status: jobs.JobStatusCompleted},
		{JobID: "b", UserID: "u2", Status: jobs.JobStatusFailed},
		{JobID: "c", UserID: "u1", Status: jobs.JobStatusQueued},
		{JobID: "d", UserID: "u1", Status: jobs.JobStatusCompleted},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveJob(ctx, &j))
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"d", "c", "b", "a"}},
		{"by user", jobs.JobFilter{UserID: "u1"}, []string{"d", "c", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusCompleted}, []string{"d", "a"}},
		{"limit", jobs.JobFilter{Limit: 2}, []string{"d", "c"}},
		{"offset", jobs.JobFilter{Offset: 3}, []string{"a"}},
		{"offset past end", jobs.JobFilter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, j := range got {
				ids = append(ids, j.JobID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveJob(ctx, &jobs.AnalyzeDocumentJob{JobID: "j1", Status: jobs.JobStatusRunning}))

	require.NoError(t, s.UpdateJobStatus(ctx, "j1", jobs.JobStatusFailed, "boom"))
	got, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	assert.ErrorIs(t, s.UpdateJobStatus(ctx, "nope", jobs.JobStatusFailed, ""), jobs.ErrJobNotFound)
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	cutoff := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-time.Hour)
	recent := cutoff.Add(time.Hour)

	for _, j := range []jobs.AnalyzeDocumentJob{
		{JobID: "old-done", Status: jobs.JobStatusCompleted, CompletedAt: &old},
		{JobID: "old-failed", Status: jobs.JobStatusFailed, CompletedAt: &old},
		{JobID: "recent-done", Status: jobs.JobStatusCompleted, CompletedAt: &recent},
		{JobID: "running", Status: jobs.JobStatusRunning},
		{JobID: "queued", Status: jobs.JobStatusQueued},
	} {
		j := j
		require.NoError(t, s.SaveJob(ctx, &j))
	}

	assert.Equal(t, 2, s.Prune(ctx, cutoff))

	left, err := s.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	var ids []string
	for _, j := range left {
		ids = append(ids, j.JobID)
	}
	assert.ElementsMatch(t, []string{"recent-done", "running", "queued"}, ids)
}
