package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/api/handlers"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs/inmemory"
)

func TestNewRouter(t *testing.T) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, store)
	defer queue.Close()

	router := newRouter(handlers.NewJobsHandler(queue, store, zerolog.Nop()), nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"categories", http.MethodGet, "/api/categories", "", http.StatusOK},
		{"categories wrong method", http.MethodPost, "/api/categories", "", http.StatusMethodNotAllowed},
		{"create job", http.MethodPost, "/api/jobs", `{"user_id":"u1","gcs_uri":"gs://docs/a.pdf"}`, http.StatusAccepted},
		{"list jobs", http.MethodGet, "/api/jobs", "", http.StatusOK},
		{"jobs wrong method", http.MethodPut, "/api/jobs", "", http.StatusMethodNotAllowed},
		{"missing job id", http.MethodGet, "/api/jobs/", "", http.StatusBadRequest},
		{"unknown job", http.MethodGet, "/api/jobs/nope", "", http.StatusNotFound},
		{"runs disabled", http.MethodGet, "/api/runs", "", http.StatusNotFound},
		{"runs wrong method", http.MethodPost, "/api/runs", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
