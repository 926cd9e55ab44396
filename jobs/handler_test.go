package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/muhasaba-erp/muhasaba-erp/jobs"
)

type fakeEnqueuer struct {
	calls int
	err   error
}

func (f *fakeEnqueuer) EnqueueLedgerIntegrity(ctx context.Context) (*asynq.TaskInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault}, nil
}

func newJobsRouter(enqueuer jobs.IntegrityEnqueuer) http.Handler {
	handler := jobs.NewHandler(nil, enqueuer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/jobs", handler.MountRoutes)
	return r
}

func TestRunIntegrityEnqueuesScan(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := newJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, enqueuer.calls)
	require.JSONEq(t, `{"task":"task-1","queue":"default"}`, rec.Body.String())
}

func TestRunIntegrityWithoutQueue(t *testing.T) {
	router := newJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRunIntegrityEnqueueFailure(t *testing.T) {
	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	router := newJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, enqueuer.calls)
}
