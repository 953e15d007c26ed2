package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/console/internal/masterdata"
)

type fakeRefresher struct {
	mu      sync.Mutex
	all     int
	kinds   []masterdata.Kind
	failAll error
}

func (f *fakeRefresher) RefreshAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
	return f.failAll
}

func (f *fakeRefresher) Refresh(_ context.Context, kind masterdata.Kind, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return nil
}

type recordedJob struct {
	task string
	err  error
}

type fakeObserver struct {
	jobs []recordedJob
}

func (f *fakeObserver) ObserveJob(task string, err error) {
	f.jobs = append(f.jobs, recordedJob{task: task, err: err})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func taskFor(t *testing.T, payload MasterDataRefreshPayload) *asynq.Task {
	t.Helper()
	task, err := NewMasterDataRefreshTask(payload)
	require.NoError(t, err)
	return task
}

func TestNewMasterDataRefreshTask(t *testing.T) {
	task := taskFor(t, MasterDataRefreshPayload{Kinds: []string{"brands"}, Reason: "startup"})

	assert.Equal(t, TaskMasterDataRefresh, task.Type())
	var payload MasterDataRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []string{"brands"}, payload.Kinds)
	assert.Equal(t, "startup", payload.Reason)
}

func TestRefreshJobRefreshesEverythingByDefault(t *testing.T) {
	store := &fakeRefresher{}
	obs := &fakeObserver{}
	job := NewMasterDataRefreshJob(store, quietLogger(), obs)

	err := job.Handle(context.Background(), taskFor(t, MasterDataRefreshPayload{Reason: "cron"}))

	require.NoError(t, err)
	assert.Equal(t, 1, store.all)
	assert.Empty(t, store.kinds)
	require.Len(t, obs.jobs, 1)
	assert.Equal(t, TaskMasterDataRefresh, obs.jobs[0].task)
	assert.NoError(t, obs.jobs[0].err)
}

func TestRefreshJobSelectedKinds(t *testing.T) {
	store := &fakeRefresher{}
	job := NewMasterDataRefreshJob(store, quietLogger(), nil)

	err := job.Handle(context.Background(), taskFor(t, MasterDataRefreshPayload{Kinds: []string{"suppliers", "uoms"}}))

	require.NoError(t, err)
	assert.Equal(t, 0, store.all)
	assert.Equal(t, []masterdata.Kind{masterdata.KindSuppliers, masterdata.KindUOMs}, store.kinds)
}

func TestRefreshJobReportsFailure(t *testing.T) {
	boom := errors.New("backend down")
	store := &fakeRefresher{failAll: boom}
	obs := &fakeObserver{}
	job := NewMasterDataRefreshJob(store, quietLogger(), obs)

	err := job.Handle(context.Background(), taskFor(t, MasterDataRefreshPayload{}))

	assert.ErrorIs(t, err, boom)
	require.Len(t, obs.jobs, 1)
	assert.ErrorIs(t, obs.jobs[0].err, boom)
}

func TestRefreshJobSkipsRetryOnBadInput(t *testing.T) {
	job := NewMasterDataRefreshJob(&fakeRefresher{}, quietLogger(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskMasterDataRefresh, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), taskFor(t, MasterDataRefreshPayload{Kinds: []string{"subcategories"}}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func healthOf(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, quietLogger()).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rec
}

func TestHealthReportsQueueDepth(t *testing.T) {
	rec := healthOf(t, fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Active: 1}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":4,"active":1,"retry":0}`, rec.Body.String())
}

func TestHealthWithoutQueue(t *testing.T) {
	rec := healthOf(t, fakeInspector{err: asynq.ErrQueueNotFound})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0}`, rec.Body.String())

	rec = healthOf(t, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = healthOf(t, fakeInspector{err: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
