package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/console/jobs"
)

type fakeEnqueuer struct {
	payloads []jobs.MasterDataRefreshPayload
	dup      bool
}

func (f *fakeEnqueuer) EnqueueMasterDataRefresh(_ context.Context, p jobs.MasterDataRefreshPayload) (*asynq.TaskInfo, error) {
	f.payloads = append(f.payloads, p)
	if f.dup {
		return nil, nil
	}
	return &asynq.TaskInfo{ID: "t1", Type: jobs.TaskMasterDataRefresh, Queue: jobs.QueueDefault}, nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestRefreshEnqueuesManualTask(t *testing.T) {
	enq := &fakeEnqueuer{}
	var out bytes.Buffer
	c := NewJobsCLI(enq, nil, &out)

	require.NoError(t, c.Run(context.Background(), []string{"refresh", "brands"}))

	require.Len(t, enq.payloads, 1)
	assert.Equal(t, []string{"brands"}, enq.payloads[0].Kinds)
	assert.Equal(t, "manual", enq.payloads[0].Reason)
	assert.Equal(t, "enqueued masterdata:refresh id=t1 queue=default\n", out.String())
}

func TestRefreshAlreadyQueued(t *testing.T) {
	var out bytes.Buffer
	c := NewJobsCLI(&fakeEnqueuer{dup: true}, nil, &out)

	require.NoError(t, c.Run(context.Background(), []string{"refresh"}))

	assert.Equal(t, "refresh already queued\n", out.String())
}

func TestStats(t *testing.T) {
	var out bytes.Buffer
	c := NewJobsCLI(nil, fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 2, Scheduled: 1}}, &out)

	require.NoError(t, c.Run(context.Background(), []string{"stats"}))

	assert.Equal(t, "queue=default pending=2 active=0 scheduled=1 retry=0\n", out.String())
}

func TestStatsErrors(t *testing.T) {
	c := NewJobsCLI(nil, fakeInspector{err: errors.New("redis down")}, &bytes.Buffer{})
	assert.Error(t, c.Run(context.Background(), []string{"stats"}))

	c = NewJobsCLI(nil, fakeInspector{err: asynq.ErrQueueNotFound}, &bytes.Buffer{})
	stats, err := c.InspectQueue()
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: "default"}, stats)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	c := NewJobsCLI(nil, nil, &bytes.Buffer{})
	assert.Error(t, c.Run(context.Background(), nil))
	assert.Error(t, c.Run(context.Background(), []string{"purge"}))
	assert.Error(t, c.Run(context.Background(), []string{"refresh"}))
}
