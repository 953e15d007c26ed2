// Package cli holds operator commands bundled with the console binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hibiken/asynq"

	"github.com/stockroom/console/jobs"
)

// Enqueuer submits refresh tasks.
type Enqueuer interface {
	EnqueueMasterDataRefresh(ctx context.Context, payload jobs.MasterDataRefreshPayload) (*asynq.TaskInfo, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    Enqueuer
	inspector jobs.QueueInspector
	out       io.Writer
}

// NewJobsCLI builds the helpers over an enqueuer and queue inspector.
func NewJobsCLI(client Enqueuer, inspector jobs.QueueInspector, out io.Writer) *JobsCLI {
	return &JobsCLI{client: client, inspector: inspector, out: out}
}

// Run executes one command: "refresh [kind...]" or "stats".
func (c *JobsCLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("jobs cli: expected refresh or stats")
	}
	switch args[0] {
	case "refresh":
		return c.refresh(ctx, args[1:])
	case "stats":
		return c.stats()
	default:
		return fmt.Errorf("jobs cli: unknown command %q", args[0])
	}
}

func (c *JobsCLI) refresh(ctx context.Context, kinds []string) error {
	if c.client == nil {
		return errors.New("jobs cli: client not configured")
	}
	info, err := c.client.EnqueueMasterDataRefresh(ctx, jobs.MasterDataRefreshPayload{Kinds: kinds, Reason: "manual"})
	if err != nil {
		return err
	}
	if info == nil {
		_, err = fmt.Fprintln(c.out, "refresh already queued")
		return err
	}
	_, err = fmt.Fprintf(c.out, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return err
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return stats, nil
	}
	if err != nil {
		return QueueStats{}, err
	}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

func (c *JobsCLI) stats() error {
	s, err := c.InspectQueue()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
	return err
}
