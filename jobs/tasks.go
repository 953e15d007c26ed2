package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMasterDataRefresh refetches cached reference lists.
	TaskMasterDataRefresh = "masterdata:refresh"
)

// MasterDataRefreshPayload selects the lists to refresh. An empty Kinds
// refreshes categories, brands and suppliers together.
type MasterDataRefreshPayload struct {
	Kinds  []string `json:"kinds,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// NewMasterDataRefreshTask builds a refresh task. Duplicate refreshes
// enqueued within a minute collapse into one.
func NewMasterDataRefreshTask(payload MasterDataRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMasterDataRefresh, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(time.Minute),
	), nil
}
