package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom/console/internal/masterdata"
)

// Refresher is the part of masterdata.Store the job drives.
type Refresher interface {
	RefreshAll(ctx context.Context) error
	Refresh(ctx context.Context, kind masterdata.Kind, scope string) error
}

// JobObserver records job outcomes, typically observability.Metrics.
type JobObserver interface {
	ObserveJob(task string, err error)
}

// MasterDataRefreshJob repopulates the shared reference-data store so console
// replicas start warm.
type MasterDataRefreshJob struct {
	Store   Refresher
	Logger  *slog.Logger
	Metrics JobObserver
}

// NewMasterDataRefreshJob wires dependencies for the refresh handler.
func NewMasterDataRefreshJob(store Refresher, logger *slog.Logger, metrics JobObserver) *MasterDataRefreshJob {
	return &MasterDataRefreshJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskMasterDataRefresh tasks.
func (j *MasterDataRefreshJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Store == nil {
		return errors.New("masterdata refresh: handler not configured")
	}
	var payload MasterDataRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("masterdata refresh: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	kinds, err := parseKinds(payload.Kinds)
	if err != nil {
		return fmt.Errorf("masterdata refresh: %v: %w", err, asynq.SkipRetry)
	}

	defer func() {
		if j.Metrics != nil {
			j.Metrics.ObserveJob(TaskMasterDataRefresh, resultErr)
		}
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()
	if len(kinds) == 0 {
		if err := j.Store.RefreshAll(ctx); err != nil {
			logger.Error("refresh master data", slog.Any("error", err))
			return err
		}
		logger.Info("refreshed master data", slog.Duration("duration", time.Since(start)))
		return nil
	}
	for _, kind := range kinds {
		if err := j.Store.Refresh(ctx, kind, ""); err != nil {
			logger.Error("refresh master data", slog.String("kind", string(kind)), slog.Any("error", err))
			return err
		}
	}
	logger.Info("refreshed master data", slog.Int("kinds", len(kinds)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *MasterDataRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// parseKinds accepts the unscoped list kinds. Subcategories are scoped per
// category and refresh on demand only.
func parseKinds(raw []string) ([]masterdata.Kind, error) {
	kinds := make([]masterdata.Kind, 0, len(raw))
	for _, k := range raw {
		switch kind := masterdata.Kind(k); kind {
		case masterdata.KindCategories, masterdata.KindBrands, masterdata.KindSuppliers, masterdata.KindUOMs:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown kind %q", k)
		}
	}
	return kinds, nil
}
