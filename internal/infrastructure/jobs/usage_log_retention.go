package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/logger"
)

// retentionStore is the slice of the usage log repository the job needs.
type retentionStore interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UsageLogRetentionJob periodically prunes audit records older than the
// retention window so the log table does not grow without bound.
type UsageLogRetentionJob struct {
	store     retentionStore
	retention time.Duration
	interval  time.Duration
	stop      chan struct{}
}

func NewUsageLogRetentionJob(store retentionStore, retention time.Duration) *UsageLogRetentionJob {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &UsageLogRetentionJob{
		store:     store,
		retention: retention,
		interval:  time.Hour,
		stop:      make(chan struct{}),
	}
}

func (j *UsageLogRetentionJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting usage log retention job",
		zap.Duration("retention", j.retention))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "usage log retention job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "usage log retention job stopped")
			return
		case <-ticker.C:
			j.purgeExpired(ctx)
		}
	}
}

func (j *UsageLogRetentionJob) Stop() {
	close(j.stop)
}

func (j *UsageLogRetentionJob) purgeExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.retention)

	removed, err := j.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "failed to purge usage logs", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Info(ctx, "purged usage logs",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff))
	}
}
