package repositories

import (
	"context"
	"time"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
)

// UsageLogRepository stores append-only request audit records.
type UsageLogRepository interface {
	Append(ctx context.Context, log *entities.UsageLog) error
	Stats(ctx context.Context, today string) (*entities.UsageStats, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
