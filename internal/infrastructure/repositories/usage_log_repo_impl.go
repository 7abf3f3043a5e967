package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/models"
)

// UsageLogRepository implements append-only request audit storage
type UsageLogRepository struct {
	db *gorm.DB
}

// NewUsageLogRepository creates a new usage log repository
func NewUsageLogRepository(db *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Append writes one audit record
func (r *UsageLogRepository) Append(ctx context.Context, log *entities.UsageLog) error {
	now := time.Now().UTC()
	m := models.UsageLog{
		ID:         uuid.New(),
		ApiKeyID:   log.ApiKeyID,
		Company:    log.Company,
		Endpoint:   log.Endpoint,
		StatusCode: log.StatusCode,
		Reason:     log.Reason,
		Day:        now.Format("2006-01-02"),
		CreatedAt:  now,
	}
	if !log.CreatedAt.IsZero() {
		m.CreatedAt = log.CreatedAt
		m.Day = log.CreatedAt.UTC().Format("2006-01-02")
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// Stats aggregates the audit log for the admin dashboard
func (r *UsageLogRepository) Stats(ctx context.Context, today string) (*entities.UsageStats, error) {
	stats := &entities.UsageStats{
		ByCompany:  map[string]int64{},
		ByEndpoint: map[string]int64{},
	}

	if err := r.db.WithContext(ctx).Model(&models.UsageLog{}).Count(&stats.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.UsageLog{}).Where("day = ?", today).
		Count(&stats.TodayRequests).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Total int64
	}

	var byCompany []bucket
	if err := r.db.WithContext(ctx).Model(&models.UsageLog{}).
		Select("company AS key, COUNT(*) AS total").
		Where("company <> ''").
		Group("company").Find(&byCompany).Error; err != nil {
		return nil, err
	}
	for _, b := range byCompany {
		stats.ByCompany[b.Key] = b.Total
	}

	var byEndpoint []bucket
	if err := r.db.WithContext(ctx).Model(&models.UsageLog{}).
		Select("endpoint AS key, COUNT(*) AS total").
		Group("endpoint").Find(&byEndpoint).Error; err != nil {
		return nil, err
	}
	for _, b := range byEndpoint {
		stats.ByEndpoint[b.Key] = b.Total
	}

	return stats, nil
}

// PurgeBefore deletes audit records older than the cutoff and reports how
// many rows were removed
func (r *UsageLogRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.UsageLog{})
	return result.RowsAffected, result.Error
}
