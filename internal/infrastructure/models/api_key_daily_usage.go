package models

import (
	"time"

	"github.com/google/uuid"
)

// ApiKeyDailyUsage is one calendar day's counter row for a key.
// Day is an ISO date (UTC). One row per (key, day).
type ApiKeyDailyUsage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApiKeyID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_key_day"`
	Day            string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_key_day"`
	Count          int       `gorm:"not null;default:0"`
	FirstRequestAt time.Time
	LastRequestAt  time.Time
}

func (ApiKeyDailyUsage) TableName() string {
	return "api_key_daily_usages"
}
