package models

import (
	"time"

	"github.com/google/uuid"
)

type UsageLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApiKeyID   *uuid.UUID `gorm:"type:uuid;index"`
	Company    string     `gorm:"type:varchar(100)"`
	Endpoint   string     `gorm:"type:varchar(200);not null"`
	StatusCode int        `gorm:"not null"`
	Reason     string     `gorm:"type:varchar(40)"`
	Day        string     `gorm:"type:varchar(10);not null;index"`
	CreatedAt  time.Time
}

func (UsageLog) TableName() string {
	return "api_usage_logs"
}
