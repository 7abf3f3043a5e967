package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName  string    `gorm:"type:varchar(100);not null"`
	KeyHash      string    `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA256 of key
	SecretMasked string    `gorm:"type:varchar(20);not null"`             // "****abcd"
	Revoked      bool      `gorm:"default:false;not null"`
	RevokedAt    *time.Time
	QuotaPerDay  int `gorm:"not null"`
	ExpiresAt    *time.Time
	LastUsedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ApiKey) TableName() string {
	return "api_keys"
}
