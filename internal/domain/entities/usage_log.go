package entities

import (
	"time"

	"github.com/google/uuid"
)

// UsageLog is an append-only record of a guard decision on an inbound
// request, kept for audit.
type UsageLog struct {
	ID         uuid.UUID  `json:"id"`
	ApiKeyID   *uuid.UUID `json:"apiKeyId,omitempty"`
	Company    string     `json:"company,omitempty"`
	Endpoint   string     `json:"endpoint"`
	StatusCode int        `json:"statusCode"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// UsageStats aggregates usage logs for the admin dashboard.
type UsageStats struct {
	TotalRequests int64            `json:"totalRequests"`
	TodayRequests int64            `json:"todayRequests"`
	ByCompany     map[string]int64 `json:"byCompany"`
	ByEndpoint    map[string]int64 `json:"byEndpoint"`
}
