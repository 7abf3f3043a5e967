package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey represents an issued partner API key
type ApiKey struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	CompanyName  string     `json:"companyName" gorm:"type:varchar(100);not null"`
	KeyHash      string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	SecretMasked string     `json:"secretMasked" gorm:"type:varchar(20);not null"`
	Revoked      bool       `json:"revoked" gorm:"default:false"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
	QuotaPerDay  int        `json:"quotaPerDay" gorm:"not null"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Active reports whether the key can still authenticate requests at the
// given instant. A key past its expiry is treated as revoked for all
// purposes, but the Revoked flag itself stays untouched so the record
// remains inspectable.
func (k *ApiKey) Active(now time.Time) bool {
	if k.Revoked {
		return false
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}

// DailyUsage holds one calendar day's counters for a key. Days are ISO
// dates in UTC; historical days are never written after the day rolls over.
type DailyUsage struct {
	Day            string    `json:"day"`
	Count          int       `json:"count"`
	FirstRequestAt time.Time `json:"firstRequestAt"`
	LastRequestAt  time.Time `json:"lastRequestAt"`
}

// DailyUsageReport is a day's usage as reported to admins. Overage is
// computed against the key's current quota, not the quota in effect when
// the requests were made.
type DailyUsageReport struct {
	Day     string `json:"day"`
	Count   int    `json:"count"`
	Overage int    `json:"overage"`
}

type CreateApiKeyInput struct {
	CompanyName string     `json:"companyName" binding:"required"`
	QuotaPerDay int        `json:"quotaPerDay"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// CreateApiKeyResponse carries the raw secret. It is returned exactly once,
// on creation; the registry only retains the hash.
type CreateApiKeyResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyName string     `json:"companyName"`
	ApiKey      string     `json:"apiKey"`
	QuotaPerDay int        `json:"quotaPerDay"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type UpdateQuotaInput struct {
	QuotaPerDay int `json:"quotaPerDay" binding:"required"`
}

type UpdateExpiryInput struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}
