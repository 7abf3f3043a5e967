package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/models"
)

// ApiKeyRepository implements api key data operations
type ApiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new api key repository
func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

// Create creates a new api key record
func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	if apiKey.ID == uuid.Nil {
		apiKey.ID = uuid.New()
	}
	apiKey.CreatedAt = time.Now().UTC()
	apiKey.UpdatedAt = apiKey.CreatedAt

	m := toModel(apiKey)
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByKeyHash gets a key by the SHA256 of its secret
func (r *ApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := r.db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// FindByID gets a key by ID
func (r *ApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// List returns all keys ordered by creation time
func (r *ApiKeyRepository) List(ctx context.Context) ([]*entities.ApiKey, error) {
	var ms []models.ApiKey
	if err := r.db.WithContext(ctx).Order("created_at").Find(&ms).Error; err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(ms))
	for _, m := range ms {
		model := m
		keys = append(keys, toEntity(&model))
	}
	return keys, nil
}

// Update persists mutable fields of a key record
func (r *ApiKeyRepository) Update(ctx context.Context, apiKey *entities.ApiKey) error {
	apiKey.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.ApiKey{}).Where("id = ?", apiKey.ID).Updates(map[string]interface{}{
		"company_name":  apiKey.CompanyName,
		"revoked":       apiKey.Revoked,
		"revoked_at":    apiKey.RevokedAt,
		"quota_per_day": apiKey.QuotaPerDay,
		"expires_at":    apiKey.ExpiresAt,
		"updated_at":    apiKey.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// TouchLastUsed stamps last_used_at on an accepted request
func (r *ApiKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.ApiKey{}).Where("id = ?", id).
		Update("last_used_at", now).Error
}

// IncrementDailyUsage adds one request to the (key, day) counter row,
// creating the row lazily on the day's first request.
func (r *ApiKeyRepository) IncrementDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	now := time.Now().UTC()
	row := models.ApiKeyDailyUsage{
		ID:             uuid.New(),
		ApiKeyID:       id,
		Day:            day,
		Count:          1,
		FirstRequestAt: now,
		LastRequestAt:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "api_key_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":           gorm.Expr("count + 1"),
			"last_request_at": now,
		}),
	}).Create(&row).Error
}

// GetDailyUsage returns the counter row for a single day, or ErrNotFound
// if the key has not been used that day.
func (r *ApiKeyRepository) GetDailyUsage(ctx context.Context, id uuid.UUID, day string) (*entities.DailyUsage, error) {
	var m models.ApiKeyDailyUsage
	if err := r.db.WithContext(ctx).Where("api_key_id = ? AND day = ?", id, day).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return usageToEntity(&m), nil
}

// ListDailyUsage returns all counter rows for a key ordered by day
func (r *ApiKeyRepository) ListDailyUsage(ctx context.Context, id uuid.UUID) ([]*entities.DailyUsage, error) {
	var ms []models.ApiKeyDailyUsage
	if err := r.db.WithContext(ctx).Where("api_key_id = ?", id).Order("day").Find(&ms).Error; err != nil {
		return nil, err
	}

	usage := make([]*entities.DailyUsage, 0, len(ms))
	for _, m := range ms {
		model := m
		usage = append(usage, usageToEntity(&model))
	}
	return usage, nil
}

func toModel(e *entities.ApiKey) *models.ApiKey {
	return &models.ApiKey{
		ID:           e.ID,
		CompanyName:  e.CompanyName,
		KeyHash:      e.KeyHash,
		SecretMasked: e.SecretMasked,
		Revoked:      e.Revoked,
		RevokedAt:    e.RevokedAt,
		QuotaPerDay:  e.QuotaPerDay,
		ExpiresAt:    e.ExpiresAt,
		LastUsedAt:   e.LastUsedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:           m.ID,
		CompanyName:  m.CompanyName,
		KeyHash:      m.KeyHash,
		SecretMasked: m.SecretMasked,
		Revoked:      m.Revoked,
		RevokedAt:    m.RevokedAt,
		QuotaPerDay:  m.QuotaPerDay,
		ExpiresAt:    m.ExpiresAt,
		LastUsedAt:   m.LastUsedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func usageToEntity(m *models.ApiKeyDailyUsage) *entities.DailyUsage {
	return &entities.DailyUsage{
		Day:            m.Day,
		Count:          m.Count,
		FirstRequestAt: m.FirstRequestAt,
		LastRequestAt:  m.LastRequestAt,
	}
}
