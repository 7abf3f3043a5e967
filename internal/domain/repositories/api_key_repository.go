package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
)

// ApiKeyRepository is the persistence surface for issued keys and their
// per-day counters. IncrementDailyUsage must be atomic for a given
// (key, day) pair; callers serialize per key on top of it.
type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	List(ctx context.Context) ([]*entities.ApiKey, error)
	Update(ctx context.Context, apiKey *entities.ApiKey) error
	TouchLastUsed(ctx context.Context, id uuid.UUID) error

	IncrementDailyUsage(ctx context.Context, id uuid.UUID, day string) error
	GetDailyUsage(ctx context.Context, id uuid.UUID, day string) (*entities.DailyUsage, error)
	ListDailyUsage(ctx context.Context, id uuid.UUID) ([]*entities.DailyUsage, error)
}
