package usecases_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
)

// Mock ApiKeyRepository
type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) List(ctx context.Context) ([]*entities.ApiKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) Update(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockApiKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockApiKeyRepository) IncrementDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	args := m.Called(ctx, id, day)
	return args.Error(0)
}

func (m *MockApiKeyRepository) GetDailyUsage(ctx context.Context, id uuid.UUID, day string) (*entities.DailyUsage, error) {
	args := m.Called(ctx, id, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyUsage), args.Error(1)
}

func (m *MockApiKeyRepository) ListDailyUsage(ctx context.Context, id uuid.UUID) ([]*entities.DailyUsage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DailyUsage), args.Error(1)
}

// fakeUsageRepo is a hand-rolled in-memory repository for the concurrency
// tests, where a testify mock cannot model the evolving counter state.
type fakeUsageRepo struct {
	MockApiKeyRepository
	mu     sync.Mutex
	counts map[string]int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[string]int)}
}

func (f *fakeUsageRepo) IncrementDailyUsage(_ context.Context, id uuid.UUID, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[id.String()+"/"+day]++
	return nil
}

func (f *fakeUsageRepo) GetDailyUsage(_ context.Context, id uuid.UUID, day string) (*entities.DailyUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count, ok := f.counts[id.String()+"/"+day]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &entities.DailyUsage{Day: day, Count: count}, nil
}

func (f *fakeUsageRepo) count(id uuid.UUID, day string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id.String()+"/"+day]
}
