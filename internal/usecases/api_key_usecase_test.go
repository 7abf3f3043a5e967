package usecases_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/usecases"
)

func sha256Hex(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func newTestUsecase(repo *MockApiKeyRepository) *usecases.ApiKeyUsecase {
	return usecases.NewApiKeyUsecase(repo, usecases.NewQuotaLedger(repo), nil, 50)
}

func TestApiKeyUsecase_CreateApiKey(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	resp, err := uc.CreateApiKey(ctx, &entities.CreateApiKeyInput{
		CompanyName: "  AgriCo  ",
		QuotaPerDay: 100,
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "AgriCo", resp.CompanyName)
	assert.Equal(t, 100, resp.QuotaPerDay)
	assert.True(t, strings.HasPrefix(resp.ApiKey, "ps_live_"))
	assert.Len(t, resp.ApiKey, len("ps_live_")+48)

	created := repo.Calls[0].Arguments.Get(1).(*entities.ApiKey)
	assert.Equal(t, sha256Hex(resp.ApiKey), created.KeyHash)
	assert.Equal(t, "****"+resp.ApiKey[len(resp.ApiKey)-4:], created.SecretMasked)

	repo.AssertExpectations(t)
}

func TestApiKeyUsecase_CreateApiKey_DefaultQuota(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	resp, err := uc.CreateApiKey(ctx, &entities.CreateApiKeyInput{CompanyName: "AgriCo"})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.QuotaPerDay)
}

func TestApiKeyUsecase_CreateApiKey_Validation(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	_, err := uc.CreateApiKey(ctx, &entities.CreateApiKeyInput{CompanyName: "   "})
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonValidation, appErr.Reason)

	_, err = uc.CreateApiKey(ctx, &entities.CreateApiKeyInput{CompanyName: "AgriCo", QuotaPerDay: -5})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonValidation, appErr.Reason)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApiKeyUsecase_RevokeApiKey(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	key := &entities.ApiKey{ID: uuid.New(), CompanyName: "AgriCo", KeyHash: "abc", QuotaPerDay: 50}
	repo.On("FindByID", ctx, key.ID).Return(key, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	require.NoError(t, uc.RevokeApiKey(ctx, key.ID))

	updated := repo.Calls[1].Arguments.Get(1).(*entities.ApiKey)
	assert.True(t, updated.Revoked)
	require.NotNil(t, updated.RevokedAt)

	repo.AssertExpectations(t)
}

func TestApiKeyUsecase_RevokeApiKey_Idempotent(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	revokedAt := time.Now().UTC()
	key := &entities.ApiKey{ID: uuid.New(), Revoked: true, RevokedAt: &revokedAt}
	repo.On("FindByID", ctx, key.ID).Return(key, nil)

	require.NoError(t, uc.RevokeApiKey(ctx, key.ID))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestApiKeyUsecase_RevokeApiKey_NotFound(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, domainerrors.ErrNotFound)

	err := uc.RevokeApiKey(ctx, id)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonNotFound, appErr.Reason)
}

func TestApiKeyUsecase_SetQuota(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	key := &entities.ApiKey{ID: uuid.New(), CompanyName: "AgriCo", QuotaPerDay: 50}
	repo.On("FindByID", ctx, key.ID).Return(key, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	require.NoError(t, uc.SetQuota(ctx, key.ID, 200))

	updated := repo.Calls[1].Arguments.Get(1).(*entities.ApiKey)
	assert.Equal(t, 200, updated.QuotaPerDay)
}

func TestApiKeyUsecase_SetQuota_RejectsNonPositive(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)

	err := uc.SetQuota(context.Background(), uuid.New(), 0)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonValidation, appErr.Reason)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestApiKeyUsecase_SetExpiry(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	key := &entities.ApiKey{ID: uuid.New(), CompanyName: "AgriCo", QuotaPerDay: 50}
	repo.On("FindByID", ctx, key.ID).Return(key, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	expiry := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, uc.SetExpiry(ctx, key.ID, &expiry))

	updated := repo.Calls[1].Arguments.Get(1).(*entities.ApiKey)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, expiry, *updated.ExpiresAt)

	// Clearing the expiry is also allowed.
	repo2 := new(MockApiKeyRepository)
	uc2 := newTestUsecase(repo2)
	key2 := &entities.ApiKey{ID: uuid.New(), ExpiresAt: &expiry, QuotaPerDay: 50}
	repo2.On("FindByID", ctx, key2.ID).Return(key2, nil)
	repo2.On("Update", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	require.NoError(t, uc2.SetExpiry(ctx, key2.ID, nil))
	cleared := repo2.Calls[1].Arguments.Get(1).(*entities.ApiKey)
	assert.Nil(t, cleared.ExpiresAt)
}

func TestApiKeyUsecase_Authorize_Accepted(t *testing.T) {
	ledgerRepo := newFakeUsageRepo()
	repo := new(MockApiKeyRepository)
	uc := usecases.NewApiKeyUsecase(repo, usecases.NewQuotaLedger(ledgerRepo), nil, 50)

	ctx := context.Background()
	rawKey := "ps_live_" + strings.Repeat("ab", 24)
	key := &entities.ApiKey{
		ID:          uuid.New(),
		CompanyName: "AgriCo",
		KeyHash:     sha256Hex(rawKey),
		QuotaPerDay: 50,
	}

	repo.On("FindByKeyHash", ctx, key.KeyHash).Return(key, nil)
	repo.On("TouchLastUsed", ctx, key.ID).Return(nil)

	got, err := uc.Authorize(ctx, rawKey, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, key.ID, got.ID)
	assert.Equal(t, 1, ledgerRepo.count(key.ID, usecases.Day(time.Now().UTC())))

	repo.AssertExpectations(t)
}

func TestApiKeyUsecase_Authorize_MissingKey(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)

	_, err := uc.Authorize(context.Background(), "   ", time.Now())
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonUnauthorized, appErr.Reason)
	repo.AssertNotCalled(t, "FindByKeyHash", mock.Anything, mock.Anything)
}

func TestApiKeyUsecase_Authorize_UnknownKey(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	repo.On("FindByKeyHash", ctx, mock.AnythingOfType("string")).Return(nil, domainerrors.ErrNotFound)

	key, err := uc.Authorize(ctx, "ps_live_unknown", time.Now())
	assert.Nil(t, key)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonUnauthorized, appErr.Reason)
}

func TestApiKeyUsecase_Authorize_Revoked(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	rawKey := "ps_live_revoked"
	revokedAt := time.Now().UTC()
	key := &entities.ApiKey{
		ID:        uuid.New(),
		KeyHash:   sha256Hex(rawKey),
		Revoked:   true,
		RevokedAt: &revokedAt,
	}
	repo.On("FindByKeyHash", ctx, key.KeyHash).Return(key, nil)

	got, err := uc.Authorize(ctx, rawKey, time.Now().UTC())
	require.NotNil(t, got, "rejections for known keys still identify the key")

	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonUnauthorized, appErr.Reason)
	repo.AssertNotCalled(t, "TouchLastUsed", mock.Anything, mock.Anything)
}

func TestApiKeyUsecase_Authorize_Expired(t *testing.T) {
	repo := new(MockApiKeyRepository)
	uc := newTestUsecase(repo)
	ctx := context.Background()

	rawKey := "ps_live_expired"
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(-time.Minute)
	key := &entities.ApiKey{
		ID:        uuid.New(),
		KeyHash:   sha256Hex(rawKey),
		ExpiresAt: &expiry,
	}
	repo.On("FindByKeyHash", ctx, key.KeyHash).Return(key, nil)

	got, err := uc.Authorize(ctx, rawKey, now)
	require.NotNil(t, got)

	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonExpired, appErr.Reason)
	// Expiry rejects the request but does not flip the revocation flag.
	assert.False(t, got.Revoked)
}

func TestApiKeyUsecase_Authorize_QuotaExceeded(t *testing.T) {
	ledgerRepo := newFakeUsageRepo()
	repo := new(MockApiKeyRepository)
	uc := usecases.NewApiKeyUsecase(repo, usecases.NewQuotaLedger(ledgerRepo), nil, 50)

	ctx := context.Background()
	rawKey := "ps_live_quota"
	key := &entities.ApiKey{
		ID:          uuid.New(),
		CompanyName: "AgriCo",
		KeyHash:     sha256Hex(rawKey),
		QuotaPerDay: 1,
	}
	repo.On("FindByKeyHash", ctx, key.KeyHash).Return(key, nil)
	repo.On("TouchLastUsed", ctx, key.ID).Return(nil)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	_, err := uc.Authorize(ctx, rawKey, now)
	require.NoError(t, err)

	got, err := uc.Authorize(ctx, rawKey, now)
	require.NotNil(t, got)

	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ReasonQuotaExceeded, appErr.Reason)
	assert.True(t, errors.Is(err, domainerrors.ErrQuotaExceeded))
}
