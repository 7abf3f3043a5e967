package usecases

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/repositories"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/metrics"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/redis"
)

const keyPrefix = "ps_live_"

var apiKeyRandRead = rand.Read

// KeyLookupCache is the optional Redis-backed cache in front of key-hash
// lookups. The usecase works without one (cache == nil).
type KeyLookupCache interface {
	Lookup(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	Store(ctx context.Context, key *entities.ApiKey) error
	Invalidate(ctx context.Context, keyHash string) error
}

var _ KeyLookupCache = (*redis.KeyCache)(nil)

// ApiKeyUsecase is the registry of issued keys (admin surface) and the
// access-guard evaluation used on the request path.
type ApiKeyUsecase struct {
	apiKeyRepo   repositories.ApiKeyRepository
	ledger       *QuotaLedger
	cache        KeyLookupCache
	defaultQuota int
}

// NewApiKeyUsecase creates the key registry usecase. cache may be nil when
// Redis is unavailable.
func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	ledger *QuotaLedger,
	cache KeyLookupCache,
	defaultQuota int,
) *ApiKeyUsecase {
	if defaultQuota <= 0 {
		defaultQuota = 50
	}
	return &ApiKeyUsecase{
		apiKeyRepo:   apiKeyRepo,
		ledger:       ledger,
		cache:        cache,
		defaultQuota: defaultQuota,
	}
}

// CreateApiKey mints a new key. The raw secret appears only in the returned
// response; the registry keeps its SHA256 and a masked tail. There is no
// regenerate-in-place: a lost secret means revoke and recreate.
func (u *ApiKeyUsecase) CreateApiKey(ctx context.Context, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, domainerrors.BadRequest("company name is required")
	}

	quota := input.QuotaPerDay
	if quota == 0 {
		quota = u.defaultQuota
	}
	if quota < 0 {
		return nil, domainerrors.BadRequest("quotaPerDay must be positive")
	}

	rawSecret, err := generateSecret()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	entity := &entities.ApiKey{
		CompanyName:  companyName,
		KeyHash:      sha256Hex(rawSecret),
		SecretMasked: "****" + rawSecret[len(rawSecret)-4:],
		QuotaPerDay:  quota,
		ExpiresAt:    input.ExpiresAt,
	}

	if err := u.apiKeyRepo.Create(ctx, entity); err != nil {
		return nil, err
	}
	metrics.ActiveApiKeys.Inc()

	return &entities.CreateApiKeyResponse{
		ID:          entity.ID,
		CompanyName: entity.CompanyName,
		ApiKey:      rawSecret, // Shown once
		QuotaPerDay: entity.QuotaPerDay,
		ExpiresAt:   entity.ExpiresAt,
		CreatedAt:   entity.CreatedAt,
	}, nil
}

// ListApiKeys returns all key records ordered by creation. Secrets are
// never included; records only carry the masked tail.
func (u *ApiKeyUsecase) ListApiKeys(ctx context.Context) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.List(ctx)
}

// RevokeApiKey marks a key revoked. Revocation is monotonic and terminal;
// the record is retained for audit.
func (u *ApiKeyUsecase) RevokeApiKey(ctx context.Context, id uuid.UUID) error {
	key, err := u.apiKeyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("api key not found")
		}
		return err
	}
	if key.Revoked {
		return nil
	}

	now := time.Now().UTC()
	key.Revoked = true
	key.RevokedAt = &now
	if err := u.apiKeyRepo.Update(ctx, key); err != nil {
		return err
	}
	metrics.ActiveApiKeys.Dec()

	u.invalidate(ctx, key.KeyHash)
	return nil
}

// SetQuota changes a key's daily quota, effective from the next counted
// request. Historical counters are untouched.
func (u *ApiKeyUsecase) SetQuota(ctx context.Context, id uuid.UUID, newQuota int) error {
	if newQuota <= 0 {
		return domainerrors.BadRequest("quotaPerDay must be positive")
	}

	key, err := u.apiKeyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("api key not found")
		}
		return err
	}

	key.QuotaPerDay = newQuota
	if err := u.apiKeyRepo.Update(ctx, key); err != nil {
		return err
	}

	u.invalidate(ctx, key.KeyHash)
	return nil
}

// SetExpiry changes or clears a key's expiry timestamp
func (u *ApiKeyUsecase) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time) error {
	key, err := u.apiKeyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("api key not found")
		}
		return err
	}

	key.ExpiresAt = expiresAt
	if err := u.apiKeyRepo.Update(ctx, key); err != nil {
		return err
	}

	u.invalidate(ctx, key.KeyHash)
	return nil
}

// UsageReport returns the per-day usage/overage report for a key
func (u *ApiKeyUsecase) UsageReport(ctx context.Context, id uuid.UUID) ([]*entities.DailyUsageReport, error) {
	report, err := u.ledger.UsageReport(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("api key not found")
		}
		return nil, err
	}
	return report, nil
}

// Authorize is the access-guard evaluation for one inbound request. The
// checks run cheapest-first and short-circuit: credential present, known,
// not revoked, not expired, then the atomic quota check-and-increment.
// The returned record is non-nil whenever the credential resolved to a
// known key, including on rejection, so callers can attribute the outcome.
func (u *ApiKeyUsecase) Authorize(ctx context.Context, rawKey string, now time.Time) (*entities.ApiKey, error) {
	if strings.TrimSpace(rawKey) == "" {
		return nil, domainerrors.Unauthorized("missing API key")
	}

	keyHash := sha256Hex(rawKey)

	key, err := u.lookup(ctx, keyHash)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid API key")
		}
		return nil, err
	}

	if key.Revoked {
		return key, domainerrors.Unauthorized("API key has been revoked")
	}
	if key.ExpiresAt != nil && now.After(*key.ExpiresAt) {
		// Treated as revoked for all purposes; the record itself is
		// left untouched so it stays inspectable.
		return key, domainerrors.Expired("API key has expired")
	}

	if err := u.ledger.CheckAndIncrement(ctx, key, now); err != nil {
		if errors.Is(err, domainerrors.ErrQuotaExceeded) {
			return key, domainerrors.QuotaExceeded("API quota exceeded for today")
		}
		return key, err
	}

	// Best effort; an accepted request never fails on the stamp.
	_ = u.apiKeyRepo.TouchLastUsed(ctx, key.ID)
	metrics.ApiKeyUsage.WithLabelValues(key.CompanyName).Inc()

	return key, nil
}

func (u *ApiKeyUsecase) lookup(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	if u.cache != nil {
		if cached, err := u.cache.Lookup(ctx, keyHash); err == nil && cached != nil {
			return cached, nil
		}
	}

	key, err := u.apiKeyRepo.FindByKeyHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		_ = u.cache.Store(ctx, key)
	}
	return key, nil
}

func (u *ApiKeyUsecase) invalidate(ctx context.Context, keyHash string) {
	if u.cache != nil {
		_ = u.cache.Invalidate(ctx, keyHash)
	}
}

// Helpers

func generateSecret() (string, error) {
	bytes := make([]byte, 24)
	if _, err := apiKeyRandRead(bytes); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(bytes), nil
}

func sha256Hex(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
