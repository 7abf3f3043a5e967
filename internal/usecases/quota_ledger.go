package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/repositories"
)

// QuotaLedger enforces per-key daily quotas with an atomic check-and-
// increment. Counters are serialized per key: two concurrent requests
// against a key at its last remaining quota slot see exactly one accept.
// Different keys never share a lock.
type QuotaLedger struct {
	repo repositories.ApiKeyRepository

	mu     sync.Mutex
	shards map[uuid.UUID]*keyShard
}

// keyShard is one key's in-memory counter for the current day. The repo
// row is the durable record; the shard holds today's count so the quota
// comparison and the increment happen under one per-key lock.
type keyShard struct {
	mu    sync.Mutex
	day   string
	count int
}

// NewQuotaLedger creates a ledger over the given key repository
func NewQuotaLedger(repo repositories.ApiKeyRepository) *QuotaLedger {
	return &QuotaLedger{
		repo:   repo,
		shards: make(map[uuid.UUID]*keyShard),
	}
}

// Day formats an instant as the ledger's calendar day (ISO date, UTC).
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (l *QuotaLedger) shard(id uuid.UUID) *keyShard {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.shards[id]
	if !ok {
		s = &keyShard{}
		l.shards[id] = s
	}
	return s
}

// CheckAndIncrement counts one request against the key's quota for the
// given instant. Returns nil when the request is accepted and
// ErrQuotaExceeded when the day's quota is already spent. The day's
// counter row is created lazily on first use; past days are never touched.
func (l *QuotaLedger) CheckAndIncrement(ctx context.Context, key *entities.ApiKey, now time.Time) error {
	day := Day(now)
	s := l.shard(key.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day != day {
		// Day rollover (or first touch since startup): seed from storage.
		usage, err := l.repo.GetDailyUsage(ctx, key.ID, day)
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			s.count = 0
		case err != nil:
			return err
		default:
			s.count = usage.Count
		}
		s.day = day
	}

	if s.count >= key.QuotaPerDay {
		return domainerrors.ErrQuotaExceeded
	}

	if err := l.repo.IncrementDailyUsage(ctx, key.ID, day); err != nil {
		return err
	}
	s.count++
	return nil
}

// UsageReport returns every recorded day for a key with its overage.
// Overage is computed against the key's quota at report time, not the
// quota in effect when the requests were made, so lowering a quota raises
// the reported overage of past days.
func (l *QuotaLedger) UsageReport(ctx context.Context, keyID uuid.UUID) ([]*entities.DailyUsageReport, error) {
	key, err := l.repo.FindByID(ctx, keyID)
	if err != nil {
		return nil, err
	}

	usage, err := l.repo.ListDailyUsage(ctx, keyID)
	if err != nil {
		return nil, err
	}

	report := make([]*entities.DailyUsageReport, 0, len(usage))
	for _, u := range usage {
		overage := u.Count - key.QuotaPerDay
		if overage < 0 {
			overage = 0
		}
		report = append(report, &entities.DailyUsageReport{
			Day:     u.Day,
			Count:   u.Count,
			Overage: overage,
		})
	}
	return report, nil
}
