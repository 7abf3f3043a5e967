package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/config"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/repositories"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/usecases"
)

var openAdminAPIKeyDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type adminAPIKeyRuntime interface {
	CreateApiKey(ctx context.Context, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error)
}

type adminAPIKeyDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminAPIKeyDeps() adminAPIKeyDeps {
	return adminAPIKeyDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error) {
			db, err := openAdminAPIKeyDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAdminSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			apiKeyRepo := repositories.NewApiKeyRepository(db)
			ledger := usecases.NewQuotaLedger(apiKeyRepo)
			return usecases.NewApiKeyUsecase(apiKeyRepo, ledger, nil, cfg.Quota.DefaultPerDay), sqlDB, nil
		},
		now: time.Now,
		out: os.Stdout,
	}
}

func parseExpiry(value string, now time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		t := now.Add(d).UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("--expires must be a duration (720h), a date (2026-12-31) or RFC3339: %w", err)
	}
	t = t.UTC()
	return &t, nil
}

func runAdminAPIKey(args []string, deps adminAPIKeyDeps) error {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.prepare == nil {
		def := defaultAdminAPIKeyDeps()
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("admin-apikey", flag.ContinueOnError)
	companyFlag := fs.String("company", "", "partner company name (required)")
	quotaFlag := fs.Int("quota", 0, "daily request quota (defaults to the configured value)")
	expiresFlag := fs.String("expires", "", "expiry as duration, date or RFC3339 (optional, never expires when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *companyFlag == "" {
		return fmt.Errorf("--company is required")
	}

	expiresAt, err := parseExpiry(*expiresFlag, deps.now())
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	resp, err := runtime.CreateApiKey(context.Background(), &entities.CreateApiKeyInput{
		CompanyName: *companyFlag,
		QuotaPerDay: *quotaFlag,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed creating api key: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created partner API key and stored in DB")
	_, _ = fmt.Fprintf(deps.out, "api_key_id=%s\n", resp.ID.String())
	_, _ = fmt.Fprintf(deps.out, "company=%s\n", resp.CompanyName)
	_, _ = fmt.Fprintf(deps.out, "quota_per_day=%d\n", resp.QuotaPerDay)
	if resp.ExpiresAt != nil {
		_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", resp.ExpiresAt.Format(time.RFC3339))
	}
	// Shown once. The registry only keeps the hash.
	_, _ = fmt.Fprintf(deps.out, "API_KEY=%s\n", resp.ApiKey)
	return nil
}

func main() {
	if err := runAdminAPIKey(os.Args[1:], defaultAdminAPIKeyDeps()); err != nil {
		log.Fatal(err)
	}
}
