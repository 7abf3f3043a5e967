package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createApiKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		key_hash TEXT UNIQUE NOT NULL,
		secret_masked TEXT NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT 0,
		revoked_at DATETIME,
		quota_per_day INTEGER NOT NULL,
		expires_at DATETIME,
		last_used_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDailyUsageTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_key_daily_usages (
		id TEXT PRIMARY KEY,
		api_key_id TEXT NOT NULL,
		day TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		first_request_at DATETIME,
		last_request_at DATETIME,
		UNIQUE (api_key_id, day)
	);`)
}

func createUsageLogTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_usage_logs (
		id TEXT PRIMARY KEY,
		api_key_id TEXT,
		company TEXT,
		endpoint TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		reason TEXT,
		day TEXT NOT NULL,
		created_at DATETIME
	);`)
}
