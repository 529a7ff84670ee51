package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pagepulse/internal"
	"pagepulse/internal/analytics"
	"pagepulse/internal/config"
	"pagepulse/internal/database"
	"pagepulse/internal/pages"
	"pagepulse/internal/timeframe"
)

// testDBCache caches test databases by root test name so that subtests share one
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// FixedTimeProvider implements timeframe.TimeProvider with a constant clock
type FixedTimeProvider struct {
	CurrentTime time.Time
}

// Now returns the fixed time in loc
func (p *FixedTimeProvider) Now(loc *time.Location) time.Time {
	return p.CurrentTime.In(loc)
}

var _ timeframe.TimeProvider = (*FixedTimeProvider)(nil)

// SetupTestDB creates an in-memory database with all models migrated.
// Uses a named in-memory database with cache=shared so that the concurrent period
// fetches see the same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
		}
		return nil
	})
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// TestConfig returns a test-environment config that does not touch the environment.
func TestConfig() *config.Config {
	return &config.Config{
		AppName:             "pagepulse",
		AppPort:             "0",
		Environment:         config.Test,
		LogLevel:            config.LogLevelError,
		PublicBaseURL:       "https://pages.example.com",
		Timezone:            "UTC",
		DefaultSpanDays:     timeframe.DefaultSpan,
		FetchTimeoutSeconds: 5,
		DatabaseType:        config.SQLiteDatabase,
	}
}

// Day returns midnight UTC of the given date
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateTestPage creates a published page in the database
func CreateTestPage(t *testing.T, db *gorm.DB, slug string) pages.PublishedPage {
	t.Helper()
	page, err := pages.FindOrCreatePage(db, slug, "Test page "+slug)
	require.NoError(t, err)
	return *page
}

// CreateDailyRecord stores a record, filling in the slug and timestamps
func CreateDailyRecord(t *testing.T, db *gorm.DB, slug string, record analytics.DailyRecord) analytics.DailyRecord {
	t.Helper()
	record.Slug = slug
	record.Date = timeframe.Day(record.Date)
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.Date.Add(23 * time.Hour)
	}
	require.NoError(t, db.Create(&record).Error)
	return record
}

// Float returns a pointer to v, for the nullable record fields
func Float(v float64) *float64 {
	return &v
}

// CreateTestApplication builds the application against db with a clock fixed at now
func CreateTestApplication(t *testing.T, db *gorm.DB, cfg *config.Config, now time.Time) *internal.Application {
	t.Helper()

	if cfg == nil {
		cfg = TestConfig()
	}

	app, err := internal.NewAppWithConnection(cfg, db, GetLogger(), &FixedTimeProvider{CurrentTime: now})
	require.NoError(t, err)

	return app
}

// CreateTestApp builds the full Fiber app against db with a clock fixed at now
func CreateTestApp(t *testing.T, db *gorm.DB, cfg *config.Config, now time.Time) *fiber.App {
	t.Helper()
	return CreateTestApplication(t, db, cfg, now).Fiber()
}
