package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"shopcompare/backend/internal/db"
	"shopcompare/backend/internal/model"
	"shopcompare/backend/pkg/snowflake"
)

// DateTimeLayout matches the text stored in rate_limits.last_reset.
const DateTimeLayout = "2006-01-02 15:04:05"

// snowflakeOnce initializes the id generator once across parallel tests.
var snowflakeOnce sync.Once

// NewTestDB opens a private in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	snowflakeOnce.Do(func() {
		if err := snowflake.Init(0); err != nil {
			// t.Fatalf is not usable inside sync.Once
			panic("failed to initialize snowflake: " + err.Error())
		}
	})

	// unique name per test so shared-cache databases never collide
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=busy_timeout(10000)", name, time.Now().UnixNano())
	raw, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers,
	// same as the production SQLite pool.
	raw.SetMaxOpenConns(1)
	database := sqlx.NewDb(raw, "sqlite")

	if err := db.Migrate(database); err != nil {
		database.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SeedRateLimit inserts a rate_limits row as-is.
func SeedRateLimit(t *testing.T, database *sqlx.DB, rec model.RateLimitRecord) {
	t.Helper()

	_, err := database.ExecContext(
		context.Background(),
		`INSERT INTO rate_limits (identifier, is_guest, count, last_reset) VALUES (?, ?, ?, ?)`,
		rec.Identifier, boolToInt(rec.IsGuest), rec.Count, rec.LastReset.Format(DateTimeLayout),
	)
	if err != nil {
		t.Fatalf("failed to seed rate limit: %v", err)
	}
}

// RateLimitCount reads the stored counter, failing the test if the row is missing.
func RateLimitCount(t *testing.T, database *sqlx.DB, identifier string, isGuest bool) int {
	t.Helper()

	var count int
	err := database.QueryRowContext(
		context.Background(),
		`SELECT count FROM rate_limits WHERE identifier = ? AND is_guest = ?`,
		identifier, boolToInt(isGuest),
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to read rate limit: %v", err)
	}
	return count
}

// RateLimitRows counts rows for an identifier across both classes.
func RateLimitRows(t *testing.T, database *sqlx.DB, identifier string) int {
	t.Helper()

	var n int
	if err := database.GetContext(context.Background(), &n,
		`SELECT COUNT(*) FROM rate_limits WHERE identifier = ?`, identifier); err != nil {
		t.Fatalf("failed to count rate limits: %v", err)
	}
	return n
}

// SeedUser inserts a user and returns its id.
func SeedUser(t *testing.T, database *sqlx.DB, user model.User) int64 {
	t.Helper()

	if user.ID == 0 {
		user.ID = snowflake.NextID()
	}
	if user.HashedPassword == "" {
		user.HashedPassword = "x"
	}
	now := time.Now().UTC().Format(DateTimeLayout)

	var fullName interface{}
	if user.FullName != nil {
		fullName = *user.FullName
	}

	_, err := database.ExecContext(
		context.Background(),
		`INSERT INTO users (id, email, username, hashed_password, full_name, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.HashedPassword, fullName, 1, now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}
