package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"shopcompare/backend/internal/config"
	"shopcompare/backend/pkg/logger"
)

// Open opens the configured database, verifies it answers, and applies migrations.
// The returned pool is owned by the caller.
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	var (
		database *sqlx.DB
		err      error
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		database, err = openMySQL(cfg)
	case config.DriverSQLite, "":
		database, err = OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	logger.Info("database ready", "module", "db", "action", "open", "resource", "database", "result", "ok", "driver", database.DriverName())
	return database, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file without migrating it.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite", BuildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite has a single writer; one connection serialises access instead of
	// surfacing "database is locked" under concurrent requests.
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	database.SetConnMaxLifetime(0)

	return sqlx.NewDb(database, config.DriverSQLite), nil
}

// BuildDSN returns the modernc.org/sqlite DSN for a database file.
func BuildDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(10000)", path)
}

// BuildMySQLDSN returns the go-sql-driver DSN for cfg. DATETIME columns are
// returned as text; the repositories parse them.
func BuildMySQLDSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.ConnTimeout
	mc.ReadTimeout = cfg.QueryTimeout
	mc.WriteTimeout = cfg.QueryTimeout
	mc.ParseTime = false
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func openMySQL(cfg config.DBConfig) (*sqlx.DB, error) {
	database, err := sqlx.Open(config.DriverMySQL, BuildMySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	database.SetConnMaxLifetime(30 * time.Minute)
	database.SetConnMaxIdleTime(5 * time.Minute)
	return database, nil
}
