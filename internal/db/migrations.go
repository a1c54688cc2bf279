package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"shopcompare/backend/internal/config"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL UNIQUE,
  hashed_password TEXT NOT NULL,
  full_name TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rate_limits (
  id INTEGER PRIMARY KEY,
  identifier TEXT NOT NULL,
  is_guest INTEGER NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  last_reset TEXT NOT NULL,
  UNIQUE (identifier, is_guest)
);
`

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		username VARCHAR(255) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		full_name VARCHAR(255),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS rate_limits (
		id INT AUTO_INCREMENT PRIMARY KEY,
		identifier VARCHAR(255) NOT NULL,
		is_guest BOOLEAN NOT NULL,
		count INT NOT NULL DEFAULT 0,
		last_reset DATETIME NOT NULL,
		UNIQUE KEY uq_rate_limits_subject (identifier, is_guest)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// Migrate creates the schema for the pool's driver. Safe to run on every start.
func Migrate(db *sqlx.DB) error {
	switch db.DriverName() {
	case config.DriverMySQL:
		return migrateMySQL(db)
	default:
		if _, err := db.Exec(sqliteSchema); err != nil {
			return fmt.Errorf("migrate base schema: %w", err)
		}
		return nil
	}
}

func migrateMySQL(db *sqlx.DB) error {
	for i, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate base schema (statement %d): %w", i+1, err)
		}
	}

	// Tables created by the earlier deployment carry UNIQUE(identifier) only,
	// which lets a guest IP collide with a user id. Swap it for the pair key.
	legacy, err := hasIndex(db, "rate_limits", "unique_identifier")
	if err != nil {
		return fmt.Errorf("check unique_identifier index: %w", err)
	}
	if legacy {
		if _, err := db.Exec(`ALTER TABLE rate_limits DROP INDEX unique_identifier`); err != nil {
			return fmt.Errorf("drop unique_identifier index: %w", err)
		}
	}

	pair, err := hasIndex(db, "rate_limits", "uq_rate_limits_subject")
	if err != nil {
		return fmt.Errorf("check uq_rate_limits_subject index: %w", err)
	}
	if !pair {
		if _, err := db.Exec(`ALTER TABLE rate_limits ADD UNIQUE KEY uq_rate_limits_subject (identifier, is_guest)`); err != nil {
			return fmt.Errorf("add uq_rate_limits_subject index: %w", err)
		}
	}

	return nil
}

func hasIndex(db *sqlx.DB, table, index string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
	`, table, index).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
