//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shopcompare/backend/internal/model"
)

// RateLimitRepository stores daily usage counters keyed by (identifier, is_guest).
//
// Every mutating method is a single conditional statement, so concurrent callers
// cannot push a counter past the limit they pass in.
type RateLimitRepository interface {
	// Get returns the record for subject, or nil if none exists.
	Get(ctx context.Context, subject model.Subject) (*model.RateLimitRecord, error)
	// Insert creates the record with count=1. It fails if the record already exists.
	Insert(ctx context.Context, subject model.Subject, at time.Time) error
	// IncrementInWindow adds one to count if last_reset >= windowStart and
	// count < limit. It returns the new count and whether a row was updated.
	IncrementInWindow(ctx context.Context, subject model.Subject, limit int, windowStart time.Time) (int, bool, error)
	// ResetStale sets count=1, last_reset=at if last_reset < windowStart.
	ResetStale(ctx context.Context, subject model.Subject, windowStart, at time.Time) (bool, error)
	// DeleteBefore removes every record whose last_reset is earlier than cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type rateLimitRepository struct {
	db      *sqlx.DB
	loc     *time.Location
	timeout time.Duration
}

// NewRateLimitRepository creates a repository over an owned pool. Times are
// stored as wall-clock values in loc; timeout bounds each statement.
func NewRateLimitRepository(db *sqlx.DB, loc *time.Location, timeout time.Duration) RateLimitRepository {
	if loc == nil {
		loc = time.Local
	}
	return &rateLimitRepository{db: db, loc: loc, timeout: timeout}
}

func (r *rateLimitRepository) Get(ctx context.Context, subject model.Subject) (*model.RateLimitRecord, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		SELECT identifier, is_guest, count, last_reset FROM rate_limits
		WHERE identifier = ? AND is_guest = ?
	`), subject.Identifier(), subject.IsGuest())

	var rec model.RateLimitRecord
	var lastReset string
	if err := row.Scan(&rec.Identifier, &rec.IsGuest, &rec.Count, &lastReset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	parsed, err := parseDateTime(lastReset, r.loc)
	if err != nil {
		return nil, err
	}
	rec.LastReset = parsed
	return &rec, nil
}

func (r *rateLimitRepository) Insert(ctx context.Context, subject model.Subject, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO rate_limits (identifier, is_guest, count, last_reset)
		VALUES (?, ?, 1, ?)
	`), subject.Identifier(), subject.IsGuest(), formatDateTime(at, r.loc))
	return err
}

func (r *rateLimitRepository) IncrementInWindow(ctx context.Context, subject model.Subject, limit int, windowStart time.Time) (int, bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE rate_limits SET count = count + 1
		WHERE identifier = ? AND is_guest = ? AND count < ? AND last_reset >= ?
	`), subject.Identifier(), subject.IsGuest(), limit, formatDateTime(windowStart, r.loc))
	if err != nil {
		return 0, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}

	// Read back inside the tx: the row is write-locked until commit, so this is
	// the count our own increment produced.
	var count int
	if err := tx.QueryRowxContext(ctx, tx.Rebind(`
		SELECT count FROM rate_limits WHERE identifier = ? AND is_guest = ?
	`), subject.Identifier(), subject.IsGuest()).Scan(&count); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit tx: %w", err)
	}
	return count, true, nil
}

func (r *rateLimitRepository) ResetStale(ctx context.Context, subject model.Subject, windowStart, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE rate_limits SET count = 1, last_reset = ?
		WHERE identifier = ? AND is_guest = ? AND last_reset < ?
	`), formatDateTime(at, r.loc), subject.Identifier(), subject.IsGuest(), formatDateTime(windowStart, r.loc))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *rateLimitRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM rate_limits WHERE last_reset < ?
	`), formatDateTime(cutoff, r.loc))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
