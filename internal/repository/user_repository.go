//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"shopcompare/backend/internal/model"
	"shopcompare/backend/pkg/snowflake"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// FindByLogin matches the username exactly or the email case-insensitively.
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

type userRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewUserRepository(db *sqlx.DB, timeout time.Duration) UserRepository {
	return &userRepository{db: db, timeout: timeout}
}

type userRow struct {
	ID             int64          `db:"id"`
	Email          string         `db:"email"`
	Username       string         `db:"username"`
	HashedPassword string         `db:"hashed_password"`
	FullName       sql.NullString `db:"full_name"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

const userColumns = `id, email, username, hashed_password, full_name, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	if user.ID == 0 {
		user.ID = snowflake.NextID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), user.ID, user.Email, user.Username, user.HashedPassword, nullableString(user.FullName),
		user.IsActive, formatDateTime(now, time.UTC), formatDateTime(now, time.UTC))
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	login = strings.TrimSpace(login)
	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE username = ? OR email = ?
		LIMIT 1
	`), login, strings.ToLower(login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM users WHERE email = ? OR username = ?
	`), strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (row userRow) toModel() (*model.User, error) {
	createdAt, err := parseDateTime(row.CreatedAt, time.UTC)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseDateTime(row.UpdatedAt, time.UTC)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:             row.ID,
		Email:          row.Email,
		Username:       row.Username,
		HashedPassword: row.HashedPassword,
		IsActive:       row.IsActive,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	if row.FullName.Valid {
		name := row.FullName.String
		user.FullName = &name
	}
	return user, nil
}
