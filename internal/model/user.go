package model

import "time"

// User is a registered account.
type User struct {
	ID             int64
	Email          string
	Username       string
	HashedPassword string
	FullName       *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
