package service

import (
	"errors"
	"fmt"
	"time"

	"shopcompare/backend/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid")
	ErrUnauthorized = errors.New("unauthorized")

	ErrUpstream            = errors.New("upstream request failed")
	ErrUpstreamUnavailable = errors.New("upstream temporarily unavailable")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrQuotaExceeded       = errors.New("quota exceeded")

	ErrProviderUnavailable = errors.New("comparison provider unavailable")
	ErrProviderAuth        = errors.New("comparison provider authentication failed")
	ErrProviderRateLimited = errors.New("comparison provider rate limit exceeded")
)

// QuotaExceededError is returned when a subject has used its daily allowance.
type QuotaExceededError struct {
	Class model.CallerClass
	Max   int
	// ResetAt is the start of the next counting window.
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	who := "Users"
	if e.Class == model.ClassGuest {
		who = "Guests"
	}
	return fmt.Sprintf("Rate limit exceeded. %s are limited to %d requests per day.", who, e.Max)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
