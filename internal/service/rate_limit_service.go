//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"fmt"
	"time"

	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/repository"
	"shopcompare/backend/pkg/logger"
)

// maxCheckAttempts bounds how often Check re-reads after losing a race with
// a concurrent caller for the same subject.
const maxCheckAttempts = 3

// DefaultRetention keeps closed windows for a week before PruneStale removes them.
const DefaultRetention = 7 * 24 * time.Hour

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	Max       int
	Class     model.CallerClass
	// ResetAt is the start of the next counting window.
	ResetAt time.Time
}

// QuotaPolicy maps a caller class to its daily allowance.
type QuotaPolicy map[model.CallerClass]int

func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{
		model.ClassGuest: 5,
		model.ClassUser:  10,
	}
}

// Max returns the allowance for class; ok is false for classes without one.
func (p QuotaPolicy) Max(class model.CallerClass) (int, bool) {
	limit, ok := p[class]
	if !ok || limit <= 0 {
		return 0, false
	}
	return limit, true
}

// DecisionObserver is told about every Check outcome.
type DecisionObserver interface {
	ObserveDecision(class, outcome string)
}

type RateLimitService interface {
	// Check consumes one request from the subject's daily allowance.
	// It returns a *QuotaExceededError when the allowance is used up and
	// wraps ErrStorageUnavailable when the store cannot be reached.
	Check(ctx context.Context, subject model.Subject) (Decision, error)
	// Peek reports the remaining allowance without consuming it.
	Peek(ctx context.Context, subject model.Subject) (Decision, error)
	// PruneStale deletes counters whose window closed more than the retention
	// period ago and returns how many were removed.
	PruneStale(ctx context.Context) (int64, error)
}

type rateLimitService struct {
	repo      repository.RateLimitRepository
	policy    QuotaPolicy
	now       func() time.Time
	loc       *time.Location
	observer  DecisionObserver
	retention time.Duration
}

type RateLimitOption func(*rateLimitService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RateLimitOption {
	return func(s *rateLimitService) { s.now = now }
}

// WithLocation sets the time zone whose calendar days delimit windows.
func WithLocation(loc *time.Location) RateLimitOption {
	return func(s *rateLimitService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithDecisionObserver(o DecisionObserver) RateLimitOption {
	return func(s *rateLimitService) { s.observer = o }
}

// WithRetention sets how long a closed window is kept before PruneStale removes it.
func WithRetention(d time.Duration) RateLimitOption {
	return func(s *rateLimitService) {
		if d >= 0 {
			s.retention = d
		}
	}
}

func NewRateLimitService(repo repository.RateLimitRepository, policy QuotaPolicy, opts ...RateLimitOption) RateLimitService {
	if policy == nil {
		policy = DefaultQuotaPolicy()
	}
	s := &rateLimitService{
		repo:      repo,
		policy:    policy,
		now:       time.Now,
		loc:       time.Local,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rateLimitService) Check(ctx context.Context, subject model.Subject) (Decision, error) {
	limit, err := s.validate(subject)
	if err != nil {
		s.observe(subject, "invalid")
		return Decision{}, err
	}

	now := s.now().In(s.loc)
	dayStart := startOfDay(now)
	nextReset := dayStart.AddDate(0, 0, 1)
	allowed := func(remaining int) (Decision, error) {
		s.observe(subject, "allowed")
		logger.Debug("rate limit allowed", "module", "service", "action", "check", "resource", "rate_limit", "result", "ok", "subject", subject.String(), "remaining", remaining)
		return Decision{Allowed: true, Remaining: remaining, Max: limit, Class: subject.Class(), ResetAt: nextReset}, nil
	}

	for attempt := 0; attempt < maxCheckAttempts; attempt++ {
		count, ok, err := s.repo.IncrementInWindow(ctx, subject, limit, dayStart)
		if err != nil {
			return Decision{}, s.storageError(subject, "increment", err)
		}
		if ok {
			return allowed(limit - count)
		}

		reset, err := s.repo.ResetStale(ctx, subject, dayStart, now)
		if err != nil {
			return Decision{}, s.storageError(subject, "reset", err)
		}
		if reset {
			return allowed(limit - 1)
		}

		rec, err := s.repo.Get(ctx, subject)
		if err != nil {
			return Decision{}, s.storageError(subject, "get", err)
		}
		if rec == nil {
			insertErr := s.repo.Insert(ctx, subject, now)
			if insertErr == nil {
				return allowed(limit - 1)
			}
			// A concurrent caller may have created the row first. Anything else
			// is a storage failure.
			existing, err := s.repo.Get(ctx, subject)
			if err != nil {
				return Decision{}, s.storageError(subject, "get", err)
			}
			if existing == nil {
				return Decision{}, s.storageError(subject, "insert", insertErr)
			}
			continue
		}

		if !rec.LastReset.Before(dayStart) && rec.Count >= limit {
			s.observe(subject, "rejected")
			logger.Info("rate limit exceeded", "module", "service", "action", "check", "resource", "rate_limit", "result", "rejected", "subject", subject.String(), "limit", limit)
			return Decision{Allowed: false, Remaining: 0, Max: limit, Class: subject.Class(), ResetAt: nextReset},
				&QuotaExceededError{Class: subject.Class(), Max: limit, ResetAt: nextReset}
		}
		// The row changed between statements; try again.
	}

	return Decision{}, s.storageError(subject, "check", fmt.Errorf("gave up after %d attempts", maxCheckAttempts))
}

func (s *rateLimitService) Peek(ctx context.Context, subject model.Subject) (Decision, error) {
	limit, err := s.validate(subject)
	if err != nil {
		return Decision{}, err
	}

	now := s.now().In(s.loc)
	dayStart := startOfDay(now)
	decision := Decision{Allowed: true, Remaining: limit, Max: limit, Class: subject.Class(), ResetAt: dayStart.AddDate(0, 0, 1)}

	rec, err := s.repo.Get(ctx, subject)
	if err != nil {
		return Decision{}, s.storageError(subject, "peek", err)
	}
	if rec == nil || rec.LastReset.Before(dayStart) {
		return decision, nil
	}

	decision.Remaining = limit - rec.Count
	if decision.Remaining <= 0 {
		decision.Remaining = 0
		decision.Allowed = false
	}
	return decision, nil
}

func (s *rateLimitService) PruneStale(ctx context.Context) (int64, error) {
	cutoff := startOfDay(s.now().In(s.loc)).Add(-s.retention)
	removed, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		logger.Error("rate limit prune failed", "module", "service", "action", "prune", "resource", "rate_limit", "result", "failed", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	logger.Info("rate limit pruned", "module", "service", "action", "prune", "resource", "rate_limit", "result", "ok", "removed", removed, "cutoff", cutoff)
	return removed, nil
}

func (s *rateLimitService) validate(subject model.Subject) (int, error) {
	if !subject.Valid() {
		return 0, fmt.Errorf("%w: identifier is required", ErrInvalid)
	}
	limit, ok := s.policy.Max(subject.Class())
	if !ok {
		return 0, fmt.Errorf("%w: no quota for caller class %s", ErrInvalid, subject.Class())
	}
	return limit, nil
}

func (s *rateLimitService) storageError(subject model.Subject, step string, err error) error {
	s.observe(subject, "error")
	logger.Error("rate limit storage failed", "module", "service", "action", "check", "resource", "rate_limit", "result", "failed", "step", step, "subject", subject.String(), "error", err)
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (s *rateLimitService) observe(subject model.Subject, outcome string) {
	if s.observer != nil {
		s.observer.ObserveDecision(subject.Class().String(), outcome)
	}
}

// startOfDay returns local midnight of t's calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
