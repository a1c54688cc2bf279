package model

import "time"

// RateLimitRecord is one row of rate_limits: daily usage for a subject.
type RateLimitRecord struct {
	Identifier string
	IsGuest    bool
	Count      int
	LastReset  time.Time
}

// Subject returns the subject the record belongs to.
func (r RateLimitRecord) Subject() Subject {
	if r.IsGuest {
		return GuestSubject(r.Identifier)
	}
	return UserSubject(r.Identifier)
}
