package model

import "strings"

// CallerClass partitions rate-limit subjects. Guests and users never share a counter.
type CallerClass int

const (
	ClassGuest CallerClass = iota
	ClassUser
)

func (c CallerClass) String() string {
	switch c {
	case ClassGuest:
		return "guest"
	case ClassUser:
		return "user"
	default:
		return "unknown"
	}
}

// Subject identifies who a quota is charged to: Guest(ip) or User(id).
// The zero value is invalid; build one with GuestSubject or UserSubject.
type Subject struct {
	class CallerClass
	id    string
}

// GuestSubject returns the subject for an unauthenticated caller identified by IP.
func GuestSubject(ip string) Subject {
	return Subject{class: ClassGuest, id: strings.TrimSpace(ip)}
}

// UserSubject returns the subject for an authenticated caller identified by user id.
func UserSubject(userID string) Subject {
	return Subject{class: ClassUser, id: strings.TrimSpace(userID)}
}

func (s Subject) Class() CallerClass { return s.class }

func (s Subject) Identifier() string { return s.id }

func (s Subject) IsGuest() bool { return s.class == ClassGuest }

// Valid reports whether the subject carries a non-empty identifier.
func (s Subject) Valid() bool { return s.id != "" }

func (s Subject) String() string {
	return s.class.String() + ":" + s.id
}
