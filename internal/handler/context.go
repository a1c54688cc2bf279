package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/internal/model"
)

// AuthCookieName carries the access token for browser clients.
const AuthCookieName = "shopcompare_token"

const (
	contextKeyUserID   = "userID"
	contextKeyUsername = "username"
)

// SetAuthenticatedUser records the caller resolved from a valid access token.
func SetAuthenticatedUser(c echo.Context, userID int64, username string) {
	c.Set(contextKeyUserID, userID)
	c.Set(contextKeyUsername, username)
}

// AuthenticatedUserID returns the caller's user id when a valid token was presented.
func AuthenticatedUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(contextKeyUserID).(int64)
	return id, ok && id > 0
}

// SubjectFromContext returns who a request is charged to: the authenticated
// user, or the client IP for guests.
func SubjectFromContext(c echo.Context) model.Subject {
	if id, ok := AuthenticatedUserID(c); ok {
		return model.UserSubject(strconv.FormatInt(id, 10))
	}
	return model.GuestSubject(c.RealIP())
}
