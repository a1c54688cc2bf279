package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/internal/service"
	"shopcompare/backend/pkg/logger"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(c echo.Context, err error) error {
	var quotaErr *service.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		setRateLimitHeaders(c, quotaErr.Max, 0)
		c.Response().Header().Set(HeaderRetryAfter, itoa(retryAfterSeconds(quotaErr.ResetAt, time.Now())))
		return Error(c, http.StatusTooManyRequests, quotaErr.Error())
	case errors.Is(err, service.ErrInvalid):
		return Error(c, http.StatusBadRequest, messageOf(err, service.ErrInvalid))
	case errors.Is(err, service.ErrUnauthorized):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return Error(c, http.StatusUnauthorized, messageOf(err, service.ErrUnauthorized))
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrConflict):
		return Error(c, http.StatusConflict, messageOf(err, service.ErrConflict))
	case errors.Is(err, service.ErrProviderRateLimited):
		return Error(c, http.StatusTooManyRequests, "comparison provider is busy, try again later")
	case errors.Is(err, service.ErrProviderAuth):
		return Error(c, http.StatusBadGateway, "comparison provider rejected the configured credentials")
	case errors.Is(err, service.ErrProviderUnavailable):
		return Error(c, http.StatusBadGateway, "comparison provider unavailable")
	case errors.Is(err, service.ErrUpstream):
		return Error(c, http.StatusBadGateway, "upstream request failed")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return Error(c, http.StatusServiceUnavailable, "upstream temporarily unavailable")
	case errors.Is(err, service.ErrStorageUnavailable):
		return Error(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		logger.Error("unhandled service error", "module", "handler", "action", c.Request().Method, "resource", c.Path(), "result", "failed", "error", err)
		return Error(c, http.StatusInternalServerError, "internal error")
	}
}

// messageOf strips the sentinel prefix from client errors built by the
// service layer, which never carry internal detail.
func messageOf(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func setRateLimitHeaders(c echo.Context, limit, remaining int) {
	h := c.Response().Header()
	h.Set(HeaderRateLimitLimit, itoa(limit))
	h.Set(HeaderRateLimitRemaining, itoa(remaining))
}

// retryAfterSeconds is the whole number of seconds until resetAt, at least 1.
func retryAfterSeconds(resetAt, now time.Time) int {
	seconds := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
