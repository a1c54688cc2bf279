package http

import (
	nethttp "net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shopcompare/backend/internal/handler"
	"shopcompare/backend/internal/service"
	"shopcompare/backend/pkg/logger"
)

// AuthCookieName is the cookie the token endpoint sets for browser clients.
const AuthCookieName = handler.AuthCookieName

func tokenFromRequest(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// OptionalAuthMiddleware records the authenticated user when a valid token is
// present. Requests without one, or with an invalid one, continue as guests.
func OptionalAuthMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := tokenFromRequest(c); token != "" {
				if claims, err := authService.ValidateToken(token); err == nil {
					handler.SetAuthenticatedUser(c, claims.UserID, claims.Username)
				}
			}
			return next(c)
		}
	}
}

// JWTAuthMiddleware rejects requests without a valid token.
func JWTAuthMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return unauthorized(c)
			}
			claims, err := authService.ValidateToken(token)
			if err != nil {
				return unauthorized(c)
			}
			handler.SetAuthenticatedUser(c, claims.UserID, claims.Username)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return handler.Error(c, nethttp.StatusUnauthorized, "could not validate credentials")
}

// RequestIDMiddleware tags every request with a UUID unless the caller sent one.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			status := res.Status
			args := []any{
				"module", "http",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}
			if _, ok := handler.AuthenticatedUserID(c); ok {
				args = append(args, "auth", "user")
			}

			switch {
			case status >= nethttp.StatusInternalServerError:
				logger.Error("request completed", args...)
			case status >= nethttp.StatusBadRequest:
				logger.Warn("request completed", args...)
			default:
				logger.Info("request completed", args...)
			}
			return nil
		}
	}
}
