package http

import (
	"context"
	"fmt"
	"net"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "shopcompare/backend/docs"
	"shopcompare/backend/internal/handler"
	"shopcompare/backend/internal/service"
)

// HealthChecker reports whether the database is reachable; *sqlx.DB satisfies it.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type RouterOptions struct {
	StaticDir      string
	AllowedOrigins []string
	EnableSwagger  bool
	// Metrics is mounted at /metrics when non-nil.
	Metrics nethttp.Handler
	Health  HealthChecker
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	// Empty means the TCP peer address is the client address.
	TrustedProxies []*net.IPNet
}

// ParseTrustedProxies accepts CIDR ranges or bare IP addresses.
func ParseTrustedProxies(values []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.Contains(v, "/") {
			ip := net.ParseIP(v)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", v)
			}
			bits := 128
			if ip.To4() != nil {
				ip = ip.To4()
				bits = 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// ipExtractor decides what RealIP returns. Forwarding headers are only read
// when the direct peer is one of the trusted proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func NewRouter(
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	compareHandler *handler.CompareHandler,
	authService service.AuthService,
	opts RouterOptions,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	e.Use(middleware.Recover())
	e.Use(RequestIDMiddleware())
	e.Use(RequestLoggerMiddleware())
	if len(opts.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			ExposeHeaders:    []string{handler.HeaderRateLimitLimit, handler.HeaderRateLimitRemaining, handler.HeaderRetryAfter},
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", healthHandler(opts.Health))
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}
	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := e.Group("/api")
	api.Use(OptionalAuthMiddleware(authService))
	authHandler.RegisterPublicRoutes(api)
	catalogHandler.RegisterRoutes(api)
	compareHandler.RegisterRoutes(api)

	protected := e.Group("/api")
	protected.Use(JWTAuthMiddleware(authService))
	authHandler.RegisterProtectedRoutes(protected)

	registerStatic(e, opts.StaticDir)
	return e
}

func healthHandler(checker HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				return c.JSON(nethttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(nethttp.StatusOK, map[string]string{"status": "ok"})
	}
}
