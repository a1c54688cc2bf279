// @title ShopCompare API
// @version 1.0
// @description Product search proxy and AI comparison with per-caller daily quotas.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"shopcompare/backend/internal/cache"
	"shopcompare/backend/internal/catalog"
	"shopcompare/backend/internal/config"
	"shopcompare/backend/internal/db"
	"shopcompare/backend/internal/handler"
	apphttp "shopcompare/backend/internal/http"
	"shopcompare/backend/internal/metrics"
	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/repository"
	"shopcompare/backend/internal/scheduler"
	"shopcompare/backend/internal/service"
	"shopcompare/backend/internal/service/ai"
	"shopcompare/backend/pkg/logger"
	"shopcompare/backend/pkg/network"
	"shopcompare/backend/pkg/snowflake"
)

const (
	memoryCacheEntries = 2048
	shutdownTimeout    = 10 * time.Second
	providerMaxRetries = 2
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopcompare",
		Short:         "ShopCompare backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	})
	return root
}

func setup() config.Config {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))
	return cfg
}

func migrate(ctx context.Context) error {
	cfg := setup()
	conn, err := db.Open(ctx, cfg.DB)
	if err != nil {
		logger.Error("database open failed", "module", "main", "action", "migrate", "resource", "database", "result", "failed", "error", err)
		return err
	}
	defer conn.Close()
	logger.Info("migrations applied", "module", "main", "action", "migrate", "resource", "database", "result", "ok", "driver", cfg.DB.Driver)
	return nil
}

func serve(ctx context.Context) error {
	cfg := setup()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := snowflake.Init(1); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}

	proxies, err := apphttp.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("SHOPCOMPARE_TRUSTED_PROXIES: %w", err)
	}

	conn, err := db.Open(ctx, cfg.DB)
	if err != nil {
		logger.Error("database open failed", "module", "main", "action", "start", "resource", "database", "result", "failed", "error", err)
		return err
	}
	defer conn.Close()

	var registry *metrics.Registry
	if cfg.Metrics {
		registry = metrics.New()
	}

	store, closeCache := newCache(ctx, cfg.Cache)
	defer closeCache()

	fetcher, closeFetcher := newFetcher(ctx, cfg.Catalog)
	defer closeFetcher()

	limiter := newLimiter(cfg, conn, registry)
	janitor := scheduler.New(limiter, cfg.Limits.PruneInterval)
	janitor.Start()
	defer janitor.Stop()

	router := buildRouter(cfg, conn, limiter, registry, store, fetcher, proxies)

	server := &nethttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "module", "main", "action", "start", "resource", "http", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "module", "main", "action", "stop", "resource", "http")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLimiter(cfg config.Config, conn *sqlx.DB, registry *metrics.Registry) service.RateLimitService {
	opts := []service.RateLimitOption{
		service.WithLocation(cfg.Location),
		service.WithRetention(cfg.Limits.Retention),
	}
	if registry != nil {
		opts = append(opts, service.WithDecisionObserver(registry))
	}
	limits := repository.NewRateLimitRepository(conn, cfg.Location, cfg.DB.QueryTimeout)
	return service.NewRateLimitService(limits, service.QuotaPolicy{
		model.ClassGuest: cfg.Limits.GuestDaily,
		model.ClassUser:  cfg.Limits.UserDaily,
	}, opts...)
}

func buildRouter(cfg config.Config, conn *sqlx.DB, limiter service.RateLimitService, registry *metrics.Registry, store cache.Cache, fetcher catalog.Fetcher, proxies []*net.IPNet) nethttp.Handler {
	catalogOpts := []catalog.Option{}
	catalogSvcOpts := []service.CatalogOption{}
	compareOpts := []service.CompareOption{}
	routerOpts := apphttp.RouterOptions{
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		EnableSwagger:  cfg.Swagger,
		Health:         conn,
		TrustedProxies: proxies,
	}
	if registry != nil {
		catalogOpts = append(catalogOpts, catalog.WithObserver(registry))
		catalogSvcOpts = append(catalogSvcOpts, service.WithCacheObserver(registry))
		compareOpts = append(compareOpts, service.WithComparisonObserver(registry))
		routerOpts.Metrics = registry.Handler()
	}

	users := repository.NewUserRepository(conn, cfg.DB.QueryTimeout)
	authService := service.NewAuthService(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	client := catalog.NewClient(cfg.Catalog.BaseURL, fetcher, catalogOpts...)
	catalogService := service.NewCatalogService(client, store, cfg.Cache.TTL, catalogSvcOpts...)

	provider, err := ai.NewProvider(ai.Config{
		Provider:   cfg.AI.Provider,
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.Model,
		Endpoint:   cfg.AI.Endpoint,
		MaxRetries: providerMaxRetries,
	})
	if err != nil {
		logger.Warn("comparison provider disabled", "module", "main", "action", "start", "resource", "ai", "result", "skipped", "provider", cfg.AI.Provider, "error", err)
		provider = nil
	}
	compareService := service.NewCompareService(limiter, catalogService, provider, ai.NewRateLimiter(cfg.AI.RateLimit), compareOpts...)

	return apphttp.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewCatalogHandler(catalogService),
		handler.NewCompareHandler(compareService),
		authService,
		routerOpts,
	)
}

// newCache prefers Redis when configured and reachable, otherwise an in-process cache.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(memoryCacheEntries), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using memory cache", "module", "main", "action", "start", "resource", "cache", "result", "fallback", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return cache.NewMemoryCache(memoryCacheEntries), func() {}
	}
	return cache.NewRedisCache(client, "shopcompare:"), func() { _ = client.Close() }
}

// newFetcher builds the upstream transport: a Chrome-fingerprinted session
// unless CATALOG_FINGERPRINT is off.
func newFetcher(ctx context.Context, cfg config.CatalogConfig) (catalog.Fetcher, func()) {
	factory := network.NewClientFactory(network.StaticProxy(cfg.ProxyURL))
	if cfg.Fingerprint {
		fetcher := catalog.NewAzureFetcher(factory.NewAzureSession(ctx, cfg.Timeout))
		return fetcher, fetcher.Close
	}
	return catalog.NewHTTPFetcher(factory.NewHTTPClient(ctx, cfg.Timeout)), func() {}
}
