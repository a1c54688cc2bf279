package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Addr      string
	LogLevel  string
	StaticDir string

	Swagger bool
	Metrics bool

	DB       DBConfig
	Auth     AuthConfig
	Limits   LimitConfig
	AI       AIConfig
	Catalog  CatalogConfig
	Cache    CacheConfig
	Location *time.Location

	AllowedOrigins []string
	// TrustedProxies lists CIDRs or IPs of reverse proxies allowed to set
	// X-Forwarded-For. Empty means clients are identified by the TCP peer.
	TrustedProxies []string
}

type DBConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LimitConfig struct {
	GuestDaily int
	UserDaily  int
	// Retention is how long closed windows are kept; PruneInterval is how
	// often they are swept.
	Retention     time.Duration
	PruneInterval time.Duration
}

type AIConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	Endpoint  string
	RateLimit int
}

type CatalogConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Fingerprint bool
	ProxyURL    string
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	aiProvider := envString("AI_PROVIDER", "openai")
	apiKey := os.Getenv("OPENAI_API_KEY")
	if aiProvider == "anthropic" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	defaultModel := "gpt-4o-mini"
	if aiProvider == "anthropic" {
		defaultModel = "claude-3-5-haiku-latest"
	}

	return Config{
		Addr:      envString("SHOPCOMPARE_ADDR", ":8000"),
		LogLevel:  envString("SHOPCOMPARE_LOG_LEVEL", "info"),
		StaticDir: cleanOptionalPath(os.Getenv("SHOPCOMPARE_STATIC_DIR")),
		Swagger:   envBool("SHOPCOMPARE_SWAGGER", true),
		Metrics:   envBool("SHOPCOMPARE_METRICS", true),
		DB: DBConfig{
			Driver:       strings.ToLower(envString("SHOPCOMPARE_DB_DRIVER", DriverSQLite)),
			Path:         filepath.Clean(envString("SHOPCOMPARE_DB_PATH", "./data/shopcompare.db")),
			Host:         envString("DB_HOST", "127.0.0.1"),
			Port:         envInt("DB_PORT", 3306),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         envString("DB_NAME", "defaultdb"),
			MaxOpenConns: envInt("SHOPCOMPARE_DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("SHOPCOMPARE_DB_MAX_IDLE_CONNS", 5),
			ConnTimeout:  envDuration("SHOPCOMPARE_DB_CONN_TIMEOUT", 10*time.Second),
			QueryTimeout: envDuration("SHOPCOMPARE_DB_QUERY_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET_KEY"),
			TokenTTL:  envDuration("SHOPCOMPARE_TOKEN_TTL", 30*time.Minute),
		},
		Limits: LimitConfig{
			GuestDaily: envInt("SHOPCOMPARE_GUEST_DAILY_LIMIT", 5),
			UserDaily:  envInt("SHOPCOMPARE_USER_DAILY_LIMIT", 10),

			Retention:     envDuration("SHOPCOMPARE_RATE_LIMIT_RETENTION", 7*24*time.Hour),
			PruneInterval: envDuration("SHOPCOMPARE_PRUNE_INTERVAL", time.Hour),
		},
		AI: AIConfig{
			Provider:  aiProvider,
			APIKey:    apiKey,
			BaseURL:   os.Getenv("AI_BASE_URL"),
			Model:     envString("AI_MODEL", defaultModel),
			Endpoint:  envString("AI_ENDPOINT", "chat/completions"),
			RateLimit: envInt("AI_RATE_LIMIT", 60),
		},
		Catalog: CatalogConfig{
			BaseURL:     strings.TrimRight(envString("CATALOG_BASE_URL", "https://tiki.vn"), "/"),
			Timeout:     envDuration("CATALOG_TIMEOUT", 15*time.Second),
			Fingerprint: envBool("CATALOG_FINGERPRINT", true),
			ProxyURL:    os.Getenv("CATALOG_PROXY_URL"),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			TTL:           envDuration("CACHE_TTL", 5*time.Minute),
		},
		Location:       loadLocation(os.Getenv("SHOPCOMPARE_TIMEZONE")),
		AllowedOrigins: splitList(envString("ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies: splitList(os.Getenv("SHOPCOMPARE_TRUSTED_PROXIES")),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func loadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanOptionalPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
