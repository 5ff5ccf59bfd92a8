package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"budget-tracker-go/pkg/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort    string          `yaml:"http_port"`
	Env         string          `yaml:"env"`
	CORSOrigins []string        `yaml:"cors_origins"`
	DB          DBConfig        `yaml:"db"`
	Supabase    SupabaseConfig  `yaml:"supabase"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Budget      BudgetConfig    `yaml:"budget"`
	Cache       CacheConfig     `yaml:"cache"`
}

type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	TimeZone        string        `yaml:"timezone"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type SupabaseConfig struct {
	URL            string        `yaml:"url"`
	PublishableKey string        `yaml:"publishable_key"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AuthTimeout    time.Duration `yaml:"auth_timeout"`
	SkipAuth       bool          `yaml:"skip_auth"`
	MockUserID     string        `yaml:"mock_user_id"`
	MockUserEmail  string        `yaml:"mock_user_email"`
}

// RateLimitConfig bounds the unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type BudgetConfig struct {
	// StrictSpend propagates spend read failures instead of reporting spent=0.
	StrictSpend          bool `yaml:"strict_spend"`
	AggregateConcurrency int  `yaml:"aggregate_concurrency"`
}

type CacheConfig struct {
	CategoriesTTL time.Duration `yaml:"categories_ttl"`
}

func Defaults() Config {
	return Config{
		HTTPPort:    "8080",
		Env:         "development",
		CORSOrigins: []string{"http://localhost:3000"},
		DB: DBConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "budget_tracker",
			SSLMode:         "disable",
			TimeZone:        "UTC",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Supabase: SupabaseConfig{
			AuthTimeout: 5 * time.Second,
			MockUserID:  "00000000-0000-0000-0000-000000000001",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Budget: BudgetConfig{
			AggregateConcurrency: 4,
		},
		Cache: CacheConfig{
			CategoriesTTL: time.Minute,
		},
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then the .env file, then the process environment. Later sources win.
func Load(log logger.Logger, path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
		log.Info("config: loaded file", "path", path)
	}

	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(contents, cfg)
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)

	cfg.DB.DSN = getEnv("DB_DSN", cfg.DB.DSN)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.TimeZone = getEnv("DB_TIMEZONE", cfg.DB.TimeZone)
	cfg.DB.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)
	cfg.DB.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns)
	cfg.DB.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime)
	cfg.DB.AutoMigrate = getEnvBool("DB_AUTO_MIGRATE", cfg.DB.AutoMigrate)

	cfg.Supabase.URL = getEnv("SUPABASE_URL", getEnv("NEXT_PUBLIC_SUPABASE_URL", cfg.Supabase.URL))
	cfg.Supabase.PublishableKey = getEnv("SUPABASE_PUBLISHABLE_KEY", getEnv("NEXT_PUBLIC_SUPABASE_ANON_KEY", cfg.Supabase.PublishableKey))
	cfg.Supabase.JWTSecret = getEnv("SUPABASE_JWT_SECRET", cfg.Supabase.JWTSecret)
	cfg.Supabase.AuthTimeout = getEnvDuration("SUPABASE_AUTH_TIMEOUT", cfg.Supabase.AuthTimeout)
	cfg.Supabase.SkipAuth = getEnvBool("AUTH_SKIP", cfg.Supabase.SkipAuth)
	cfg.Supabase.MockUserID = getEnv("AUTH_MOCK_USER_ID", cfg.Supabase.MockUserID)
	cfg.Supabase.MockUserEmail = getEnv("AUTH_MOCK_USER_EMAIL", cfg.Supabase.MockUserEmail)

	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerSecond = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimit.RequestsPerSecond)
	cfg.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	cfg.Budget.StrictSpend = getEnvBool("BUDGET_STRICT_SPEND", cfg.Budget.StrictSpend)
	cfg.Budget.AggregateConcurrency = getEnvInt("BUDGET_AGGREGATE_CONCURRENCY", cfg.Budget.AggregateConcurrency)

	cfg.Cache.CategoriesTTL = getEnvDuration("CATEGORIES_CACHE_TTL", cfg.Cache.CategoriesTTL)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid http port %q", c.HTTPPort))
	}
	if c.DB.DSN == "" && (c.DB.Host == "" || c.DB.Name == "") {
		problems = append(problems, "db host and name are required when DB_DSN is empty")
	}
	if c.Supabase.SkipAuth {
		if strings.TrimSpace(c.Supabase.MockUserID) == "" {
			problems = append(problems, "AUTH_MOCK_USER_ID is required when AUTH_SKIP is set")
		}
	} else if c.Supabase.URL == "" || c.Supabase.PublishableKey == "" {
		problems = append(problems, "SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate limit rps and burst must be positive")
	}
	if c.Budget.AggregateConcurrency < 1 {
		problems = append(problems, "budget aggregate concurrency must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// MigrationURL returns a pgx5:// URL for golang-migrate.
func (c DBConfig) MigrationURL() string {
	if c.DSN != "" {
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(c.DSN, prefix) {
				return "pgx5://" + strings.TrimPrefix(c.DSN, prefix)
			}
		}
		return c.DSN
	}
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
