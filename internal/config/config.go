package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AuthProviderSupabase = "supabase"
	AuthProviderLocal    = "local"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	GenerationRandom = "random"
	GenerationLLM    = "llm"
)

type Config struct {
	// Server
	Port           string        `env:"PORT" envDefault:"3000"`
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	AuthRateMax    int           `env:"RATE_LIMIT_AUTH_MAX" envDefault:"10"`
	AuthRateWindow time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" envDefault:"1m"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"false"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"postgres"`
	DBPassword     string `env:"DB_PASSWORD"`
	DBName         string `env:"DB_NAME" envDefault:"wardrobe"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"wardrobe.db"`

	// Platform auth
	AuthProvider           string        `env:"AUTH_PROVIDER" envDefault:"supabase"`
	SupabaseURL            string        `env:"SUPABASE_URL"`
	SupabaseKey            string        `env:"SUPABASE_KEY"`
	SupabaseServiceRoleKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	AdminSecret            string        `env:"ADMIN_SECRET"`
	JWTSecret              string        `env:"JWT_SECRET"`
	JWTAccessExpiry        time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"1h"`
	AuthTimeout            time.Duration `env:"AUTH_TIMEOUT" envDefault:"10s"`

	// Observability
	SentryDSN        string `env:"SENTRY_DSN"`
	OTelEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"wardrobe-backend"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	Storage    StorageConfig
	Generation GenerationConfig
}

type StorageConfig struct {
	Endpoint        string        `env:"STORAGE_ENDPOINT"`
	Region          string        `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket          string        `env:"STORAGE_BUCKET"`
	AccessKeyID     string        `env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"STORAGE_SECRET_ACCESS_KEY"`
	UsePathStyle    bool          `env:"STORAGE_USE_PATH_STYLE" envDefault:"true"`
	PresignTTL      time.Duration `env:"STORAGE_PRESIGN_TTL" envDefault:"15m"`
	MaxUploadBytes  int64         `env:"STORAGE_MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

// Enabled reports whether an image bucket has been configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

type GenerationConfig struct {
	Provider string `env:"GENERATION_PROVIDER" envDefault:"random"`

	GLMAPIKey string `env:"GLM_API_KEY"`
	GLMAPIURL string `env:"GLM_API_URL" envDefault:"https://api.z.ai/api/paas/v4/chat/completions"`
	GLMModel  string `env:"GLM_MODEL" envDefault:"glm-5"`

	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
	DeepSeekAPIURL string `env:"DEEPSEEK_API_URL" envDefault:"https://api.deepseek.com/v1/chat/completions"`
	DeepSeekModel  string `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`

	Timeout time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AdminSecret == "" {
		cfg.AdminSecret = cfg.SupabaseServiceRoleKey
	}
	cfg.AuthProvider = strings.ToLower(cfg.AuthProvider)
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)
	cfg.Generation.Provider = strings.ToLower(cfg.Generation.Provider)
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DBPassword == "" && c.IsProduction() {
			return errors.New("DB_PASSWORD is required in production")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.AuthProvider {
	case AuthProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase auth provider")
		}
	case AuthProviderLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required for the local auth provider")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.Generation.Provider {
	case GenerationRandom, GenerationLLM:
	default:
		return fmt.Errorf("unsupported GENERATION_PROVIDER %q", c.Generation.Provider)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
