package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeBasic AuthMode = "basic" // Librarian credentials required for mutations
)

type (
	Config struct {
		HTTP
		Global
		Database
		AI
		Redis
		Auth
		Demo
		Tasks
		Audit
		Telemetry
		Analytics
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // "sqlite" or "postgres"
		Path   string // SQLite file path
		DSN    string // Postgres connection string
	}
	AI struct {
		AccountID         string
		Token             string
		BaseURL           string
		Model             string
		Timeout           time.Duration
		RequestsPerMinute int
		CacheTTL          time.Duration
	}
	Redis struct {
		Addr     string // Empty disables the Redis answer cache
		Password string
		DB       int
	}
	Auth struct {
		Mode            AuthMode
		Username        string
		PasswordHash    string // bcrypt hash of the librarian password
		APIToken        string // Bearer token for /api/ mutations
		SessionSecret   string
		SessionLifetime time.Duration
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Demo struct {
		Enabled bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Telemetry struct {
		OTLPEndpoint string // Empty keeps the no-op tracer provider
		ServiceName  string
	}
	Analytics struct {
		PlausibleDomain     string // Empty disables the Plausible script tag
		PlausibleScriptURL  string
		PlausibleExtensions string // Comma-separated, e.g. "outbound-links,hash"
	}
	Log struct {
		Level  string
		Format string // "text" or "json"
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", DatabaseDriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Workers AI defaults
	v.SetDefault("cloudflare_account_id", "")
	v.SetDefault("cloudflare_ai_token", "")
	v.SetDefault("ai_base_url", DefaultAIBaseURL)
	v.SetDefault("ai_model", DefaultAIModel)
	v.SetDefault("ai_timeout", "30s")
	v.SetDefault("ai_requests_per_minute", 20)
	v.SetDefault("ai_cache_ttl", "10m")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_username", "librarian")
	v.SetDefault("auth_password_hash", "")
	v.SetDefault("api_token", "")
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", false)

	v.SetDefault("demo_mode", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_service_name", "librarydesk")

	v.SetDefault("plausible_domain", "")
	v.SetDefault("plausible_script_url", DefaultPlausibleScriptURL)
	v.SetDefault("plausible_extensions", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		AI: AI{
			AccountID:         v.GetString("CLOUDFLARE_ACCOUNT_ID"),
			Token:             v.GetString("CLOUDFLARE_AI_TOKEN"),
			BaseURL:           v.GetString("AI_BASE_URL"),
			Model:             v.GetString("AI_MODEL"),
			Timeout:           v.GetDuration("AI_TIMEOUT"),
			RequestsPerMinute: v.GetInt("AI_REQUESTS_PER_MINUTE"),
			CacheTTL:          v.GetDuration("AI_CACHE_TTL"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			Username:        v.GetString("AUTH_USERNAME"),
			PasswordHash:    v.GetString("AUTH_PASSWORD_HASH"),
			APIToken:        v.GetString("API_TOKEN"),
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Telemetry: Telemetry{
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		},
		Analytics: Analytics{
			PlausibleDomain:     v.GetString("PLAUSIBLE_DOMAIN"),
			PlausibleScriptURL:  v.GetString("PLAUSIBLE_SCRIPT_URL"),
			PlausibleExtensions: v.GetString("PLAUSIBLE_EXTENSIONS"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// AIConfigured reports whether Workers AI credentials are present.
func (c *Config) AIConfigured() bool {
	return c.AI.AccountID != "" && c.AI.Token != ""
}
