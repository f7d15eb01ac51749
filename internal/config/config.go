package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Lending
		Enrichment
		Covers
		Tasks
		Overdue
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Lending struct {
		LoanPeriod    time.Duration // How long a book may be kept before it is overdue
		DailyFineRate int           // Fine per overdue day, currency-unit-agnostic
	}
	Enrichment struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}
	Covers struct {
		CacheDir    string
		MaxWidth    int // Uploaded covers wider than this are scaled down
		JPEGQuality int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Overdue struct {
		Enabled  bool
		Schedule string // Cron format: "0 8 * * *" = daily at 08:00
	}
	Audit struct {
		Dir           string
		RetentionDays int // Audit events older than this are pruned
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies

	// Lending defaults
	v.SetDefault("lending_loan_period", DefaultLoanPeriod.String())
	v.SetDefault("lending_daily_fine_rate", DefaultDailyFineRate)

	// Enrichment defaults
	v.SetDefault("enrichment_api_key", "")
	v.SetDefault("enrichment_model", "gemini-1.5-flash")
	v.SetDefault("enrichment_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("enrichment_timeout", "15s")

	// Cover defaults
	v.SetDefault("covers_cache_dir", "")
	v.SetDefault("covers_max_width", 400)
	v.SetDefault("covers_jpeg_quality", 80)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("audit_retention_days", 90)

	// Overdue sweep defaults
	v.SetDefault("overdue_sweep_enabled", false)
	v.SetDefault("overdue_sweep_schedule", "0 8 * * *") // Daily at 08:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Lending: Lending{
			LoanPeriod:    v.GetDuration("LENDING_LOAN_PERIOD"),
			DailyFineRate: v.GetInt("LENDING_DAILY_FINE_RATE"),
		},
		Enrichment: Enrichment{
			APIKey:  v.GetString("ENRICHMENT_API_KEY"),
			Model:   v.GetString("ENRICHMENT_MODEL"),
			BaseURL: v.GetString("ENRICHMENT_BASE_URL"),
			Timeout: v.GetDuration("ENRICHMENT_TIMEOUT"),
		},
		Covers: Covers{
			CacheDir:    v.GetString("COVERS_CACHE_DIR"),
			MaxWidth:    v.GetInt("COVERS_MAX_WIDTH"),
			JPEGQuality: v.GetInt("COVERS_JPEG_QUALITY"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Overdue: Overdue{
			Enabled:  v.GetBool("OVERDUE_SWEEP_ENABLED"),
			Schedule: v.GetString("OVERDUE_SWEEP_SCHEDULE"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
