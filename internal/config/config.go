package config

import (
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by CATALOG_BACKEND, USER_BACKEND and LOAN_BACKEND.
const (
	BackendMemory = "memory"
	BackendCSV    = "csv"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	// BackendAuto picks JSON when its file already exists, memory otherwise (users and loans only)
	BackendAuto = "auto"
)

type (
	Config struct {
		HTTP
		Global
		Storage
		Lending
		Bootstrap
		Consistency
		Audit
		UI
		Tasks
		Telemetry
	}

	HTTP struct {
		Port     int32
		Host     string
		ReadOnly bool // Reject every write request
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Storage struct {
		CatalogBackend  string
		UserBackend     string
		LoanBackend     string
		DataDir         string
		CatalogCSVPath  string
		CatalogJSONPath string
		DatabasePath    string
		UsersJSONPath   string
		LoansJSONPath   string
	}
	Lending struct {
		DefaultLoanDays int
	}
	Bootstrap struct {
		SeedPath         string
		ReconcileOnStart bool // Also reconcile when nothing was seeded
	}
	Consistency struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Audit struct {
		Dir string
	}
	UI struct {
		StaticPath string
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Telemetry struct {
		OTLPEndpoint string // Empty disables trace export
		ServiceName  string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("http_port", 8080)
	v.SetDefault("http_host", "0.0.0.0")
	v.SetDefault("read_only", false)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Storage defaults
	v.SetDefault("catalog_backend", BackendCSV)
	v.SetDefault("user_backend", BackendAuto)
	v.SetDefault("loan_backend", BackendAuto)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("catalog_csv_path", DefaultCatalogCSVPath)
	v.SetDefault("catalog_json_path", DefaultCatalogJSONPath)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("users_json_path", DefaultUsersJSONPath)
	v.SetDefault("loans_json_path", DefaultLoansJSONPath)

	v.SetDefault("default_loan_days", DefaultLoanDays)
	v.SetDefault("seed_path", DefaultSeedPath)
	v.SetDefault("reconcile_on_start", false)

	v.SetDefault("consistency_check_enabled", true)
	v.SetDefault("consistency_check_schedule", "*/30 * * * *")
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("static_dir", "./frontend")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "30s")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_service_name", "library")

	return &Config{
		HTTP: HTTP{
			Port:     v.GetInt32("HTTP_PORT"),
			Host:     v.GetString("HTTP_HOST"),
			ReadOnly: v.GetBool("READ_ONLY"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Storage: Storage{
			CatalogBackend:  v.GetString("CATALOG_BACKEND"),
			UserBackend:     v.GetString("USER_BACKEND"),
			LoanBackend:     v.GetString("LOAN_BACKEND"),
			DataDir:         v.GetString("DATA_DIR"),
			CatalogCSVPath:  v.GetString("CATALOG_CSV_PATH"),
			CatalogJSONPath: v.GetString("CATALOG_JSON_PATH"),
			DatabasePath:    v.GetString("DATABASE_PATH"),
			UsersJSONPath:   v.GetString("USERS_JSON_PATH"),
			LoansJSONPath:   v.GetString("LOANS_JSON_PATH"),
		},
		Lending: Lending{
			DefaultLoanDays: v.GetInt("DEFAULT_LOAN_DAYS"),
		},
		Bootstrap: Bootstrap{
			SeedPath:         v.GetString("SEED_PATH"),
			ReconcileOnStart: v.GetBool("RECONCILE_ON_START"),
		},
		Consistency: Consistency{
			Enabled:  v.GetBool("CONSISTENCY_CHECK_ENABLED"),
			Schedule: v.GetString("CONSISTENCY_CHECK_SCHEDULE"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		UI: UI{
			StaticPath: v.GetString("STATIC_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DB_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Telemetry: Telemetry{
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		},
	}
}
