package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Sessions
	SessionSecret      string
	SessionTTL         time.Duration // server-side lifetime of a browser-session login
	SessionRememberFor time.Duration // lifetime of a "remember me" login

	// Storage ("local" or "s3")
	StorageDriver string
	UploadDir     string

	// Storage - S3-compatible (only when StorageDriver is "s3")
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string

	// Background jobs
	SweepInterval     time.Duration
	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration

	// Auth rate limiting
	AuthRateLimit int
	AuthRateEvery time.Duration

	// Observability (optional)
	SentryDSN string

	// Content rules
	Posts        PostPolicy
	Registration RegistrationPolicy
	Upload       UploadPolicy
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "dropwall"),
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/dropwall.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Sessions
		SessionSecret:      envRequired("SESSION_SECRET"),
		SessionTTL:         envDuration("SESSION_TTL", 24*time.Hour),
		SessionRememberFor: envDuration("SESSION_REMEMBER_FOR", 4*7*24*time.Hour), // 4 weeks

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		UploadDir:     envString("UPLOAD_DIR", "./data/uploads"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers

		// Background jobs
		SweepInterval:     envDuration("SWEEP_INTERVAL", time.Hour),
		ReconcileInterval: envDuration("RECONCILE_INTERVAL", 6*time.Hour),
		ReconcileGrace:    envDuration("RECONCILE_GRACE", 10*time.Minute),

		// Auth rate limiting: burst of 5, one token every 3 minutes
		AuthRateLimit: envInt("AUTH_RATE_LIMIT", 5),
		AuthRateEvery: envDuration("AUTH_RATE_EVERY", 3*time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		Posts:        DefaultPostPolicy(),
		Registration: DefaultRegistrationPolicy(),
		Upload:       DefaultUploadPolicy(),
	}

	cfg.Posts.PerPage = envInt("POSTS_PER_PAGE", cfg.Posts.PerPage)

	cfg.Upload.MaxSize = envInt64("FILE_MAX_SIZE", cfg.Upload.MaxSize)
	cfg.Upload.FilesPerUser = envInt("FILES_PER_USER", cfg.Upload.FilesPerUser)
	cfg.Upload.PublicFilesPerPage = envInt("PUBLIC_FILES_PER_PAGE", cfg.Upload.PublicFilesPerPage)
	cfg.Upload.DescriptionMax = envInt("FILE_DESCRIPTION_MAX", cfg.Upload.DescriptionMax)
	cfg.Upload.VerboseUniqueNames = envBool("FILE_VERBOSE_UNIQUE_NAMES", cfg.Upload.VerboseUniqueNames)
	cfg.Upload.AllowedExtensions = envList("FILE_ALLOWED_EXTENSIONS", cfg.Upload.AllowedExtensions)

	// Optional YAML file overriding the whole upload policy
	policyPath := envString("UPLOAD_POLICY_FILE", "")
	if policyPath != "" {
		policy, err := LoadUploadPolicy(policyPath)
		if err != nil {
			slog.Error("failed to load upload policy", "path", policyPath, "error", err)
			os.Exit(1)
		}
		cfg.Upload = *policy
	}

	if cfg.StorageDriver == "s3" {
		validateS3(cfg)
	}

	return cfg
}

// validateS3 ensures the bucket settings exist when the S3 backend is selected.
func validateS3(cfg *Config) {
	if cfg.S3Region == "" || cfg.S3Bucket == "" {
		slog.Error("STORAGE_DRIVER=s3 requires S3_REGION and S3_BUCKET",
			"hint", "use STORAGE_DRIVER=local to keep uploads on disk")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList reads a comma separated list, e.g. "pdf,png,zip"
func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		Posts:        c.Posts,
		Registration: c.Registration,
		Upload:       c.Upload,
	}
}
