package config

import (
	"fmt"
	"time"

	"judicial-archive/internal/utils"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	AppPort string
	AppEnv  string

	LogLevel         string
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
	LogMaxAgeDays    int
	DefaultLanguage  string
	RequestTimeout   time.Duration
	MetricsEnabled   bool
	StatusWorkflow   string
	RecentActivities int

	StoreDriver string
	SQLitePath  string

	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBTimeZone  string

	DBMaxOpenConns int
	DBMaxIdleConns int

	AutoMigrate  bool
	SeedDemoData bool

	JWTAccessSecret string
	JWTIssuer       string
	JWTAccessTTL    time.Duration
	BCryptCost      int

	RedisURL string

	R2Endpoint        string
	R2Bucket          string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Region          string
	R2PresignTTL      time.Duration
	R2MaxAttempts     int

	UploadDir      string
	MaxUploadBytes int64
}

// Load reads the process environment, after merging a .env file from the
// working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppPort: utils.GetEnv("APP_PORT", "8080"),
		AppEnv:  utils.GetEnv("APP_ENV", "development"),

		LogLevel:         utils.GetEnv("LOG_LEVEL", "info"),
		LogFile:          utils.GetEnv("LOG_FILE", ""),
		LogMaxSizeMB:     utils.GetEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:    utils.GetEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:    utils.GetEnvInt("LOG_MAX_AGE_DAYS", 7),
		DefaultLanguage:  utils.GetEnv("DEFAULT_LANGUAGE", "ar"),
		RequestTimeout:   utils.GetEnvSeconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		MetricsEnabled:   utils.GetEnvBool("METRICS_ENABLED", true),
		StatusWorkflow:   utils.GetEnv("STATUS_WORKFLOW", "enforced"),
		RecentActivities: utils.GetEnvInt("RECENT_ACTIVITY_LIMIT", 5),

		StoreDriver: utils.GetEnv("STORE_DRIVER", StoreMemory),
		SQLitePath:  utils.GetEnv("SQLITE_PATH", "data/archive.db"),

		DatabaseURL: utils.GetEnv("DATABASE_URL", ""),
		DBHost:      utils.GetEnv("DB_HOST", "localhost"),
		DBPort:      utils.GetEnvInt("DB_PORT", 5432),
		DBUser:      utils.GetEnv("DB_USER", "postgres"),
		DBPassword:  utils.GetEnv("DB_PASSWORD", "postgres"),
		DBName:      utils.GetEnv("DB_NAME", "judicial_archive"),
		DBSSLMode:   utils.GetEnv("DB_SSLMODE", "disable"),
		DBTimeZone:  utils.GetEnv("DB_TIMEZONE", "UTC"),

		DBMaxOpenConns: utils.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: utils.GetEnvInt("DB_MAX_IDLE_CONNS", 25),

		AutoMigrate:  utils.GetEnvBool("AUTO_MIGRATE", true),
		SeedDemoData: utils.GetEnvBool("SEED_DEMO_DATA", true),

		JWTAccessSecret: utils.GetEnv("JWT_ACCESS_SECRET", ""),
		JWTIssuer:       utils.GetEnv("JWT_ISSUER", "judicial-archive"),
		JWTAccessTTL:    time.Duration(utils.GetEnvInt("JWT_ACCESS_TTL_MINUTES", 60)) * time.Minute,
		BCryptCost:      utils.GetEnvInt("BCRYPT_COST", 12),

		RedisURL: utils.GetEnv("REDIS_URL", ""),

		R2Endpoint:        utils.GetEnv("R2_ENDPOINT", ""),
		R2Bucket:          utils.GetEnv("R2_BUCKET", ""),
		R2AccessKeyID:     utils.GetEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: utils.GetEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Region:          utils.GetEnv("R2_REGION", "auto"),
		R2PresignTTL:      utils.GetEnvSeconds("R2_PRESIGN_TTL_SECONDS", 15*time.Minute),
		R2MaxAttempts:     utils.GetEnvInt("R2_MAX_ATTEMPTS", 3),

		UploadDir:      utils.GetEnv("UPLOAD_DIR", "data/uploads"),
		MaxUploadBytes: utils.GetEnvInt64("MAX_UPLOAD_BYTES", 20<<20),
	}
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("STORE_DRIVER %q: want memory, sqlite or postgres", c.StoreDriver)
	}
	switch c.StatusWorkflow {
	case "enforced", "open":
	default:
		return fmt.Errorf("STATUS_WORKFLOW %q: want enforced or open", c.StatusWorkflow)
	}
	if c.JWTAccessSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST %d out of range", c.BCryptCost)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// R2Enabled reports whether object storage credentials are configured.
func (c Config) R2Enabled() bool {
	return c.R2Endpoint != "" && c.R2Bucket != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != ""
}

func (c Config) EnforceStatusWorkflow() bool {
	return c.StatusWorkflow != "open"
}

func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSSLMode,
		c.DBTimeZone,
	)
}
