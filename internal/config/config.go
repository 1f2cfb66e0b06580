package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Session  SessionConfig
	WeChat   WeChatConfig
	Amap     AmapConfig
	Storage  StorageConfig
	Geo      GeoConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	EmployeeTokenTTLMinutes int
	AdminTokenTTLMinutes    int
	BcryptCost              int
	BootstrapAdminUsername  string
	BootstrapAdminPassword  string
}

// SessionConfig tunes the in-memory session registry.
type SessionConfig struct {
	SweepIntervalSeconds int
}

// WeChatConfig holds mini-program credentials for the code exchange.
type WeChatConfig struct {
	AppID          string
	Secret         string
	BaseURL        string
	TimeoutSeconds int
}

// AmapConfig holds reverse-geocoding settings.
type AmapConfig struct {
	Key            string
	BaseURL        string
	TimeoutSeconds int
}

// StorageConfig points at the S3-compatible bucket for check-in photos.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// GeoConfig controls geo-fence evaluation and geocode caching.
type GeoConfig struct {
	ToleranceMeters        float64
	GeocodeCacheTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "attendance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 10*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			EmployeeTokenTTLMinutes: getEnvAsInt("AUTH_EMPLOYEE_TOKEN_TTL_MINUTES", 60*24*7),
			AdminTokenTTLMinutes:    getEnvAsInt("AUTH_ADMIN_TOKEN_TTL_MINUTES", 60*12),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAdminUsername:  getEnv("AUTH_BOOTSTRAP_ADMIN_USERNAME", "admin"),
			BootstrapAdminPassword:  os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Session: SessionConfig{
			SweepIntervalSeconds: getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", 600),
		},
		WeChat: WeChatConfig{
			AppID:          os.Getenv("WECHAT_APPID"),
			Secret:         os.Getenv("WECHAT_SECRET"),
			BaseURL:        getEnv("WECHAT_BASE_URL", "https://api.weixin.qq.com"),
			TimeoutSeconds: getEnvAsInt("WECHAT_TIMEOUT_SECONDS", 5),
		},
		Amap: AmapConfig{
			Key:            os.Getenv("AMAP_WEB_KEY"),
			BaseURL:        getEnv("AMAP_BASE_URL", "https://restapi.amap.com"),
			TimeoutSeconds: getEnvAsInt("AMAP_TIMEOUT_SECONDS", 5),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "127.0.0.1:9000"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    getEnv("STORAGE_BUCKET", "checkin-photos"),
			UseSSL:    getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Geo: GeoConfig{
			ToleranceMeters:        getEnvAsFloat("GEO_TOLERANCE_METERS", 50),
			GeocodeCacheTTLMinutes: getEnvAsInt("GEO_GEOCODE_CACHE_TTL_MINUTES", 60*24),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// EmployeeTokenTTL is shared by the JWT expiry and the session record.
func (a AuthConfig) EmployeeTokenTTL() time.Duration {
	return minutesOr(a.EmployeeTokenTTLMinutes, 60*24*7)
}

// AdminTokenTTL is shared by the JWT expiry and the session record.
func (a AuthConfig) AdminTokenTTL() time.Duration {
	return minutesOr(a.AdminTokenTTLMinutes, 60*12)
}

// SweepInterval returns zero when the janitor is disabled.
func (s SessionConfig) SweepInterval() time.Duration {
	if s.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// Timeout returns the upstream call timeout.
func (w WeChatConfig) Timeout() time.Duration {
	return secondsOr(w.TimeoutSeconds, 5)
}

// Timeout returns the upstream call timeout.
func (a AmapConfig) Timeout() time.Duration {
	return secondsOr(a.TimeoutSeconds, 5)
}

// GeocodeCacheTTL returns how long resolved addresses stay cached.
func (g GeoConfig) GeocodeCacheTTL() time.Duration {
	return minutesOr(g.GeocodeCacheTTLMinutes, 60*24)
}

func minutesOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Minute
}

func secondsOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
