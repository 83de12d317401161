package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/env"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Backend       BackendConfig
	Session       SessionConfig
	Redis         RedisConfig
	Search        SearchConfig
	Server        ServerConfig
	DB            DBConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Session.validate(cfg.Redis); err != nil {
		return nil, err
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateServer checks the settings only the development backend needs.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("%s is required to run the server", EnvJWTSecret)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if c.Server.DefaultBalance.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvServerBalance)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BackendConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_BACKEND_BASE_URL" default:"http://localhost:8082/api/v1"`
	Timeout   time.Duration `envconfig:"STOREFRONT_BACKEND_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"STOREFRONT_BACKEND_USER_AGENT" default:"storefront-cli"`
}

type SessionConfig struct {
	Backend string `envconfig:"STOREFRONT_SESSION_BACKEND" default:"file"`
	Path    string `envconfig:"STOREFRONT_SESSION_PATH"`
	Profile string `envconfig:"STOREFRONT_SESSION_PROFILE" default:"default"`
}

// FilePath resolves where the file-backed session lives for the profile.
func (s SessionConfig) FilePath() string {
	if s.Path != "" {
		return s.Path
	}
	profile := s.Profile
	if profile == "" {
		profile = "default"
	}
	return filepath.Join(env.ConfigDir("storefront"), "sessions", profile+".yaml")
}

func (s SessionConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(s.Backend) {
	case SessionBackendFile, SessionBackendMemory:
		return nil
	case SessionBackendRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("%s=redis requires %s", EnvSessionBackend, EnvRedisURL)
		}
		return nil
	default:
		return fmt.Errorf("unsupported session backend %q", s.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
	SessionTTL   time.Duration `envconfig:"STOREFRONT_REDIS_SESSION_TTL" default:"0s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type SearchConfig struct {
	Debounce time.Duration `envconfig:"STOREFRONT_SEARCH_DEBOUNCE" default:"500ms"`
}

type ServerConfig struct {
	Port           string          `envconfig:"STOREFRONT_SERVER_PORT" default:"8082"`
	BasePath       string          `envconfig:"STOREFRONT_SERVER_BASE_PATH" default:"/api/v1"`
	DefaultBalance decimal.Decimal `envconfig:"STOREFRONT_SERVER_DEFAULT_BALANCE" default:"5000"`
	SeedCatalog    bool            `envconfig:"STOREFRONT_SERVER_SEED_CATALOG" default:"true"`
	ReadTimeout    time.Duration   `envconfig:"STOREFRONT_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration   `envconfig:"STOREFRONT_SERVER_WRITE_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"STOREFRONT_DB_DSN" default:"file:storefront.db?cache=shared"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(db.Driver) {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if strings.TrimSpace(db.DSN) == "" {
		return errors.New(EnvDBDSN + " is required")
	}
	return nil
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	Window        time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	UsernameLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_USERNAME_LIMIT" default:"5"`
	IPLimit       int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_IP_LIMIT" default:"20"`
}
