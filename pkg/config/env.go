package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvLogLevel        = "STOREFRONT_LOG_LEVEL"
	EnvBackendBaseURL  = "STOREFRONT_BACKEND_BASE_URL"
	EnvBackendTimeout  = "STOREFRONT_BACKEND_TIMEOUT"
	EnvSessionBackend  = "STOREFRONT_SESSION_BACKEND"
	EnvSessionPath     = "STOREFRONT_SESSION_PATH"
	EnvSessionProfile  = "STOREFRONT_SESSION_PROFILE"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvSearchDebounce  = "STOREFRONT_SEARCH_DEBOUNCE"
	EnvServerPort      = "STOREFRONT_SERVER_PORT"
	EnvServerBalance   = "STOREFRONT_SERVER_DEFAULT_BALANCE"
	EnvDBDriver        = "STOREFRONT_DB_DRIVER"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvJWTSecret       = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer       = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins      = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvAuthRateWindow  = "STOREFRONT_AUTH_RATE_LIMIT_WINDOW"
	EnvAuthRateByName  = "STOREFRONT_AUTH_RATE_LIMIT_USERNAME_LIMIT"
	EnvAuthRateByIP    = "STOREFRONT_AUTH_RATE_LIMIT_IP_LIMIT"

	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)
