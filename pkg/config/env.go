package config

import "time"

const EnvPrefix = "SHOPFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:shopfront.db?_foreign_keys=on"
)

// DefaultTokenTTL applies when no expiration is configured.
const DefaultTokenTTL = 33 * time.Minute

const (
	EnvAppEnv      = "SHOPFRONT_APP_ENV"
	EnvPort        = "SHOPFRONT_APP_PORT"
	EnvLogLevel    = "SHOPFRONT_LOG_LEVEL"
	EnvDBDSN       = "SHOPFRONT_DB_DSN"
	EnvDBDriver    = "SHOPFRONT_DB_DRIVER"
	EnvDBHost      = "SHOPFRONT_DB_HOST"
	EnvDBPort      = "SHOPFRONT_DB_PORT"
	EnvDBUser      = "SHOPFRONT_DB_USER"
	EnvDBPassword  = "SHOPFRONT_DB_PASSWORD"
	EnvDBName      = "SHOPFRONT_DB_NAME"
	EnvRedisURL    = "SHOPFRONT_REDIS_URL"
	EnvJWTSecret   = "SHOPFRONT_JWT_SECRET"
	EnvJWTIssuer   = "SHOPFRONT_JWT_ISSUER"
	EnvJWTExpMins  = "SHOPFRONT_JWT_EXPIRATION_MINUTES"
	EnvBcryptCost  = "SHOPFRONT_BCRYPT_COST"
	EnvAutoMigrate = "SHOPFRONT_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
