package config

const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CATALOG_APP_ENV"
	EnvLogLevel = "CATALOG_LOG_LEVEL"

	EnvDBDSN  = "CATALOG_DB_DSN"
	EnvDBHost = "CATALOG_DB_HOST"
	EnvDBPort = "CATALOG_DB_PORT"
	EnvDBUser = "CATALOG_DB_USER"
	EnvDBName = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvLegacyParallelism = "CATALOG_LEGACY_PARALLELISM"
	EnvCronInterval      = "CATALOG_CRON_INTERVAL"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
