package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for untagged fields.
const EnvPrefix = "MES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MES_APP_ENV"
	EnvPort     = "MES_APP_PORT"
	EnvLogLevel = "MES_LOG_LEVEL"

	EnvDBDSN  = "MES_DB_DSN"
	EnvDBHost = "MES_DB_HOST"
	EnvDBPort = "MES_DB_PORT"
	EnvDBUser = "MES_DB_USER"
	EnvDBPass = "MES_DB_PASSWORD"
	EnvDBName = "MES_DB_NAME"

	EnvRedisURL = "MES_REDIS_URL"

	EnvStrictStockCheck = "MES_STRICT_STOCK_CHECK"
	EnvCronInterval     = "MES_CRON_INTERVAL"
)
